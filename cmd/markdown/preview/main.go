package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-content/cmd/markdown/internal/bootstrap"
	"github.com/goliatone/go-content/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	var (
		contentDir = flag.String("content-dir", "content", "Path to the markdown content root")
		pattern    = flag.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
		filePath   = flag.String("file", "", "Markdown file to preview (relative to the content root)")
		renderHTML = flag.Bool("render-html", true, "Render the markdown body into HTML")
	)

	flag.Parse()

	if *filePath == "" {
		log.Fatalf("--file is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir: *contentDir,
		Pattern:    *pattern,
		Recursive:  true,
	})
	if err != nil {
		log.Fatalf("bootstrap module: %v", err)
	}

	doc, err := module.Service.Load(context.Background(), *filePath, interfaces.LoadOptions{})
	if err != nil {
		log.Fatalf("load markdown document: %v", err)
	}

	fmt.Fprintf(os.Stdout, "Path: %s\nChecksum: %x\n\n", doc.FilePath, doc.Checksum)

	if doc.FrontMatter.Raw != nil {
		frontmatter, err := json.MarshalIndent(doc.FrontMatter.Raw, "", "  ")
		if err == nil {
			fmt.Fprintf(os.Stdout, "Frontmatter:\n%s\n\n", frontmatter)
		}
	}

	if *renderHTML {
		fmt.Fprintf(os.Stdout, "Rendered HTML:\n%s\n", string(doc.BodyHTML))
	} else {
		fmt.Fprintf(os.Stdout, "Markdown Body:\n%s\n", string(doc.Body))
	}
}
