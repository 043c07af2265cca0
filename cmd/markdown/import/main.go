package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goliatone/go-content/cmd/markdown/internal/bootstrap"
	"github.com/goliatone/go-content/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runImport(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("markdown import: %v", err)
	}
}

func runImport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("markdown-import", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	recursive := fs.Bool("recursive", true, "Descend into subdirectories")
	directory := fs.String("directory", ".", "Directory to import, relative to the content root")
	scope := fs.String("scope", "", "Scope receiving the imported items (required)")
	defaultKind := fs.String("default-kind", "", "Kind applied to documents without one in frontmatter")
	author := fs.String("author", "", "Author ID recorded on imported content")
	dryRun := fs.Bool("dry-run", false, "Preview changes without persisting content")
	verbose := fs.Bool("verbose", false, "Log import decisions")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scope == "" {
		return fmt.Errorf("--scope is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir: *contentDir,
		Pattern:    *pattern,
		Recursive:  *recursive,
		Verbose:    *verbose,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	authorID, err := bootstrap.ParseUUID(*author)
	if err != nil {
		return fmt.Errorf("parse author: %w", err)
	}

	result, err := module.Service.ImportDirectory(context.Background(), *directory, interfaces.ImportOptions{
		Scope:       *scope,
		AuthorID:    authorID,
		DefaultKind: *defaultKind,
		DryRun:      *dryRun,
	})
	if err != nil {
		return fmt.Errorf("import directory: %w", err)
	}

	fmt.Fprintf(out, "created=%d updated=%d skipped=%d errors=%d\n",
		len(result.CreatedItemIDs), len(result.UpdatedItemIDs), result.Skipped, len(result.Errors))
	for _, importErr := range result.Errors {
		fmt.Fprintf(out, "error: %v\n", importErr)
	}
	return nil
}
