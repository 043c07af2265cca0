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
	if err := runSync(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("markdown sync: %v", err)
	}
}

func runSync(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("markdown-sync", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	recursive := fs.Bool("recursive", true, "Descend into subdirectories")
	directory := fs.String("directory", ".", "Directory to sync, relative to the content root")
	scope := fs.String("scope", "", "Scope receiving the synced items (required)")
	defaultKind := fs.String("default-kind", "", "Kind applied to documents without one in frontmatter")
	author := fs.String("author", "", "Author ID recorded on synced content")
	deleteOrphaned := fs.Bool("delete-orphaned", false, "Delete items whose backing file disappeared")
	dryRun := fs.Bool("dry-run", false, "Preview changes without persisting content")
	verbose := fs.Bool("verbose", false, "Log sync decisions")

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

	result, err := module.Service.Sync(context.Background(), *directory, interfaces.SyncOptions{
		ImportOptions: interfaces.ImportOptions{
			Scope:       *scope,
			AuthorID:    authorID,
			DefaultKind: *defaultKind,
			DryRun:      *dryRun,
		},
		DeleteOrphaned: *deleteOrphaned,
	})
	if err != nil {
		return fmt.Errorf("sync directory: %w", err)
	}

	fmt.Fprintf(out, "created=%d updated=%d deleted=%d skipped=%d errors=%d\n",
		result.Created, result.Updated, result.Deleted, result.Skipped, len(result.Errors))
	for _, syncErr := range result.Errors {
		fmt.Fprintf(out, "error: %v\n", syncErr)
	}
	return nil
}
