package bootstrap

import (
	"fmt"
	"strings"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/internal/di"
	"github.com/goliatone/go-content/pkg/interfaces"
	"github.com/google/uuid"
)

// Options captures configuration shared by the markdown CLI entry points.
type Options struct {
	ContentDir     string
	Pattern        string
	Recursive      bool
	Verbose        bool
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the content module and the configured markdown service/logger.
type Module struct {
	Module  *content.Module
	Service interfaces.MarkdownService
	Logger  interfaces.Logger
}

// BuildModule constructs a content module configured for markdown operations.
func BuildModule(opts Options) (*Module, error) {
	cfg := content.DefaultConfig()
	cfg.Features.Markdown = true
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = strings.TrimSpace(opts.ContentDir)
	if cfg.Markdown.ContentDir == "" {
		cfg.Markdown.ContentDir = "content"
	}
	if trimmed := strings.TrimSpace(opts.Pattern); trimmed != "" {
		cfg.Markdown.Pattern = trimmed
	}
	cfg.Markdown.Recursive = opts.Recursive
	if opts.Verbose {
		cfg.Features.Logger = true
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := content.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise content module: %w", err)
	}

	service := module.Markdown()
	if service == nil {
		return nil, fmt.Errorf("markdown service not configured; ensure markdown feature is enabled")
	}

	return &Module{
		Module:  module,
		Service: service,
		Logger:  module.Logger("content.markdown"),
	}, nil
}

// ParseUUID converts the supplied string into a UUID, returning uuid.Nil when
// the input is empty.
func ParseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(trimmed)
}
