// File: cmd/components.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/formforge/internal/browser"
	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/document/pdfform"
	"github.com/xkilldash9x/formforge/internal/generator"
)

// components holds the long-lived services one command run needs.
type components struct {
	Generator *generator.Generator
	Manager   *browser.Manager
	logger    *zap.Logger
}

// Shutdown stops the browser, if one was started.
func (c *components) Shutdown(ctx context.Context) {
	if c.Manager == nil {
		return
	}
	if err := c.Manager.Shutdown(ctx); err != nil {
		c.logger.Warn("Browser shutdown did not complete cleanly.", zap.Error(err))
	}
}

// initializeComponents wires the generator. The browser is only launched when
// some request carries markup. A dry run records drawing operations instead of
// producing a PDF.
func initializeComponents(ctx context.Context, cfg *config.Config, reqs []generator.Request, dryRun bool, logger *zap.Logger) (*components, error) {
	c := &components{logger: logger}

	// Leave engine as a nil interface when no browser is needed.
	var engine generator.Engine
	if needsEngine(reqs) {
		m, err := browser.NewManager(ctx, logger, cfg.Browser())
		if err != nil {
			return c, fmt.Errorf("failed to start rendering engine: %w", err)
		}
		c.Manager = m
		engine = m
	}

	factory := pdfform.NewFactory(logger)
	if dryRun {
		factory = dryRunFactory(cfg.Page())
	}
	c.Generator = generator.New(cfg, engine, factory, logger)
	return c, nil
}

func needsEngine(reqs []generator.Request) bool {
	for _, r := range reqs {
		if r.Markup != "" {
			return true
		}
	}
	return false
}

// dryRunFactory returns recorders that adopt as many pages as the rendered
// base document has. Base pages take the configured page size.
func dryRunFactory(page config.PageConfig) document.Factory {
	return func(base []byte) (document.Builder, error) {
		n := 0
		if len(base) > 0 {
			var err error
			if n, err = pdfform.CountPages(base); err != nil {
				return nil, fmt.Errorf("failed to read rendered pages: %w", err)
			}
		}
		return document.RecorderFactory(n, page.Width, page.Height)(base)
	}
}

// summary is the report printed after each job.
type summary struct {
	Job      string   `yaml:"job"`
	Output   string   `yaml:"output,omitempty"`
	Pages    int      `yaml:"pages"`
	Fields   int      `yaml:"fields"`
	Skipped  []string `yaml:"skipped,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
	Error    string   `yaml:"error,omitempty"`
}

func newSummary(job, output string, res *generator.Result) summary {
	s := summary{Job: job, Output: output}
	if res == nil {
		return s
	}
	s.Pages = res.PageCount
	s.Fields = res.FieldCount
	s.Warnings = res.Warnings
	for _, sk := range res.Skipped {
		s.Skipped = append(s.Skipped, sk.String())
	}
	return s
}

// writeOutput stores the document at path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}
	return enc.Close()
}
