// File: internal/jobs/jobs.go
package jobs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/generator"
	"github.com/xkilldash9x/formforge/internal/markup"
	"github.com/xkilldash9x/formforge/internal/style"
)

// Job is a generation request stored as YAML. Relative paths are resolved
// against the directory of the job file.
type Job struct {
	Name string `yaml:"name"`

	// MarkupFile and Markup are alternatives; the file wins when both are set.
	MarkupFile string `yaml:"markup_file"`
	Markup     string `yaml:"markup"`
	CSSFile    string `yaml:"css_file"`
	CSS        string `yaml:"css"`
	Format     string `yaml:"format"`
	Title      string `yaml:"title"`
	Output     string `yaml:"output"`

	// Page holds a partial page layout applied over the configured one.
	Page yaml.Node `yaml:"page"`

	Fields []*fields.Spec       `yaml:"fields"`
	Blocks []generator.Block    `yaml:"blocks"`
	Colors map[string]style.RGB `yaml:"colors"`
	Sizes  map[string]float64   `yaml:"sizes"`

	dir string
}

// Load reads and decodes the job file at path. Unknown keys are rejected.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	job, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	job.dir = filepath.Dir(path)
	if job.Name == "" {
		job.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return job, nil
}

// Parse decodes a job document. Paths in it resolve against the working directory.
func Parse(data []byte) (*Job, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var job Job
	if err := dec.Decode(&job); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("job file is empty")
		}
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

func (j *Job) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || j.dir == "" {
		return p
	}
	return filepath.Join(j.dir, p)
}

// OutputPath is the resolved output path, or "" when the job names none.
func (j *Job) OutputPath() string { return j.resolve(j.Output) }

// Request builds the generator request. page is the configured layout the
// job's page section is applied over.
func (j *Job) Request(page config.PageConfig) (generator.Request, error) {
	req := generator.Request{
		Markup: j.Markup,
		CSS:    j.CSS,
		Title:  j.Title,
		Fields: j.Fields,
		Blocks: j.Blocks,
		Colors: j.Colors,
		Sizes:  j.Sizes,
	}

	if j.MarkupFile != "" {
		data, err := os.ReadFile(j.resolve(j.MarkupFile))
		if err != nil {
			return req, fmt.Errorf("failed to read markup: %w", err)
		}
		req.Markup = string(data)
	}
	if j.CSSFile != "" {
		data, err := os.ReadFile(j.resolve(j.CSSFile))
		if err != nil {
			return req, fmt.Errorf("failed to read css: %w", err)
		}
		req.CSS = strings.TrimSpace(req.CSS + "\n" + string(data))
	}

	format := j.Format
	if format == "" {
		switch strings.ToLower(filepath.Ext(j.MarkupFile)) {
		case ".md", ".markdown":
			format = string(markup.FormatMarkdown)
		}
	}
	if format != "" {
		f, err := markup.ParseFormat(format)
		if err != nil {
			return req, err
		}
		req.Format = f
	}

	if !j.Page.IsZero() {
		override := page
		if err := j.Page.Decode(&override); err != nil {
			return req, fmt.Errorf("invalid page section: %w", err)
		}
		req.Page = &override
	}
	return req, nil
}
