// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/formforge/internal/geometry"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Render() RenderConfig
	Page() PageConfig
	Fields() FieldsConfig
	Batch() BatchConfig

	SetPage(pc PageConfig)
	SetRenderFormat(format string)
	SetBrowserHeadless(bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	RenderCfg  RenderConfig  `mapstructure:"render" yaml:"render"`
	PageCfg    PageConfig    `mapstructure:"page" yaml:"page"`
	FieldsCfg  FieldsConfig  `mapstructure:"fields" yaml:"fields"`
	BatchCfg   BatchConfig   `mapstructure:"batch" yaml:"batch"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Render() RenderConfig   { return c.RenderCfg }
func (c *Config) Page() PageConfig       { return c.PageCfg }
func (c *Config) Fields() FieldsConfig   { return c.FieldsCfg }
func (c *Config) Batch() BatchConfig     { return c.BatchCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetPage(pc PageConfig)         { c.PageCfg = pc }
func (c *Config) SetRenderFormat(format string) { c.RenderCfg.Format = format }
func (c *Config) SetBrowserHeadless(b bool)     { c.BrowserCfg.Headless = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless rendering engine.
type BrowserConfig struct {
	Headless         bool          `mapstructure:"headless" yaml:"headless"`
	ExecPath         string        `mapstructure:"exec_path" yaml:"exec_path"`
	Args             []string      `mapstructure:"args" yaml:"args"`
	LaunchTimeout    time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	RenderTimeout    time.Duration `mapstructure:"render_timeout" yaml:"render_timeout"`
	SettleWait       time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
	QueryConcurrency int           `mapstructure:"query_concurrency" yaml:"query_concurrency"`
}

// RenderConfig controls how markup is turned into rendered pages.
type RenderConfig struct {
	// Format is "html" or "markdown".
	Format          string  `mapstructure:"format" yaml:"format"`
	Sanitize        bool    `mapstructure:"sanitize" yaml:"sanitize"`
	Scale           float64 `mapstructure:"scale" yaml:"scale"`
	PrintBackground bool    `mapstructure:"print_background" yaml:"print_background"`
	Title           string  `mapstructure:"title" yaml:"title"`
}

// MarginConfig is a set of page margins in points.
type MarginConfig struct {
	Top    float64 `mapstructure:"top" yaml:"top"`
	Right  float64 `mapstructure:"right" yaml:"right"`
	Bottom float64 `mapstructure:"bottom" yaml:"bottom"`
	Left   float64 `mapstructure:"left" yaml:"left"`
}

// PageConfig is the page layout used for one generation session. Sizes are in points.
type PageConfig struct {
	// Size names a paper size ("A4", "Letter"); when set it overrides Width and Height.
	Size             string       `mapstructure:"size" yaml:"size"`
	Landscape        bool         `mapstructure:"landscape" yaml:"landscape"`
	Width            float64      `mapstructure:"width" yaml:"width"`
	Height           float64      `mapstructure:"height" yaml:"height"`
	Margins          MarginConfig `mapstructure:"margins" yaml:"margins"`
	HeaderHeight     float64      `mapstructure:"header_height" yaml:"header_height"`
	FooterHeight     float64      `mapstructure:"footer_height" yaml:"footer_height"`
	HeaderText       string       `mapstructure:"header_text" yaml:"header_text"`
	FooterText       string       `mapstructure:"footer_text" yaml:"footer_text"`
	BandFontSize     float64      `mapstructure:"band_font_size" yaml:"band_font_size"`
	PageNumberFormat string       `mapstructure:"page_number_format" yaml:"page_number_format"`
	PageNumberAlign  string       `mapstructure:"page_number_align" yaml:"page_number_align"`
	AutoPageBreak    bool         `mapstructure:"auto_page_break" yaml:"auto_page_break"`
	Paginated        bool         `mapstructure:"paginated" yaml:"paginated"`
}

// ContentTop is the ordinate of the first line below the header band.
func (p PageConfig) ContentTop() float64 {
	return p.Height - p.Margins.Top - p.HeaderHeight
}

// ContentBottom is the lowest ordinate content may occupy.
func (p PageConfig) ContentBottom() float64 {
	return p.Margins.Bottom + p.FooterHeight
}

// ContentHeight is the vertical space available for content on one page.
// It is negative when the bands do not fit.
func (p PageConfig) ContentHeight() float64 {
	return p.ContentTop() - p.ContentBottom()
}

// ContentWidth is the horizontal space between the side margins.
func (p PageConfig) ContentWidth() float64 {
	return p.Width - p.Margins.Left - p.Margins.Right
}

// FieldsConfig holds the generator-wide field defaults.
type FieldsConfig struct {
	DefaultWidth    float64 `mapstructure:"default_width" yaml:"default_width"`
	DefaultHeight   float64 `mapstructure:"default_height" yaml:"default_height"`
	SignatureHeight float64 `mapstructure:"signature_height" yaml:"signature_height"`
	FontName        string  `mapstructure:"font_name" yaml:"font_name"`
	FontSize        float64 `mapstructure:"font_size" yaml:"font_size"`
	BorderWidth     float64 `mapstructure:"border_width" yaml:"border_width"`
	CheckboxSize    float64 `mapstructure:"checkbox_size" yaml:"checkbox_size"`
	RadioSize       float64 `mapstructure:"radio_size" yaml:"radio_size"`
	RadioSpacing    float64 `mapstructure:"radio_spacing" yaml:"radio_spacing"`
	LabelFontSize   float64 `mapstructure:"label_font_size" yaml:"label_font_size"`
	LabelGap        float64 `mapstructure:"label_gap" yaml:"label_gap"`
	BlockSpacing    float64 `mapstructure:"block_spacing" yaml:"block_spacing"`
}

// BatchConfig controls multi-job runs.
type BatchConfig struct {
	MinInterval     time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	ContinueOnError bool          `mapstructure:"continue_on_error" yaml:"continue_on_error"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "formforge")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.launch_timeout", "30s")
	v.SetDefault("browser.render_timeout", "60s")
	v.SetDefault("browser.settle_wait", "200ms")
	v.SetDefault("browser.query_concurrency", 8)

	// -- Render --
	v.SetDefault("render.format", "html")
	v.SetDefault("render.sanitize", false)
	v.SetDefault("render.scale", 0.75)
	v.SetDefault("render.print_background", true)

	// -- Page --
	v.SetDefault("page.size", "")
	v.SetDefault("page.width", 612)
	v.SetDefault("page.height", 792)
	v.SetDefault("page.margins.top", 36)
	v.SetDefault("page.margins.right", 36)
	v.SetDefault("page.margins.bottom", 36)
	v.SetDefault("page.margins.left", 36)
	v.SetDefault("page.header_height", 0)
	v.SetDefault("page.footer_height", 20)
	v.SetDefault("page.band_font_size", 9)
	v.SetDefault("page.page_number_format", "Page {page} of {total}")
	v.SetDefault("page.page_number_align", "center")
	v.SetDefault("page.auto_page_break", true)
	v.SetDefault("page.paginated", false)

	// -- Fields --
	v.SetDefault("fields.default_width", 200)
	v.SetDefault("fields.default_height", 20)
	v.SetDefault("fields.signature_height", 60)
	v.SetDefault("fields.font_name", "Helvetica")
	v.SetDefault("fields.font_size", 12)
	v.SetDefault("fields.border_width", 1)
	v.SetDefault("fields.checkbox_size", 12)
	v.SetDefault("fields.radio_size", 12)
	v.SetDefault("fields.radio_spacing", 6)
	v.SetDefault("fields.label_font_size", 10)
	v.SetDefault("fields.label_gap", 4)
	v.SetDefault("fields.block_spacing", 10)

	// -- Batch --
	v.SetDefault("batch.min_interval", "0s")
	v.SetDefault("batch.continue_on_error", false)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	v.BindEnv("browser.exec_path", "FORMFORGE_CHROME_PATH")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.PageCfg.ApplySize(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.BrowserCfg.QueryConcurrency <= 0 {
		return fmt.Errorf("browser.query_concurrency must be a positive integer")
	}
	if c.BrowserCfg.LaunchTimeout <= 0 || c.BrowserCfg.RenderTimeout <= 0 {
		return fmt.Errorf("browser timeouts must be positive durations")
	}
	switch strings.ToLower(c.RenderCfg.Format) {
	case "html", "markdown":
	default:
		return fmt.Errorf("render.format must be one of html, markdown")
	}
	if c.RenderCfg.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive")
	}
	if err := c.PageCfg.Validate(); err != nil {
		return fmt.Errorf("page configuration invalid: %w", err)
	}
	if err := c.FieldsCfg.Validate(); err != nil {
		return fmt.Errorf("fields configuration invalid: %w", err)
	}
	if c.BatchCfg.MinInterval < 0 {
		return fmt.Errorf("batch.min_interval must not be negative")
	}
	return nil
}

// Validate checks the page geometry. Bands that do not fit are not an error;
// see Warnings.
func (p *PageConfig) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	m := p.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("margins must not be negative")
	}
	if p.HeaderHeight < 0 || p.FooterHeight < 0 {
		return fmt.Errorf("header_height and footer_height must not be negative")
	}
	switch p.PageNumberAlign {
	case "", "left", "center", "right":
	default:
		return fmt.Errorf("page_number_align must be one of left, center, right")
	}
	return nil
}

// ApplySize resolves Size (and Landscape) into Width and Height. A
// "-landscape" or "-l" suffix on Size sets Landscape.
func (p *PageConfig) ApplySize() error {
	if p.Size == "" {
		return nil
	}
	name := strings.ToLower(strings.TrimSpace(p.Size))
	for _, suffix := range []string{"-landscape", "-l"} {
		if base, ok := strings.CutSuffix(name, suffix); ok {
			name = base
			p.Landscape = true
			break
		}
	}
	paper, ok := geometry.LookupPaper(name)
	if !ok {
		return fmt.Errorf("unknown page size %q", p.Size)
	}
	if p.Landscape {
		paper = paper.Landscape()
	}
	p.Width, p.Height = paper.Width, paper.Height
	return nil
}

// Warnings reports configuration that is accepted but will make content overflow.
func (p PageConfig) Warnings() []string {
	var out []string
	if p.HeaderHeight+p.FooterHeight >= p.Height {
		out = append(out, fmt.Sprintf("header (%.1f) and footer (%.1f) bands exceed the page height (%.1f)",
			p.HeaderHeight, p.FooterHeight, p.Height))
	}
	if h := p.ContentHeight(); h <= 0 {
		out = append(out, fmt.Sprintf("page content height is %.1f; content will overflow every page", h))
	}
	if p.ContentWidth() <= 0 {
		out = append(out, "side margins leave no horizontal space for content")
	}
	return out
}

// Validate checks the field defaults.
func (f *FieldsConfig) Validate() error {
	if f.DefaultWidth <= 0 || f.DefaultHeight <= 0 || f.SignatureHeight <= 0 {
		return fmt.Errorf("default field sizes must be positive")
	}
	if f.FontSize <= 0 {
		return fmt.Errorf("font_size must be positive")
	}
	if f.BorderWidth < 0 {
		return fmt.Errorf("border_width must not be negative")
	}
	if f.CheckboxSize <= 0 || f.RadioSize <= 0 || f.RadioSpacing < 0 {
		return fmt.Errorf("checkbox_size and radio_size must be positive, radio_spacing must not be negative")
	}
	return nil
}
