// Package config loads mdpage configuration from defaults, a YAML file,
// MDPAGE_* environment variables and command line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/mdpage"
	"pkt.systems/mdpage/pdf"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MDPAGE"

// Config holds the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Answer  AnswerConfig  `mapstructure:"answer" yaml:"answer"`
	Page    PageConfig    `mapstructure:"page" yaml:"page"`
	PDF     PDFConfig     `mapstructure:"pdf" yaml:"pdf"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Console ConsoleConfig `mapstructure:"console" yaml:"console"`
}

// ServerConfig configures `mdpage serve`.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// MaxExportBytes limits the body of POST /export.
	MaxExportBytes int64 `mapstructure:"max_export_bytes" yaml:"max_export_bytes"`
}

// ClientConfig configures the websocket client used by `mdpage ask`.
type ClientConfig struct {
	URL         string        `mapstructure:"url" yaml:"url"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	// IdleTimeout completes a stream after silence; zero waits for the done marker.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	HistorySize int           `mapstructure:"history_size" yaml:"history_size"`
}

// AnswerConfig selects and configures the answer source of the server.
type AnswerConfig struct {
	Source    string          `mapstructure:"source" yaml:"source"`
	Gemini    GeminiConfig    `mapstructure:"gemini" yaml:"gemini"`
	Simulator SimulatorConfig `mapstructure:"simulator" yaml:"simulator"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Model   string        `mapstructure:"model" yaml:"model"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SimulatorConfig holds settings of the offline answer source.
type SimulatorConfig struct {
	File       string        `mapstructure:"file" yaml:"file"`
	ChunkRunes int           `mapstructure:"chunk_runes" yaml:"chunk_runes"`
	Delay      time.Duration `mapstructure:"delay" yaml:"delay"`
}

// PageConfig is the page geometry and break thresholds in millimeters.
type PageConfig struct {
	Width          float64 `mapstructure:"width" yaml:"width"`
	Height         float64 `mapstructure:"height" yaml:"height"`
	Margin         float64 `mapstructure:"margin" yaml:"margin"`
	BlockBreak     float64 `mapstructure:"block_break" yaml:"block_break"`
	ParagraphBreak float64 `mapstructure:"paragraph_break" yaml:"paragraph_break"`
	ListBreak      float64 `mapstructure:"list_break" yaml:"list_break"`
}

// PDFConfig holds document writer settings.
type PDFConfig struct {
	FontFamily   string `mapstructure:"font_family" yaml:"font_family"`
	FooterGray   int    `mapstructure:"footer_gray" yaml:"footer_gray"`
	Author       string `mapstructure:"author" yaml:"author"`
	Uncompressed bool   `mapstructure:"uncompressed" yaml:"uncompressed"`
	OutDir       string `mapstructure:"out_dir" yaml:"out_dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ConsoleConfig holds terminal rendering settings.
type ConsoleConfig struct {
	Theme      string `mapstructure:"theme" yaml:"theme"`
	Width      int    `mapstructure:"width" yaml:"width"`
	Hyperlinks string `mapstructure:"hyperlinks" yaml:"hyperlinks"`
}

// DefaultConfig returns a new configuration with default values.
func DefaultConfig() *Config {
	th := mdpage.DefaultThresholds()
	return &Config{
		Server: ServerConfig{
			Addr:              ":8000",
			AllowedOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			MaxExportBytes:    4 << 20,
		},
		Client: ClientConfig{
			URL:         "ws://localhost:8000/ws",
			DialTimeout: 10 * time.Second,
			HistorySize: 10,
		},
		Answer: AnswerConfig{
			Source: "simulator",
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-pro-exp-02-05",
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
				Timeout: 10 * time.Minute,
			},
			Simulator: SimulatorConfig{
				ChunkRunes: 24,
				Delay:      20 * time.Millisecond,
			},
		},
		Page: PageConfig{
			Width:          mdpage.A4Width,
			Height:         mdpage.A4Height,
			Margin:         mdpage.DefaultMargin,
			BlockBreak:     th.BlockBreak,
			ParagraphBreak: th.ParagraphBreak,
			ListBreak:      th.ListBreak,
		},
		PDF: PDFConfig{
			FontFamily: "Helvetica",
			FooterGray: 100,
			OutDir:     ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Console: ConsoleConfig{
			Theme:      "default",
			Hyperlinks: "auto",
		},
	}
}

// Load reads configuration. path may be empty, in which case mdpage.yaml is
// looked up in the working directory and $HOME/.config/mdpage and a missing
// file is not an error. flags maps configuration keys to command line flags;
// only flags that were set override lower layers.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the key name used by the Gemini SDKs
	if err := v.BindEnv("answer.gemini.api_key", EnvPrefix+"_ANSWER_GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mdpage")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mdpage")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", describePath(path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func describePath(path string) string {
	if path == "" {
		return "mdpage.yaml"
	}
	return path
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	g := c.Geometry()
	if g.Width <= 0 || g.Height <= 0 || g.Margin < 0 || g.ContentWidth <= 0 {
		return fmt.Errorf("config: invalid page geometry %gx%g margin %g", g.Width, g.Height, g.Margin)
	}
	switch c.Answer.Source {
	case "gemini", "simulator":
	default:
		return fmt.Errorf("config: unknown answer source %q (must be gemini or simulator)", c.Answer.Source)
	}
	switch c.Log.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	switch c.Console.Hyperlinks {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("config: console.hyperlinks must be auto, always or never")
	}
	if c.Client.HistorySize < 1 {
		return fmt.Errorf("config: client.history_size must be positive")
	}
	if c.Client.IdleTimeout < 0 {
		return fmt.Errorf("config: client.idle_timeout must not be negative")
	}
	if c.Answer.Simulator.ChunkRunes < 1 {
		return fmt.Errorf("config: answer.simulator.chunk_runes must be positive")
	}
	return nil
}

// Geometry returns the configured page geometry.
func (c *Config) Geometry() mdpage.PageGeometry {
	return mdpage.NewGeometry(c.Page.Width, c.Page.Height, c.Page.Margin)
}

// Thresholds returns the configured page break thresholds.
func (c *Config) Thresholds() mdpage.Thresholds {
	return mdpage.Thresholds{
		BlockBreak:     c.Page.BlockBreak,
		ParagraphBreak: c.Page.ParagraphBreak,
		ListBreak:      c.Page.ListBreak,
	}
}

// PDFConfig returns the document writer settings.
func (c *Config) PDFConfig() pdf.Config {
	return pdf.Config{
		FontFamily:   c.PDF.FontFamily,
		FooterGray:   c.PDF.FooterGray,
		Author:       c.PDF.Author,
		Uncompressed: c.PDF.Uncompressed,
	}
}

// YAML renders the configuration with secrets masked.
func (c *Config) YAML() ([]byte, error) {
	masked := *c
	if masked.Answer.Gemini.APIKey != "" {
		masked.Answer.Gemini.APIKey = "********"
	}
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return out, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.read_header_timeout", d.Server.ReadHeaderTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_export_bytes", d.Server.MaxExportBytes)
	v.SetDefault("client.url", d.Client.URL)
	v.SetDefault("client.dial_timeout", d.Client.DialTimeout)
	v.SetDefault("client.idle_timeout", d.Client.IdleTimeout)
	v.SetDefault("client.history_size", d.Client.HistorySize)
	v.SetDefault("answer.source", d.Answer.Source)
	v.SetDefault("answer.gemini.api_key", d.Answer.Gemini.APIKey)
	v.SetDefault("answer.gemini.model", d.Answer.Gemini.Model)
	v.SetDefault("answer.gemini.base_url", d.Answer.Gemini.BaseURL)
	v.SetDefault("answer.gemini.timeout", d.Answer.Gemini.Timeout)
	v.SetDefault("answer.simulator.file", d.Answer.Simulator.File)
	v.SetDefault("answer.simulator.chunk_runes", d.Answer.Simulator.ChunkRunes)
	v.SetDefault("answer.simulator.delay", d.Answer.Simulator.Delay)
	v.SetDefault("page.width", d.Page.Width)
	v.SetDefault("page.height", d.Page.Height)
	v.SetDefault("page.margin", d.Page.Margin)
	v.SetDefault("page.block_break", d.Page.BlockBreak)
	v.SetDefault("page.paragraph_break", d.Page.ParagraphBreak)
	v.SetDefault("page.list_break", d.Page.ListBreak)
	v.SetDefault("pdf.font_family", d.PDF.FontFamily)
	v.SetDefault("pdf.footer_gray", d.PDF.FooterGray)
	v.SetDefault("pdf.author", d.PDF.Author)
	v.SetDefault("pdf.uncompressed", d.PDF.Uncompressed)
	v.SetDefault("pdf.out_dir", d.PDF.OutDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("console.theme", d.Console.Theme)
	v.SetDefault("console.width", d.Console.Width)
	v.SetDefault("console.hyperlinks", d.Console.Hyperlinks)
}
