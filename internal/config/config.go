package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"shift-checklist/internal/checklist"
	"shift-checklist/internal/history"
)

// Config holds all checklist server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Checklist ChecklistConfig `yaml:"checklist"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	SessionIdleTTL  string `yaml:"session_idle_ttl"` // "0" (default) keeps sessions until restart
	SecureCookies   bool   `yaml:"secure_cookies"`
	CSRFKey         string `yaml:"csrf_key"` // 32 bytes; empty disables CSRF checks
}

// AuthConfig configures the shared password gate.
type AuthConfig struct {
	Password string `yaml:"password"`
}

// SectionConfig is one group of inspection items.
type SectionConfig struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// ChecklistConfig configures the grid.
type ChecklistConfig struct {
	Layout          string          `yaml:"layout"` // by-section, by-machine-tabs, grid-with-bulk-header
	MachineCount    int             `yaml:"machine_count"`
	Machines        []string        `yaml:"machines"` // overrides machine_count when set
	Sections        []SectionConfig `yaml:"sections"`
	CommentItem     string          `yaml:"comment_item"`
	RequireOperator bool            `yaml:"require_operator"`
}

// HistoryConfig configures the CSV history file.
type HistoryConfig struct {
	File      string `yaml:"file"`
	Shape     string `yaml:"shape"`      // wide, long
	ClearMode string `yaml:"clear_mode"` // truncate, remove
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	sections := make([]SectionConfig, 0, 2)
	for _, s := range checklist.DefaultSections() {
		sections = append(sections, SectionConfig{Name: s.Name, Items: s.Items})
	}
	return &Config{
		Server: ServerConfig{
			Addr:            ":8501",
			ShutdownTimeout: "10s",
			SessionIdleTTL:  "0",
		},
		Auth: AuthConfig{
			Password: "2226",
		},
		Checklist: ChecklistConfig{
			Layout:       string(checklist.LayoutBySection),
			MachineCount: checklist.DefaultMachineCount,
			Sections:     sections,
			CommentItem:  checklist.DefaultCommentItem,
		},
		History: HistoryConfig{
			File:      history.DefaultFile,
			Shape:     string(history.ShapeWide),
			ClearMode: string(history.ClearTruncate),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file over the defaults, then a .env next to it, then
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := loadDotEnv(envFile(path)); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	return cfg, nil
}

func envFile(configPath string) string {
	if configPath == "" {
		return ".env"
	}
	return filepath.Join(filepath.Dir(configPath), ".env")
}

// loadDotEnv exports variables from a .env file without overriding ones
// already set. A missing file is fine.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

const saveHeader = "# checklist configuration. CHECKLIST_* environment variables override these values.\n"

// Save writes c as YAML to path. The file holds the access password, so it
// is owner-readable only. An existing file is kept unless overwrite is set.
func (c *Config) Save(path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(saveHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	f, err := os.OpenFile(path, flags, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHECKLIST_PASSWORD"); v != "" {
		c.Auth.Password = v
	}
	if v := os.Getenv("CHECKLIST_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CHECKLIST_CSRF_KEY"); v != "" {
		c.Server.CSRFKey = v
	}
	if v := os.Getenv("CHECKLIST_HISTORY_FILE"); v != "" {
		c.History.File = v
	}
	if v := os.Getenv("CHECKLIST_SHAPE"); v != "" {
		c.History.Shape = v
	}
	if v := os.Getenv("CHECKLIST_CLEAR_MODE"); v != "" {
		c.History.ClearMode = v
	}
	if v := os.Getenv("CHECKLIST_LAYOUT"); v != "" {
		c.Checklist.Layout = v
	}
	if v := os.Getenv("CHECKLIST_REQUIRE_OPERATOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Checklist.RequireOperator = b
		}
	}
	if v := os.Getenv("CHECKLIST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.Password == "" {
		errs = append(errs, errors.New("auth.password must be set (or CHECKLIST_PASSWORD)"))
	}
	if _, err := checklist.ParseLayout(c.Checklist.Layout); err != nil {
		errs = append(errs, err)
	}
	if _, err := history.ParseShape(c.History.Shape); err != nil {
		errs = append(errs, err)
	}
	if _, err := history.ParseClearMode(c.History.ClearMode); err != nil {
		errs = append(errs, err)
	}
	if c.History.File == "" {
		errs = append(errs, errors.New("history.file must be set"))
	}
	if c.Checklist.MachineCount < 0 {
		errs = append(errs, fmt.Errorf("checklist.machine_count must not be negative, got %d", c.Checklist.MachineCount))
	}
	cat := c.Catalog()
	if err := cat.Validate(); err != nil {
		errs = append(errs, err)
	} else if err := history.CheckCatalog(cat); err != nil {
		errs = append(errs, err)
	}
	if k := c.Server.CSRFKey; k != "" && len(k) != 32 {
		errs = append(errs, fmt.Errorf("server.csrf_key must be 32 bytes, got %d", len(k)))
	}
	return errors.Join(errs...)
}

// Catalog builds the machine/section catalog.
func (c *Config) Catalog() checklist.Catalog {
	machines := c.Checklist.Machines
	if len(machines) == 0 {
		machines = checklist.MachineNames(c.Checklist.MachineCount)
	}
	sections := make([]checklist.Section, 0, len(c.Checklist.Sections))
	for _, s := range c.Checklist.Sections {
		sections = append(sections, checklist.Section{Name: s.Name, Items: s.Items})
	}
	return checklist.Catalog{
		Machines:    machines,
		Sections:    sections,
		CommentItem: c.Checklist.CommentItem,
	}
}

// GetLayout returns the parsed layout, falling back to by-section.
func (c *Config) GetLayout() checklist.Layout {
	l, err := checklist.ParseLayout(c.Checklist.Layout)
	if err != nil {
		return checklist.LayoutBySection
	}
	return l
}

// GetShape returns the parsed row shape, falling back to wide.
func (c *Config) GetShape() history.Shape {
	s, err := history.ParseShape(c.History.Shape)
	if err != nil {
		return history.ShapeWide
	}
	return s
}

// GetClearMode returns the parsed clear mode, falling back to truncate.
func (c *Config) GetClearMode() history.ClearMode {
	m, err := history.ParseClearMode(c.History.ClearMode)
	if err != nil {
		return history.ClearTruncate
	}
	return m
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetSessionIdleTTL returns how long an idle session is kept; zero means
// sessions never expire.
func (c *Config) GetSessionIdleTTL() time.Duration {
	d, err := time.ParseDuration(c.Server.SessionIdleTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
