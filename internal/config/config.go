package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vbind/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "vbind.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "vbind.yaml"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultMount is the default mount selector.
	DefaultMount = "#app"

	// DefaultPrefix is the default directive attribute prefix.
	DefaultPrefix = "v-"

	// DefaultMetricsPath is where the dev server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"
)

// Config represents a vbind.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Template is the template path or URI.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// Data is the store data path or URI (JSON or YAML).
	Data string `json:"data,omitempty" yaml:"data,omitempty"`

	// Mount is the selector of the element to compile ("#id" or a tag name).
	Mount string `json:"mount,omitempty" yaml:"mount,omitempty"`

	// DirectivePrefix marks directive attributes.
	DirectivePrefix string `json:"directivePrefix,omitempty" yaml:"directivePrefix,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty" yaml:"dev,omitempty"`

	// Source contains remote source configuration.
	Source SourceConfig `json:"source,omitempty" yaml:"source,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Watch reloads the page when the template or data file changes.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty"`

	// MetricsPath is the Prometheus endpoint path. Empty disables it.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`
}

// SourceConfig contains settings for s3:// sources.
type SourceConfig struct {
	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (for S3-compatible stores).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Template:        "index.html",
		Mount:           DefaultMount,
		DirectivePrefix: DefaultPrefix,
		Dev: DevConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			Watch:       true,
			MetricsPath: DefaultMetricsPath,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// vbind.json first, then vbind.yaml.
func Load(dir string) (*Config, error) {
	jsonPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(jsonPath); err == nil {
		return LoadFile(jsonPath)
	}
	yamlPath := filepath.Join(dir, YAMLConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return LoadFile(yamlPath)
	}
	return nil, errors.New("E061").
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir).
		WithSuggestion("Create vbind.json with at least a \"template\" entry")
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E061").WithDetail(path)
		}
		return nil, errors.New("E060").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E060").
			WithDetail("Failed to parse " + filepath.Base(path)).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E060").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E060").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Mount == "" {
		c.Mount = DefaultMount
	}
	if c.DirectivePrefix == "" {
		c.DirectivePrefix = DefaultPrefix
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E062").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if c.Template == "" {
		return errors.New("E062").
			WithDetail("template is required")
	}
	if strings.ContainsAny(c.DirectivePrefix, " =\"'<>") {
		return errors.New("E062").
			WithDetail("directivePrefix must be usable in an attribute name")
	}
	if c.Dev.MetricsPath != "" && !strings.HasPrefix(c.Dev.MetricsPath, "/") {
		return errors.New("E062").
			WithDetail("dev.metricsPath must start with /")
	}
	return nil
}

// TemplatePath returns the template location, resolved against Dir.
func (c *Config) TemplatePath() string {
	return c.resolve(c.Template)
}

// DataPath returns the data location, resolved against Dir. Empty if unset.
func (c *Config) DataPath() string {
	if c.Data == "" {
		return ""
	}
	return c.resolve(c.Data)
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

func (c *Config) resolve(p string) string {
	if strings.Contains(p, "://") || filepath.IsAbs(p) || c.configPath == "" {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
