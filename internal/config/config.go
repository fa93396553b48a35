package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	HTTP    HTTPConfig    `yaml:"http"`
	IO      IOConfig      `yaml:"io"`
	Proxies ProxyConfig   `yaml:"proxies"`
	Browser BrowserConfig `yaml:"browser"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig holds the fetch layer configuration
type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"user_agent"`
	AcceptLanguage string        `yaml:"accept_language"`
}

// IOConfig holds the input/output configuration
type IOConfig struct {
	InputFile string `yaml:"input_file"`
	ExcelFile string `yaml:"excel_file"`
	CSVFile   string `yaml:"csv_file"`
	SitesFile string `yaml:"sites_file"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// BrowserConfig enables headless rendering for pages that ship an empty
// JS shell instead of server-rendered markup.
type BrowserConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Headless  bool          `yaml:"headless"`
	UserAgent string        `yaml:"user_agent"`
	WaitTime  time.Duration `yaml:"wait_time"`
}

// LoggingConfig holds the logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load loads the configuration from a YAML file on top of the defaults.
func Load(filename string) (*AppConfig, error) {
	config := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filename, err)
	}

	if config.HTTP.UserAgent == "" {
		config.HTTP.UserAgent = DefaultUserAgent
	}
	if config.Browser.UserAgent == "" {
		config.Browser.UserAgent = config.HTTP.UserAgent
	}

	return config, nil
}

// Default returns a complete runnable configuration.
func Default() *AppConfig {
	return &AppConfig{
		HTTP: HTTPConfig{
			Timeout:        25 * time.Second,
			UserAgent:      DefaultUserAgent,
			AcceptLanguage: DefaultAcceptLanguage,
		},
		IO: IOConfig{
			InputFile: "banks_urls.txt",
			ExcelFile: "result.xlsx",
			CSVFile:   "result.csv",
			SitesFile: "sites_status.csv",
		},
		Proxies: ProxyConfig{
			Rotate: true,
		},
		Browser: BrowserConfig{
			Headless:  true,
			UserAgent: DefaultUserAgent,
			WaitTime:  5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
