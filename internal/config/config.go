package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPassThreshold   = 75
	defaultPointsDivisor   = 10
	defaultTemplate        = "assets/certificate.png"
	defaultDateFormat      = "January 2, 2006"
	defaultCertificateRoot = "."
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Assessment struct {
		TTL string `yaml:"ttl"`
	} `yaml:"assessment"`
	Exam struct {
		PassThreshold int `yaml:"passThreshold"`
		PointsDivisor int `yaml:"pointsDivisor"`
	} `yaml:"exam"`
	Certificate Certificate `yaml:"certificate"`
}

// Certificate configures the compositor. Empty font paths use the bundled Go fonts.
type Certificate struct {
	Template     string `yaml:"template"`
	AssetRoot    string `yaml:"assetRoot"`
	DateFormat   string `yaml:"dateFormat"`
	RenderTTL    string `yaml:"renderTTL"`
	PhotoTimeout string `yaml:"photoTimeout"`
	Fonts        struct {
		Name   string `yaml:"name"`
		Course string `yaml:"course"`
		Date   string `yaml:"date"`
	} `yaml:"fonts"`
}

// Load reads YAML config from path and fills in defaults for exam and certificate values.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file values are set.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Exam.PassThreshold <= 0 {
		c.Exam.PassThreshold = defaultPassThreshold
	}
	if c.Exam.PointsDivisor <= 0 {
		c.Exam.PointsDivisor = defaultPointsDivisor
	}
	if c.Certificate.Template == "" {
		c.Certificate.Template = defaultTemplate
	}
	if c.Certificate.AssetRoot == "" {
		c.Certificate.AssetRoot = defaultCertificateRoot
	}
	if c.Certificate.DateFormat == "" {
		c.Certificate.DateFormat = defaultDateFormat
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
