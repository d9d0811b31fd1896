// Package config loads the reconciliation job's configuration from a YAML
// file with environment variable overrides, so credentials can live in .env
// locally and in real env vars on the deployment host. Every stage entry
// point receives its sub-struct explicitly; nothing reads process-wide
// constants.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the reconciliation jobs.
type Config struct {
	Client   ClientConfig   `yaml:"client"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Sources  SourcesConfig  `yaml:"sources"`
	Merge    MergeConfig    `yaml:"merge"`
	Upload   UploadConfig   `yaml:"upload"`
	Tags     TagsConfig     `yaml:"tags"`
}

// ClientConfig identifies the tenant whose data this run touches.
type ClientConfig struct {
	ID string `yaml:"id"`
}

// SupabaseConfig holds the hosted-store endpoint and service credential.
type SupabaseConfig struct {
	URL            string `yaml:"url"`
	ServiceKey     string `yaml:"service_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured HTTP timeout as a duration.
func (c SupabaseConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SourcesConfig holds the CRM and marketing-platform export locations.
// Paths may be local files or s3://bucket/key URIs.
type SourcesConfig struct {
	ContactsFile       string `yaml:"contacts_file"`
	LeadsFile          string `yaml:"leads_file"`
	MarketingCloudFile string `yaml:"marketing_cloud_file"`
	AWSRegion          string `yaml:"aws_region"`
	AWSProfile         string `yaml:"aws_profile"`
}

// MergeConfig holds merge-stage settings.
type MergeConfig struct {
	OutputFile string `yaml:"output_file"`
}

// UploadConfig holds batch-synchronizer settings.
type UploadConfig struct {
	InputFile    string `yaml:"input_file"`
	BatchSize    int    `yaml:"batch_size"`
	BatchDelayMS int    `yaml:"batch_delay_ms"`
}

// BatchDelay returns the inter-batch courtesy delay as a duration.
func (c UploadConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

// TagsConfig holds tag-frequency-derivation settings. The fetch page size
// and insert batch size are independent knobs.
type TagsConfig struct {
	PageSize  int `yaml:"page_size"`
	BatchSize int `yaml:"batch_size"`
}

// Load reads and parses the configuration file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Supabase.TimeoutSeconds == 0 {
		cfg.Supabase.TimeoutSeconds = 60
	}
	if cfg.Sources.AWSRegion == "" {
		cfg.Sources.AWSRegion = "us-east-1"
	}
	if cfg.Merge.OutputFile == "" {
		cfg.Merge.OutputFile = "supabase_import_ready.csv"
	}
	if cfg.Upload.InputFile == "" {
		cfg.Upload.InputFile = cfg.Merge.OutputFile
	}
	if cfg.Upload.BatchSize == 0 {
		cfg.Upload.BatchSize = 500
	}
	if cfg.Upload.BatchDelayMS == 0 {
		cfg.Upload.BatchDelayMS = 100
	}
	if cfg.Tags.PageSize == 0 {
		cfg.Tags.PageSize = 1000
	}
	if cfg.Tags.BatchSize == 0 {
		cfg.Tags.BatchSize = 500
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file is loaded first if present (no error when missing).
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_KEY"); v != "" {
		cfg.Supabase.ServiceKey = v
	}
	if v := os.Getenv("CLIENT_ID"); v != "" {
		cfg.Client.ID = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Sources.AWSRegion = v
	}
	if v := os.Getenv("AWS_PROFILE_OVERRIDE"); v != "" {
		if v == "none" || v == "iam" {
			cfg.Sources.AWSProfile = ""
		} else {
			cfg.Sources.AWSProfile = v
		}
	}

	return cfg, nil
}

// Validate checks the fields every stage depends on. The client ID is the
// conflict-key component stamped on every store row, so it must be a valid
// UUID before any data is written.
func (c *Config) Validate() error {
	if c.Client.ID == "" {
		return fmt.Errorf("client.id is required")
	}
	if _, err := uuid.Parse(c.Client.ID); err != nil {
		return fmt.Errorf("client.id %q is not a valid UUID: %w", c.Client.ID, err)
	}
	return nil
}

// ValidateStore additionally checks the store endpoint and credential,
// required by the upload and tag stages but not by the merge stage.
func (c *Config) ValidateStore() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Supabase.URL == "" {
		return fmt.Errorf("supabase.url is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("supabase.service_key is required")
	}
	return nil
}
