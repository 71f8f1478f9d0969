package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Storage struct {
		Type       string `yaml:"type"`      // local, s3
		BasePath   string `yaml:"base_path"` // local only
		BaseURL    string `yaml:"base_url"`
		Bucket     string `yaml:"bucket"`
		Region     string `yaml:"region"`
		AccessKey  string `yaml:"access_key"`
		SecretKey  string `yaml:"secret_key"`
		Endpoint   string `yaml:"endpoint"`
		UseSSL     bool   `yaml:"use_ssl"`
		PublicRead bool   `yaml:"public_read"`
	} `yaml:"storage"`

	Chat struct {
		DeleteWindowMinutes int    `yaml:"delete_window_minutes"` // delete-for-everyone window for non-moderators
		PreviewLength       int    `yaml:"preview_length"`        // notification/sidebar preview truncation, in runes
		TombstoneText       string `yaml:"tombstone_text"`
	} `yaml:"chat"`
}

var AppConfig *Config

// LoadConfig reads config.yaml (CONFIG_PATH overrides the location) and then
// lets DATABASE_URL / SERVER_ENV / SERVER_PORT env vars take precedence, so
// containerized deployments can run without a config file at all.
func LoadConfig() {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if f, err := os.Open(configPath); err == nil {
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			f.Close()
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
		f.Close()
	} else if os.Getenv("DATABASE_URL") == "" {
		log.Fatalf("Failed to open config file at %s: %v", configPath, err)
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.DSN = dbURL
	}
	if env := os.Getenv("SERVER_ENV"); env != "" {
		cfg.Server.Env = env
	}
	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		cfg.Server.Port, _ = strconv.Atoi(portStr)
	}

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Chat.DeleteWindowMinutes == 0 {
		cfg.Chat.DeleteWindowMinutes = 5
	}
	if cfg.Chat.PreviewLength == 0 {
		cfg.Chat.PreviewLength = 30
	}
	if cfg.Chat.TombstoneText == "" {
		cfg.Chat.TombstoneText = "This message was deleted"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
		cfg.Storage.BasePath = "uploads"
	}
}
