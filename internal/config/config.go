package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Server struct {
		Address        string   `yaml:"address"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Firebase struct {
		ProjectID       string `yaml:"project_id"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	AI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"ai"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		ImageTTL time.Duration `yaml:"image_ttl"`
	} `yaml:"redis"`
	Storage struct {
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"storage"`
}

// RemoteConfigured reports whether a remote project is set. It is the only
// switch between connected and fallback mode.
func (c Config) RemoteConfigured() bool {
	return c.Firebase.ProjectID != ""
}

// LoadConfig reads the yaml file named by CONFIG_PATH (a missing file is
// fine) and applies environment overrides.
func LoadConfig() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := loadFile(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg
}

func loadFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.Server.Address, "SERVER_ADDRESS")
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Address = ":" + port
	}
	override(&cfg.Firebase.ProjectID, "FIREBASE_PROJECT_ID")
	override(&cfg.Firebase.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	override(&cfg.AI.APIKey, "OPENAI_API_KEY")
	override(&cfg.AI.BaseURL, "OPENAI_BASE_URL")
	override(&cfg.AI.Model, "OPENAI_MODEL")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
	override(&cfg.Redis.Password, "REDIS_PASSWORD")
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.Redis.DB = n
		} else {
			log.Printf("Warning: ignoring invalid REDIS_DB %q", db)
		}
	}
	override(&cfg.Storage.Bucket, "S3_BUCKET")
	override(&cfg.Storage.Region, "S3_REGION")
	override(&cfg.Storage.Endpoint, "S3_ENDPOINT")
	override(&cfg.Storage.AccessKey, "S3_ACCESS_KEY")
	override(&cfg.Storage.SecretKey, "S3_SECRET_KEY")
	override(&cfg.Storage.PublicURL, "S3_PUBLIC_URL")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":4001"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:9002"}
	}
	if cfg.Redis.ImageTTL <= 0 {
		cfg.Redis.ImageTTL = 24 * time.Hour
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
