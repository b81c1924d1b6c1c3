package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	JWTSecret  string

	OllamaURL    string
	DefaultModel string
	Models       []string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
}

// modelsFile is the yaml shape of config.yaml: the server address plus the
// model allow-list offered to the UI.
type modelsFile struct {
	ListenAddr   string   `yaml:"listen_addr"`
	DefaultModel string   `yaml:"default_model"`
	Models       []string `yaml:"models"`
}

func LoadConfig() Config {
	// Missing .env is fine; system environment still applies.
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:     ":8000",
		DBUser:         getEnv("DB_USER", ""),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBName:         getEnv("DB_NAME", "gollama"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		OllamaURL:      getEnv("OLLAMA_URL", "http://localhost:11434/api"),
		DefaultModel:   "phi:latest",
		Models:         []string{"phi:latest", "qwen3:0.6b", "hi:latest"},
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "gollama"),
	}

	if data, err := os.ReadFile(getEnv("CONFIG_FILE", "config.yaml")); err == nil {
		var file modelsFile
		if err := yaml.Unmarshal(data, &file); err == nil {
			if file.ListenAddr != "" {
				cfg.ListenAddr = file.ListenAddr
			}
			if file.DefaultModel != "" {
				cfg.DefaultModel = file.DefaultModel
			}
			if len(file.Models) > 0 {
				cfg.Models = file.Models
			}
		}
	}

	return cfg
}

// ModelAllowed reports whether model is in the allow-list.
func (c Config) ModelAllowed(model string) bool {
	for _, m := range c.Models {
		if m == model {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}
