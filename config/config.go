package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Database
	DatabaseURL string `yaml:"database_url"`

	// Server
	ServerPort string `yaml:"server_port"`
	LogLevel   string `yaml:"log_level"`

	// AWS
	AWSRegion string `yaml:"aws_region"`

	// Asset series bucket
	AssetBucket    string `yaml:"asset_bucket"`
	AssetKeyPrefix string `yaml:"asset_key_prefix"`

	// Training pipeline
	PipelineName string `yaml:"pipeline_name"`

	// Inference endpoints
	EndpointInstanceType  string        `yaml:"endpoint_instance_type"`
	EndpointInstanceCount int           `yaml:"endpoint_instance_count"`
	EndpointExpiry        time.Duration `yaml:"endpoint_expiry"`
	CleanupInterval       time.Duration `yaml:"cleanup_interval"`

	// Model artifact tag lookup
	ModelTagRetryDelay time.Duration `yaml:"model_tag_retry_delay"`
	ModelTagRetries    int           `yaml:"model_tag_retries"`
}

// Load loads configuration from an optional YAML file (CONFIG_FILE), with
// environment variables taking precedence over both file and defaults
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:           "postgres://localhost/asset_prediction?sslmode=disable",
		ServerPort:            "8080",
		LogLevel:              "info",
		AWSRegion:             "us-east-1",
		AssetBucket:           "",
		AssetKeyPrefix:        "csv",
		PipelineName:          "asset-prediction-pipeline",
		EndpointInstanceType:  "ml.m5.large",
		EndpointInstanceCount: 1,
		EndpointExpiry:        30 * time.Minute,
		CleanupInterval:       5 * time.Minute,
		ModelTagRetryDelay:    5 * time.Second,
		ModelTagRetries:       1,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.AssetBucket = getEnv("ASSET_BUCKET_NAME", cfg.AssetBucket)
	cfg.AssetKeyPrefix = getEnv("ASSET_BUCKET_KEYPREFIX", cfg.AssetKeyPrefix)
	cfg.PipelineName = getEnv("PIPELINE_NAME", cfg.PipelineName)
	cfg.EndpointInstanceType = getEnv("ENDPOINT_INSTANCE_TYPE", cfg.EndpointInstanceType)

	var err error
	if cfg.EndpointInstanceCount, err = getEnvInt("ENDPOINT_INSTANCE_COUNT", cfg.EndpointInstanceCount); err != nil {
		return nil, err
	}
	if cfg.ModelTagRetries, err = getEnvInt("MODEL_TAG_RETRIES", cfg.ModelTagRetries); err != nil {
		return nil, err
	}
	if cfg.EndpointExpiry, err = getEnvMinutes("EXPIRY_TIME_IN_MINS", cfg.EndpointExpiry); err != nil {
		return nil, err
	}
	if cfg.CleanupInterval, err = getEnvMinutes("CLEANUP_INTERVAL_IN_MINS", cfg.CleanupInterval); err != nil {
		return nil, err
	}
	if cfg.ModelTagRetryDelay, err = getEnvSeconds("MODEL_TAG_RETRY_DELAY_SECS", cfg.ModelTagRetryDelay); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return n, nil
}

func getEnvMinutes(key string, defaultValue time.Duration) (time.Duration, error) {
	n, err := getEnvInt(key, int(defaultValue/time.Minute))
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Minute, nil
}

func getEnvSeconds(key string, defaultValue time.Duration) (time.Duration, error) {
	n, err := getEnvInt(key, int(defaultValue/time.Second))
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
