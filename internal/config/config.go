package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds all configuration values from environment.
type Config struct {
	AppPort        string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSSL       bool

	// Scene manifest settings
	SceneManifestPath string // Path to the static JSON scene catalog (optional)
	SceneTitlesPath   string // Path to the legacy free-text title catalog (optional)

	// File cache settings
	CacheTTL        time.Duration // Entry lifetime before lazy purge (default: 4h)
	CacheMaxItems   int           // Item cap before oldest-entry eviction (default: 2000)
	CacheMaxPayload int64         // Largest payload kept in memory in bytes (default: 2MB)
	RequestTimeout  time.Duration // Hard deadline for a file request (default: 30s)
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	minioSSL := false
	if sslEnv := os.Getenv("MINIO_SSL"); sslEnv != "" {
		val, err := strconv.ParseBool(sslEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid MINIO_SSL value: %v", err)
		}
		minioSSL = val
	}
	cacheTTL := 4 * time.Hour
	if ttlEnv := os.Getenv("CACHE_TTL_SECONDS"); ttlEnv != "" {
		val, err := strconv.Atoi(ttlEnv)
		if err == nil && val > 0 {
			cacheTTL = time.Duration(val) * time.Second
		}
	}
	cacheMaxItems := 2000
	if capEnv := os.Getenv("CACHE_MAX_ITEMS"); capEnv != "" {
		val, err := strconv.Atoi(capEnv)
		if err == nil && val > 0 {
			cacheMaxItems = val
		}
	}
	cacheMaxPayload := int64(2 * 1024 * 1024)
	if sizeEnv := os.Getenv("CACHE_MAX_PAYLOAD_BYTES"); sizeEnv != "" {
		val, err := strconv.ParseInt(sizeEnv, 10, 64)
		if err == nil && val > 0 {
			cacheMaxPayload = val
		}
	}
	requestTimeout := 30 * time.Second
	if toEnv := os.Getenv("REQUEST_TIMEOUT_SECONDS"); toEnv != "" {
		val, err := strconv.Atoi(toEnv)
		if err == nil && val > 0 {
			requestTimeout = time.Duration(val) * time.Second
		}
	}
	cfg := &Config{
		AppPort:        os.Getenv("PANORAMA_PORT"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         os.Getenv("DB_PORT"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    os.Getenv("MINIO_BUCKET"),
		MinioSSL:       minioSSL,

		SceneManifestPath: os.Getenv("SCENE_MANIFEST_PATH"),
		SceneTitlesPath:   os.Getenv("SCENE_TITLES_PATH"),

		CacheTTL:        cacheTTL,
		CacheMaxItems:   cacheMaxItems,
		CacheMaxPayload: cacheMaxPayload,
		RequestTimeout:  requestTimeout,
	}
	// Basic validation for required fields
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("database configuration is incomplete")
	}
	if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
		return nil, fmt.Errorf("minio configuration is incomplete")
	}
	return cfg, nil
}

// ConnectDatabase initializes a GORM database connection to PostgreSQL.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
