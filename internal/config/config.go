// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	App         AppConfig
	Cache       CacheConfig
	Reorder     ReorderConfig
	Drive       DriveConfig
	ObjectStore ObjectStoreConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns a lib/pq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns a postgres:// connection URL usable by pgx.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type StorageConfig struct {
	Driver string // memory or postgres
}

type AppConfig struct {
	UploadDir string
	DataDir   string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	ReorderTTLSeconds int
}

type ReorderConfig struct {
	ServiceLevelZ   float64
	ReviewDays      float64
	DefaultLeadTime float64
	WindowDays      int
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
	FolderPath      string
	DownloadDir     string
	SyncInterval    time.Duration
	Workers         int
}

type ObjectStoreConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_DATA_DIR"))

		instance = build()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "stockpilot")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("STORAGE_DRIVER", "memory")
	viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
	viper.SetDefault("APP_DATA_DIR", "./data/output")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_REORDER_TTL_SECONDS", 60)
	viper.SetDefault("REORDER_SERVICE_LEVEL_Z", 1.65)
	viper.SetDefault("REORDER_REVIEW_DAYS", 1.0)
	viper.SetDefault("REORDER_DEFAULT_LEAD_TIME", 4.0)
	viper.SetDefault("REORDER_WINDOW_DAYS", 28)
	viper.SetDefault("DRIVE_CREDENTIALS_JSON", "")
	viper.SetDefault("DRIVE_FOLDER_ID", "")
	viper.SetDefault("DRIVE_FOLDER_PATH", "")
	viper.SetDefault("DRIVE_DOWNLOAD_DIR", "./data/drive")
	viper.SetDefault("DRIVE_SYNC_INTERVAL", "15m")
	viper.SetDefault("DRIVE_WORKERS", 4)
	viper.SetDefault("OBJECT_STORE_ENABLED", false)
	viper.SetDefault("OBJECT_STORE_ENDPOINT", "")
	viper.SetDefault("OBJECT_STORE_ACCESS_KEY", "")
	viper.SetDefault("OBJECT_STORE_SECRET_KEY", "")
	viper.SetDefault("OBJECT_STORE_BUCKET", "stockpilot-exports")
	viper.SetDefault("OBJECT_STORE_REGION", "us-east-1")
	viper.SetDefault("OBJECT_STORE_USE_SSL", true)
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Storage: StorageConfig{
			Driver: viper.GetString("STORAGE_DRIVER"),
		},
		App: AppConfig{
			UploadDir: viper.GetString("APP_UPLOAD_DIR"),
			DataDir:   viper.GetString("APP_DATA_DIR"),
		},
		Cache: CacheConfig{
			Enabled:           viper.GetBool("CACHE_ENABLED"),
			RedisURL:          viper.GetString("REDIS_URL"),
			RedisHost:         viper.GetString("REDIS_HOST"),
			RedisPort:         viper.GetString("REDIS_PORT"),
			RedisPassword:     viper.GetString("REDIS_PASSWORD"),
			RedisDB:           viper.GetInt("REDIS_DB"),
			ReorderTTLSeconds: viper.GetInt("CACHE_REORDER_TTL_SECONDS"),
		},
		Reorder: ReorderConfig{
			ServiceLevelZ:   viper.GetFloat64("REORDER_SERVICE_LEVEL_Z"),
			ReviewDays:      viper.GetFloat64("REORDER_REVIEW_DAYS"),
			DefaultLeadTime: viper.GetFloat64("REORDER_DEFAULT_LEAD_TIME"),
			WindowDays:      viper.GetInt("REORDER_WINDOW_DAYS"),
		},
		Drive: DriveConfig{
			CredentialsJSON: viper.GetString("DRIVE_CREDENTIALS_JSON"),
			FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
			FolderPath:      viper.GetString("DRIVE_FOLDER_PATH"),
			DownloadDir:     viper.GetString("DRIVE_DOWNLOAD_DIR"),
			SyncInterval:    viper.GetDuration("DRIVE_SYNC_INTERVAL"),
			Workers:         viper.GetInt("DRIVE_WORKERS"),
		},
		ObjectStore: ObjectStoreConfig{
			Enabled:   viper.GetBool("OBJECT_STORE_ENABLED"),
			Endpoint:  viper.GetString("OBJECT_STORE_ENDPOINT"),
			AccessKey: viper.GetString("OBJECT_STORE_ACCESS_KEY"),
			SecretKey: viper.GetString("OBJECT_STORE_SECRET_KEY"),
			Bucket:    viper.GetString("OBJECT_STORE_BUCKET"),
			Region:    viper.GetString("OBJECT_STORE_REGION"),
			UseSSL:    viper.GetBool("OBJECT_STORE_USE_SSL"),
		},
	}
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
