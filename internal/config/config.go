// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	App         AppConfig
	Cache       CacheConfig
	Amazon      AmazonConfig
	Sheets      SheetsConfig
	Storage     StorageConfig
	SellerCloud SellerCloudConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL string
}

type AppConfig struct {
	OutputDir        string
	InboundTolerance int
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	DefaultTTLSeconds int
}

type AmazonConfig struct {
	Endpoint      string
	MarketplaceID string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	RefreshToken  string
	RestockPath   string
	MaxConcurrent int
}

type SheetsConfig struct {
	CredentialsJSON string
	SpreadsheetID   string
	MappingRange    string
	CartonRange     string
}

type SellerCloudConfig struct {
	Server   string
	Username string
	Password string
	ViewID   int
	PageSize int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
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

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DATABASE_URL", "")
		viper.SetDefault("APP_OUTPUT_DIR", "./data/output")
		viper.SetDefault("APP_INBOUND_TOLERANCE", 0)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DEFAULT_TTL_SECONDS", 60)
		viper.SetDefault("SPAPI_ENDPOINT", "https://sellingpartnerapi-na.amazon.com")
		viper.SetDefault("SPAPI_MARKETPLACE_ID", "ATVPDKIKX0DER")
		viper.SetDefault("SPAPI_TOKEN_URL", "https://api.amazon.com/auth/o2/token")
		viper.SetDefault("SPAPI_MAX_CONCURRENT", 4)
		viper.SetDefault("RESTOCK_REPORT_PATH", "./data/uploads/restock.csv")
		viper.SetDefault("SHEETS_MAPPING_RANGE", "AMZ US!A1:P")
		viper.SetDefault("SHEETS_CARTON_RANGE", "Master Carton!A1:D")
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("SELLERCLOUD_VIEW_ID", 187)
		viper.SetDefault("SELLERCLOUD_PAGE_SIZE", 50)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure output directory exists
		ensureDir(viper.GetString("APP_OUTPUT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				URL: viper.GetString("DATABASE_URL"),
			},
			App: AppConfig{
				OutputDir:        viper.GetString("APP_OUTPUT_DIR"),
				InboundTolerance: viper.GetInt("APP_INBOUND_TOLERANCE"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				DefaultTTLSeconds: viper.GetInt("CACHE_DEFAULT_TTL_SECONDS"),
			},
			Amazon: AmazonConfig{
				Endpoint:      viper.GetString("SPAPI_ENDPOINT"),
				MarketplaceID: viper.GetString("SPAPI_MARKETPLACE_ID"),
				TokenURL:      viper.GetString("SPAPI_TOKEN_URL"),
				ClientID:      viper.GetString("SPAPI_LWA_APP_ID"),
				ClientSecret:  viper.GetString("SPAPI_LWA_CLIENT_SECRET"),
				RefreshToken:  viper.GetString("SPAPI_REFRESH_TOKEN"),
				RestockPath:   viper.GetString("RESTOCK_REPORT_PATH"),
				MaxConcurrent: viper.GetInt("SPAPI_MAX_CONCURRENT"),
			},
			Sheets: SheetsConfig{
				CredentialsJSON: viper.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
				SpreadsheetID:   viper.GetString("SHEETS_SPREADSHEET_ID"),
				MappingRange:    viper.GetString("SHEETS_MAPPING_RANGE"),
				CartonRange:     viper.GetString("SHEETS_CARTON_RANGE"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			SellerCloud: SellerCloudConfig{
				Server:   viper.GetString("SELLERCLOUD_SERVER"),
				Username: viper.GetString("SELLERCLOUD_USERNAME"),
				Password: viper.GetString("SELLERCLOUD_PASSWORD"),
				ViewID:   viper.GetInt("SELLERCLOUD_VIEW_ID"),
				PageSize: viper.GetInt("SELLERCLOUD_PAGE_SIZE"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
