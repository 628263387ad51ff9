// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Engine   EngineConfig
	Pipeline PipelineConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadMB    int
}

type DatabaseConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq keyword connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// ConnURL returns the URL form used by the pgx driver, building it from the
// individual fields when DATABASE_URL is not set.
func (d DatabaseConfig) ConnURL() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
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
	SessionTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

// EngineConfig holds the defaults applied to a session before the user posts
// its own calculation configuration.
type EngineConfig struct {
	ForecastingPeriod       string
	ReorderQuantityApproach string
	VolumeUnits             string
	Currency                string
	OtherMeasure            string
	InputTimeUnit           string
	ResultPreviewLimit      int
	UploadPreviewLimit      int
}

// CalculationDefaults is the calculation configuration a new session starts with.
func (e EngineConfig) CalculationDefaults() domain.CalculationConfig {
	cfg := domain.DefaultCalculationConfig()
	if e.ForecastingPeriod != "" {
		cfg.ForecastingPeriod = domain.ForecastingPeriod(e.ForecastingPeriod)
	}
	if e.ReorderQuantityApproach != "" {
		cfg.ReorderQuantityApproach = domain.ReorderQuantityApproach(e.ReorderQuantityApproach)
	}
	if e.VolumeUnits != "" {
		cfg.VolumeUnits = e.VolumeUnits
	}
	if e.Currency != "" {
		cfg.Currency = e.Currency
	}
	if e.OtherMeasure != "" {
		cfg.OtherMeasure = e.OtherMeasure
	}
	if e.InputTimeUnit != "" {
		cfg.InputTimeUnit = e.InputTimeUnit
	}
	return cfg
}

type PipelineConfig struct {
	WorkerCount     int
	BatchSize       int
	OutputDir       string
	InputDateFormat string
}

type LogConfig struct {
	Level  string
	Format string
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

		// Ensure upload and data directories exist
		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_DATA_DIR"))

		instance = build()
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("SERVER_MAX_UPLOAD_MB", 32)
	viper.SetDefault("DB_ENABLED", false)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "inventory_optimizer")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
	viper.SetDefault("APP_DATA_DIR", "./data/output")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_SESSION_TTL_SECONDS", 86400)
	viper.SetDefault("STORAGE_ENABLED", false)
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_BUCKET", "inventory-optimizer")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	viper.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
	viper.SetDefault("ENGINE_FORECASTING_PERIOD", "monthly")
	viper.SetDefault("ENGINE_REORDER_QUANTITY_APPROACH", "EOQ")
	viper.SetDefault("ENGINE_VOLUME_UNITS", "unit")
	viper.SetDefault("ENGINE_CURRENCY", "EUR")
	viper.SetDefault("ENGINE_OTHER_MEASURE", "kg")
	viper.SetDefault("ENGINE_INPUT_TIME_UNIT", "day")
	viper.SetDefault("ENGINE_RESULT_PREVIEW_LIMIT", 100)
	viper.SetDefault("ENGINE_UPLOAD_PREVIEW_LIMIT", 5)
	viper.SetDefault("PIPELINE_WORKER_COUNT", 4)
	viper.SetDefault("PIPELINE_BATCH_SIZE", 5)
	viper.SetDefault("PIPELINE_OUTPUT_DIR", "./data/results")
	viper.SetDefault("PIPELINE_INPUT_DATE_FORMAT", "20060102")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("LOG_FORMAT", "console")
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			MaxUploadMB:    viper.GetInt("SERVER_MAX_UPLOAD_MB"),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			URL:      viper.GetString("DATABASE_URL"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
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
			SessionTTLSeconds: viper.GetInt("CACHE_SESSION_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   viper.GetBool("STORAGE_ENABLED"),
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        viper.GetString("GOOGLE_DRIVE_FOLDER_ID"),
		},
		Engine: EngineConfig{
			ForecastingPeriod:       viper.GetString("ENGINE_FORECASTING_PERIOD"),
			ReorderQuantityApproach: viper.GetString("ENGINE_REORDER_QUANTITY_APPROACH"),
			VolumeUnits:             viper.GetString("ENGINE_VOLUME_UNITS"),
			Currency:                viper.GetString("ENGINE_CURRENCY"),
			OtherMeasure:            viper.GetString("ENGINE_OTHER_MEASURE"),
			InputTimeUnit:           viper.GetString("ENGINE_INPUT_TIME_UNIT"),
			ResultPreviewLimit:      viper.GetInt("ENGINE_RESULT_PREVIEW_LIMIT"),
			UploadPreviewLimit:      viper.GetInt("ENGINE_UPLOAD_PREVIEW_LIMIT"),
		},
		Pipeline: PipelineConfig{
			WorkerCount:     viper.GetInt("PIPELINE_WORKER_COUNT"),
			BatchSize:       viper.GetInt("PIPELINE_BATCH_SIZE"),
			OutputDir:       viper.GetString("PIPELINE_OUTPUT_DIR"),
			InputDateFormat: viper.GetString("PIPELINE_INPUT_DATE_FORMAT"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
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
