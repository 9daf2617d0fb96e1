package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Booking     BookingConfig
	Reservation ReservationConfig
	Payment     PaymentConfig
	Fee         FeeConfig
	Storage     StorageConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type BookingConfig struct {
	OfficeSlotCapacity int
	MaxReschedules     int
	Holidays           []string // Format: YYYY-MM-DD
	OfficeLatitude     float64
	OfficeLongitude    float64
}

type ReservationConfig struct {
	HoldTTL       time.Duration
	SweepInterval time.Duration
}

type PaymentConfig struct {
	ReceiptPrefix        string
	MaxBlueprintVersions int
}

type FeeConfig struct {
	BaseFee          decimal.Decimal
	PerKmFee         decimal.Decimal
	AverageSpeedKmh  float64
	CacheTTL         time.Duration
	ComputeTimeout   time.Duration
	CoordinatePlaces int32
}

type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_LOG_LEVEL", "info")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("BOOKING_OFFICE_SLOT_CAPACITY", 3)
	viper.SetDefault("BOOKING_MAX_RESCHEDULES", 2)
	viper.SetDefault("RESERVATION_HOLD_TTL", "5m")
	viper.SetDefault("RESERVATION_SWEEP_INTERVAL", "1m")
	viper.SetDefault("PAYMENT_RECEIPT_PREFIX", "RCP")
	viper.SetDefault("PAYMENT_MAX_BLUEPRINT_VERSIONS", 3)
	viper.SetDefault("FEE_BASE", "500")
	viper.SetDefault("FEE_PER_KM", "25")
	viper.SetDefault("FEE_AVERAGE_SPEED_KMH", 30)
	viper.SetDefault("FEE_CACHE_TTL", "24h")
	viper.SetDefault("FEE_COMPUTE_TIMEOUT", "3s")
	viper.SetDefault("FEE_COORDINATE_PLACES", 4)
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_PRESIGN_EXPIRY", "15m")
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Environment variables alone are enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	baseFee, err := decimal.NewFromString(viper.GetString("FEE_BASE"))
	if err != nil {
		return nil, err
	}
	perKmFee, err := decimal.NewFromString(viper.GetString("FEE_PER_KM"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("APP_LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			Name:        viper.GetString("DB_NAME"),
			SSLMode:     viper.GetString("DB_SSLMODE"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Booking: BookingConfig{
			OfficeSlotCapacity: viper.GetInt("BOOKING_OFFICE_SLOT_CAPACITY"),
			MaxReschedules:     viper.GetInt("BOOKING_MAX_RESCHEDULES"),
			Holidays:           splitList(viper.GetString("BOOKING_HOLIDAYS")),
			OfficeLatitude:     viper.GetFloat64("BOOKING_OFFICE_LATITUDE"),
			OfficeLongitude:    viper.GetFloat64("BOOKING_OFFICE_LONGITUDE"),
		},
		Reservation: ReservationConfig{
			HoldTTL:       viper.GetDuration("RESERVATION_HOLD_TTL"),
			SweepInterval: viper.GetDuration("RESERVATION_SWEEP_INTERVAL"),
		},
		Payment: PaymentConfig{
			ReceiptPrefix:        viper.GetString("PAYMENT_RECEIPT_PREFIX"),
			MaxBlueprintVersions: viper.GetInt("PAYMENT_MAX_BLUEPRINT_VERSIONS"),
		},
		Fee: FeeConfig{
			BaseFee:          baseFee,
			PerKmFee:         perKmFee,
			AverageSpeedKmh:  viper.GetFloat64("FEE_AVERAGE_SPEED_KMH"),
			CacheTTL:         viper.GetDuration("FEE_CACHE_TTL"),
			ComputeTimeout:   viper.GetDuration("FEE_COMPUTE_TIMEOUT"),
			CoordinatePlaces: viper.GetInt32("FEE_COORDINATE_PLACES"),
		},
		Storage: StorageConfig{
			Endpoint:        viper.GetString("STORAGE_ENDPOINT"),
			Region:          viper.GetString("STORAGE_REGION"),
			Bucket:          viper.GetString("STORAGE_BUCKET"),
			AccessKeyID:     viper.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("STORAGE_SECRET_ACCESS_KEY"),
			UsePathStyle:    viper.GetBool("STORAGE_USE_PATH_STYLE"),
			PresignExpiry:   viper.GetDuration("STORAGE_PRESIGN_EXPIRY"),
		},
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
