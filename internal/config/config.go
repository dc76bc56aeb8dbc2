package config

import (
	"time"

	"github.com/spf13/viper"
)

// Sync holds the configuration of the internal channel between the two
// services. The shared secret authenticates both directions.
type Sync struct {
	SharedSecret string
	StoreBaseURL string
	UserBaseURL  string
}

// Seed controls the store bootstrap seeder.
type Seed struct {
	Enabled     bool
	Reset       bool
	BrandsCSV   string
	ProductsCSV string
	PhotosRoot  string
	UserWait    time.Duration
	UserPoll    time.Duration
}

// Identity is the configuration of the user-management service.
type Identity struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins string
	Sync        Sync
}

// Store is the configuration of the electronics-store service.
type Store struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins string
	RabbitMQURL string
	Sync        Sync
	Seed        Seed
}

func setSharedDefaults() {
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000, http://localhost:5173")
	viper.SetDefault("SYNC_SHARED_SECRET", "moldo")
	viper.SetDefault("SYNC_STORE_BASE_URL", "http://localhost:8081")
	viper.SetDefault("SYNC_USER_BASE_URL", "http://localhost:8080")
	viper.AutomaticEnv()
}

func loadSync() Sync {
	return Sync{
		SharedSecret: viper.GetString("SYNC_SHARED_SECRET"),
		StoreBaseURL: viper.GetString("SYNC_STORE_BASE_URL"),
		UserBaseURL:  viper.GetString("SYNC_USER_BASE_URL"),
	}
}

// LoadIdentity reads the identity-service configuration from the environment.
func LoadIdentity() Identity {
	setSharedDefaults()
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=user_management port=5432 sslmode=disable")

	return Identity{
		Port:        viper.GetString("APP_PORT"),
		DatabaseURL: viper.GetString("DATABASE_URL"),
		JWTSecret:   viper.GetString("JWT_SECRET"),
		CORSOrigins: viper.GetString("CORS_ORIGINS"),
		Sync:        loadSync(),
	}
}

// LoadStore reads the store-service configuration from the environment.
func LoadStore() Store {
	setSharedDefaults()
	viper.SetDefault("APP_PORT", ":8081")
	viper.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=electronics_store port=5432 sslmode=disable")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("SEED_ENABLED", true)
	viper.SetDefault("SEED_RESET", true)
	viper.SetDefault("SEED_BRANDS_CSV", "seed/brands.csv")
	viper.SetDefault("SEED_PRODUCTS_CSV", "seed/products.csv")
	viper.SetDefault("SEED_PHOTOS_ROOT", "seed/products")
	viper.SetDefault("SEED_USER_SYNC_TIMEOUT", "30s")
	viper.SetDefault("SEED_USER_SYNC_POLL", "1s")

	return Store{
		Port:        viper.GetString("APP_PORT"),
		DatabaseURL: viper.GetString("DATABASE_URL"),
		JWTSecret:   viper.GetString("JWT_SECRET"),
		CORSOrigins: viper.GetString("CORS_ORIGINS"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
		Sync:        loadSync(),
		Seed: Seed{
			Enabled:     viper.GetBool("SEED_ENABLED"),
			Reset:       viper.GetBool("SEED_RESET"),
			BrandsCSV:   viper.GetString("SEED_BRANDS_CSV"),
			ProductsCSV: viper.GetString("SEED_PRODUCTS_CSV"),
			PhotosRoot:  viper.GetString("SEED_PHOTOS_ROOT"),
			UserWait:    viper.GetDuration("SEED_USER_SYNC_TIMEOUT"),
			UserPoll:    viper.GetDuration("SEED_USER_SYNC_POLL"),
		},
	}
}
