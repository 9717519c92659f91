package configs

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port                string
	MongoURI            string
	DBName              string
	Store               string
	RequestTimeout      time.Duration
	AuditExportInterval time.Duration
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:                getenv("PORT", "3000"),
		MongoURI:            getenv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:              getenv("DB_NAME", "local_library"),
		Store:               getenv("STORE", StoreMongo),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 5*time.Second),
		AuditExportInterval: getDuration("AUDIT_EXPORT_INTERVAL", 30*time.Second),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return d
}
