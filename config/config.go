package config

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Settings carries the non-connection knobs read from the environment.
type Settings struct {
	HTTPAddr       string
	JWTSecret      string
	JWTTTL         time.Duration
	UploadDir      string
	TrackingURL    string
	MenuCacheTTL   time.Duration
	OrderTopic     string
	KafkaEnabled   bool
	RedisEnabled   bool
	AllowedOrigins []string
}

func Load() Settings {
	return Settings{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:    getEnv("JWT_SECRET", "change-me"),
		JWTTTL:       getDurationEnv("JWT_TTL", 24*time.Hour),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		TrackingURL:  getEnv("TRACKING_BASE_URL", "http://localhost:5173"),
		MenuCacheTTL: getDurationEnv("MENU_CACHE_TTL", 5*time.Minute),
		OrderTopic:   getEnv("KAFKA_ORDER_TOPIC", "order-events"),
		KafkaEnabled: getBoolEnv("KAFKA_ENABLED", false),
		RedisEnabled: getBoolEnv("REDIS_ENABLED", false),
		AllowedOrigins: []string{
			getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		},
	}
}

func MustInitPostgres() *sql.DB {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")

	connStr := "host=" + dbHost + " port=" + dbPort + " user=" + dbUser +
		" password=" + dbPassword + " dbname=" + dbName + " sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(os.Getenv("KAFKA_BROKER")),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
