package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Room struct {
	CodeLength        int
	PinLength         int
	GracePeriod       time.Duration
	InactivityTimeout time.Duration
	SweepInterval     time.Duration
	Retention         time.Duration
}

type Queue struct {
	PriorityRatio float64
	BlockSize     int
	DefaultLimit  int
	MaxLimit      int
}

type Catalog struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
	MaxRequests      uint32
}

type WS struct {
	MessagesPerSecond float64
	Burst             int
}

type NATS struct {
	URL           string
	SubjectPrefix string
}

type Log struct {
	Level string
}

type Config struct {
	HTTP     HTTPServer
	Redis    RedisCache
	Postgres Postgres
	Room     Room
	Queue    Queue
	Catalog  Catalog
	WS       WS
	NATS     NATS
	Log      Log
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := FromEnv()
	log.Printf("%s backend config : %+v\n", logtag, cfg)
	return cfg
}

// FromEnv resolves every section from the current environment.
func FromEnv() *Config {
	return &Config{
		HTTP:     *newHTTP(),
		Redis:    *newRedis(),
		Postgres: *newPostgres(),
		Room:     *newRoom(),
		Queue:    *newQueue(),
		Catalog:  *newCatalog(),
		WS:       *newWS(),
		NATS:     *newNATS(),
		Log:      Log{Level: getenv("LOG_LEVEL", "info")},
	}
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", "redis"),
		Password: getenv("REDIS_PASSWORD", "shared"),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenv("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "test"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func newRoom() *Room {
	return &Room{
		CodeLength:        getenvInt("ROOM_CODE_LENGTH", 6),
		PinLength:         getenvInt("ROOM_PIN_LENGTH", 4),
		GracePeriod:       getenvDuration("ROOM_GRACE_PERIOD", 30*time.Second),
		InactivityTimeout: getenvDuration("ROOM_INACTIVITY_TIMEOUT", 10*time.Minute),
		SweepInterval:     getenvDuration("ROOM_SWEEP_INTERVAL", 5*time.Second),
		Retention:         getenvDuration("ROOM_RETENTION", time.Minute),
	}
}

func newQueue() *Queue {
	return &Queue{
		PriorityRatio: getenvFloat("QUEUE_PRIORITY_RATIO", 0.5),
		BlockSize:     getenvInt("QUEUE_BLOCK_SIZE", 40),
		DefaultLimit:  getenvInt("QUEUE_DEFAULT_LIMIT", 20),
		MaxLimit:      getenvInt("QUEUE_MAX_LIMIT", 100),
	}
}

func newCatalog() *Catalog {
	return &Catalog{
		FailureThreshold: uint32(getenvInt("CATALOG_FAILURE_THRESHOLD", 5)),
		OpenTimeout:      getenvDuration("CATALOG_OPEN_TIMEOUT", 30*time.Second),
		MaxRequests:      uint32(getenvInt("CATALOG_HALF_OPEN_REQUESTS", 1)),
	}
}

func newWS() *WS {
	return &WS{
		MessagesPerSecond: getenvFloat("WS_MESSAGES_PER_SECOND", 20),
		Burst:             getenvInt("WS_BURST", 40),
	}
}

func newNATS() *NATS {
	return &NATS{
		URL:           getenv("NATS_URL", ""),
		SubjectPrefix: getenv("NATS_SUBJECT_PREFIX", "matchroom"),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}

func getenvInt(key string, defaultValue int) int {
	raw := getenv(key, strconv.Itoa(defaultValue))
	val, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("%s %s is not an int (%s). Using default value %d\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return val
}

func getenvFloat(key string, defaultValue float64) float64 {
	raw := getenv(key, strconv.FormatFloat(defaultValue, 'f', -1, 64))
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Printf("%s %s is not a float (%s). Using default value %v\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return val
}

func getenvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getenv(key, defaultValue.String())
	val, err := time.ParseDuration(raw)
	if err != nil {
		fmt.Printf("%s %s is not a duration (%s). Using default value %s\n", logtag, key, raw, defaultValue)
		return defaultValue
	}
	return val
}
