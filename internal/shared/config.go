package shared

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"listing_seeder/internal/domain"
)

type Config struct {
	AppEnv     string
	LogLevel   string
	Backend    string // appwrite | mongo
	StatusAddr string

	AppwriteEndpoint string
	AppwriteProject  string
	AppwriteKey      string
	AppwriteRPS      int

	MongoURI string
	MongoRPS int

	DatabaseID  string
	Collections domain.Collections

	AgentCount    int
	ReviewCount   int
	PropertyCount int
	Delay         time.Duration
	PropertyDelay time.Duration
	RandomSeed    *uint64

	RedisAddr      string
	RedisPass      string
	RedisDB        int
	LockTTL        time.Duration
	MySQLDSN       string
	PushgatewayURL string

	// Warnings collects problems Load tolerated; log them once the logger is set up.
	Warnings []string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:           env("APP_ENV", "prod"),
		LogLevel:         env("LOG_LEVEL", "info"),
		Backend:          strings.ToLower(env("DOCSTORE_BACKEND", "appwrite")),
		StatusAddr:       env("STATUS_ADDR", ""),
		AppwriteEndpoint: strings.TrimRight(env("APPWRITE_ENDPOINT", "https://cloud.appwrite.io/v1"), "/"),
		AppwriteProject:  env("APPWRITE_PROJECT_ID", ""),
		AppwriteKey:      env("APPWRITE_API_KEY", ""),
		AppwriteRPS:      atoi("APPWRITE_RPS", 10),
		MongoURI:         env("MONGO_URI", "mongodb://localhost:27017"),
		MongoRPS:         atoi("MONGO_RPS", 50),
		DatabaseID:       env("DATABASE_ID", ""),
		Collections: domain.Collections{
			Agents:     env("AGENTS_COLLECTION_ID", ""),
			Reviews:    env("REVIEWS_COLLECTION_ID", ""),
			Galleries:  env("GALLERIES_COLLECTION_ID", ""),
			Properties: env("PROPERTIES_COLLECTION_ID", ""),
		},
		AgentCount:     atoi("SEED_AGENT_COUNT", 5),
		ReviewCount:    atoi("SEED_REVIEW_COUNT", 20),
		PropertyCount:  atoi("SEED_PROPERTY_COUNT", 20),
		Delay:          time.Duration(atoi("SEED_DELAY_MS", 200)) * time.Millisecond,
		PropertyDelay:  time.Duration(atoi("SEED_PROPERTY_DELAY_MS", 300)) * time.Millisecond,
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		LockTTL:        time.Duration(atoi("LOCK_TTL_SECONDS", 900)) * time.Second,
		MySQLDSN:       env("MYSQL_DSN", ""),
		PushgatewayURL: env("PUSHGATEWAY_URL", ""),
	}
	if v := os.Getenv("SEED_RANDOM"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.RandomSeed = &n
		} else {
			c.Warnings = append(c.Warnings, fmt.Sprintf("SEED_RANDOM=%q is not an unsigned integer; ignoring", v))
		}
	}
	if c.Backend == "appwrite" && c.AppwriteKey == "" {
		c.Warnings = append(c.Warnings, "APPWRITE_API_KEY is empty")
	}
	return c
}

// Missing lists the required identifiers that are unset.
func (c Config) Missing() []string {
	var out []string
	for k, v := range map[string]string{
		"DATABASE_ID":              c.DatabaseID,
		"AGENTS_COLLECTION_ID":     c.Collections.Agents,
		"REVIEWS_COLLECTION_ID":    c.Collections.Reviews,
		"GALLERIES_COLLECTION_ID":  c.Collections.Galleries,
		"PROPERTIES_COLLECTION_ID": c.Collections.Properties,
	} {
		if strings.TrimSpace(v) == "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
