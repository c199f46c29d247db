package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported note store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	ListenPort      string        // ex: ":5000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store string // "memory" | "redis" | "mongo"

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	RedisIndexGC        time.Duration // how often dangling owner index entries are pruned

	// Mongo
	MongoURI      string        // ex: "mongodb://localhost:27017"
	MongoDatabase string        // database holding the notes collection
	MongoTimeout  time.Duration // connect + initial ping budget

	// Identity
	JWTSecret string        // HS256 shared secret used to verify bearer tokens
	JWTIssuer string        // optional, enforced when set
	TokenTTL  time.Duration // lifetime of tokens minted by the CLI

	FrontendURL string // allowed CORS origin

	DefaultPageSize int
	MaxPageSize     int

	TemplateFile           string        // optional YAML file with note templates, empty = built-ins
	TemplateReloadInterval time.Duration // how often the template file is re-read

	RateBurst  int // token bucket size per client IP
	RatePerMin int // refill rate per client IP

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict /metrics and /reload to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	// A missing .env file is the normal case in containers.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CLOUDNOTES_LISTEN_PORT", ":5000"),
		ShutdownTimeout: mustDuration("CLOUDNOTES_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("CLOUDNOTES_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("CLOUDNOTES_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CLOUDNOTES_PRETTY_LOG", false),

		Store: strings.ToLower(getenv("CLOUDNOTES_STORE", StoreMemory)),

		// Redis settings
		RedisAddr:           getenv("CLOUDNOTES_REDIS_ADDR", ""),
		RedisUser:           getenv("CLOUDNOTES_REDIS_USERNAME", ""),
		RedisPassword:       getenv("CLOUDNOTES_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("CLOUDNOTES_REDIS_DB", 0),
		RedisDT:             mustDuration("CLOUDNOTES_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("CLOUDNOTES_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("CLOUDNOTES_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("CLOUDNOTES_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("CLOUDNOTES_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("CLOUDNOTES_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("CLOUDNOTES_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("CLOUDNOTES_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("CLOUDNOTES_REDIS_WARN_THRESHOLD", 3),
		RedisIndexGC:        mustDuration("CLOUDNOTES_REDIS_INDEX_GC_INTERVAL", 6*time.Hour),

		// Mongo settings
		MongoURI:      getenv("CLOUDNOTES_MONGO_URI", ""),
		MongoDatabase: getenv("CLOUDNOTES_MONGO_DATABASE", "cloudnotes"),
		MongoTimeout:  mustDuration("CLOUDNOTES_MONGO_TIMEOUT", 10*time.Second),

		// Identity
		JWTSecret: requireEnv("CLOUDNOTES_JWT_SECRET"),
		JWTIssuer: getenv("CLOUDNOTES_JWT_ISSUER", ""),
		TokenTTL:  mustDuration("CLOUDNOTES_TOKEN_TTL", 7*24*time.Hour),

		FrontendURL: getenv("CLOUDNOTES_FRONTEND_URL", "http://localhost:5173"),

		DefaultPageSize: getenvInt("CLOUDNOTES_DEFAULT_PAGE_SIZE", 50),
		MaxPageSize:     getenvInt("CLOUDNOTES_MAX_PAGE_SIZE", 100),

		TemplateFile:           getenv("CLOUDNOTES_TEMPLATE_FILE", ""),
		TemplateReloadInterval: mustDuration("CLOUDNOTES_TEMPLATE_RELOAD_INTERVAL", time.Hour),

		RateBurst:  getenvInt("CLOUDNOTES_RATE_BURST", 60),
		RatePerMin: getenvInt("CLOUDNOTES_RATE_PER_MIN", 120),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("CLOUDNOTES_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("CLOUDNOTES_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("CLOUDNOTES_TRUST_PROXY", false),
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreRedis:
		cfg.RedisAddr = requireEnv("CLOUDNOTES_REDIS_ADDR")
	case StoreMongo:
		cfg.MongoURI = requireEnv("CLOUDNOTES_MONGO_URI")
	default:
		panic(fmt.Sprintf("❌ FATAL: unsupported CLOUDNOTES_STORE %q (want memory, redis or mongo)", cfg.Store))
	}

	if cfg.DefaultPageSize < 1 || cfg.MaxPageSize < cfg.DefaultPageSize {
		panic(fmt.Sprintf("❌ FATAL: invalid page sizes: default=%d max=%d", cfg.DefaultPageSize, cfg.MaxPageSize))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	cp.JWTSecret = "***REDACTED***"
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.MongoURI != "" {
		cp.MongoURI = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
