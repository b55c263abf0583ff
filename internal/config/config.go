// 包 config：进程配置，统一从环境变量读取（.env 由主入口经 godotenv 预先加载）
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr    string
	APIBase string

	LogLevel  string
	LogFormat string

	// 数据集
	DatasetSource  string
	DatasetPath    string
	DatasetFormat  string
	ReloadInterval time.Duration
	AdminToken     string
	AdminAllow     []string
	RealIPHeader   string

	// PostgreSQL
	PG PGConfig

	// Redis 搜索缓存
	RedisEnabled   bool
	RedisAddr      string
	RedisPass      string
	RedisDB        int
	SearchCacheTTL time.Duration
	SearchCacheMax int

	// 限流
	RateLimitEnabled bool
	RateLimitQPS     float64
	RateLimitBurst   int

	// TLS
	TLSEnable   bool
	TLSCertPath string
	TLSKeyPath  string

	StatsEnabled bool
}

// PGConfig：PostgreSQL 连接参数；Host 为空表示未启用
type PGConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DB           string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// Enabled：是否配置了 PostgreSQL
func (p PGConfig) Enabled() bool { return p.Host != "" }

// DSN：拼接 lib/pq 连接串
func (p PGConfig) DSN() string {
	dsn := "postgres://" + p.User
	if p.Password != "" {
		dsn += ":" + p.Password
	}
	return dsn + "@" + p.Host + ":" + p.Port + "/" + p.DB + "?sslmode=" + p.SSLMode
}

func Load() Config {
	cfg := Config{
		Addr:    envOr("ADDR", ":8080"),
		APIBase: strings.TrimRight(envOr("API_BASE", "/v1"), "/"),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "text"),

		DatasetSource:  strings.ToLower(envOr("DATASET_SOURCE", "file")),
		DatasetPath:    envOr("DATASET_PATH", "data/ubigeo_ven.json"),
		DatasetFormat:  strings.ToLower(envOr("DATASET_FORMAT", "auto")),
		ReloadInterval: envDuration("RELOAD_INTERVAL", 0),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		AdminAllow:     envList("ADMIN_ALLOW_CIDRS"),
		RealIPHeader:   os.Getenv("REAL_IP_HEADER"),

		PG: PGConfig{
			Host:         os.Getenv("PG_HOST"),
			Port:         envOr("PG_PORT", "5432"),
			User:         envOr("PG_USER", "postgres"),
			Password:     os.Getenv("PG_PASSWORD"),
			DB:           envOr("PG_DB", "ubigeo"),
			SSLMode:      envOr("PG_SSLMODE", "disable"),
			MaxOpenConns: envInt("PG_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("PG_MAX_IDLE_CONNS", 5),
		},

		RedisEnabled:   envBool("REDIS_ENABLED", false),
		RedisAddr:      envOr("REDIS_HOST", "127.0.0.1") + ":" + envOr("REDIS_PORT", "6379"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        envInt("REDIS_DB", 0),
		SearchCacheTTL: envDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		SearchCacheMax: envInt("SEARCH_CACHE_SIZE", 4096),

		RateLimitEnabled: envBool("RATE_LIMIT_ENABLED", false),
		RateLimitQPS:     envFloat("RATE_LIMIT_QPS", 50),
		RateLimitBurst:   envInt("RATE_LIMIT_BURST", 100),

		TLSEnable:   envBool("TLS_ENABLE", false),
		TLSCertPath: envOr("TLS_CERT_PATH", "certs/server.crt"),
		TLSKeyPath:  envOr("TLS_KEY_PATH", "certs/server.key"),

		StatsEnabled: envBool("STATS_ENABLED", false),
	}

	if cfg.APIBase == "" {
		cfg.APIBase = "/v1"
	}
	if !strings.HasPrefix(cfg.APIBase, "/") {
		cfg.APIBase = "/" + cfg.APIBase
	}
	if cfg.RedisDB < 0 {
		cfg.RedisDB = 0
	}
	if cfg.SearchCacheMax <= 0 {
		cfg.SearchCacheMax = 4096
	}
	if cfg.SearchCacheTTL <= 0 {
		cfg.SearchCacheTTL = 10 * time.Minute
	}
	if cfg.RateLimitQPS <= 0 {
		cfg.RateLimitQPS = 50
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}
	if cfg.PG.MaxOpenConns <= 0 {
		cfg.PG.MaxOpenConns = 10
	}
	if cfg.PG.MaxIdleConns < 0 {
		cfg.PG.MaxIdleConns = 0
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.DatasetSource {
	case "file":
		if c.DatasetPath == "" {
			return fmt.Errorf("DATASET_PATH is required when DATASET_SOURCE=file")
		}
	case "postgres":
		if !c.PG.Enabled() {
			return fmt.Errorf("PG_HOST is required when DATASET_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("DATASET_SOURCE must be file or postgres, got %q", c.DatasetSource)
	}
	switch c.DatasetFormat {
	case "auto", "nested", "json", "yaml", "csv":
	default:
		return fmt.Errorf("DATASET_FORMAT must be one of auto|nested|json|yaml|csv, got %q", c.DatasetFormat)
	}
	if c.ReloadInterval < 0 {
		return fmt.Errorf("RELOAD_INTERVAL must not be negative")
	}
	if c.StatsEnabled && !c.PG.Enabled() {
		return fmt.Errorf("PG_HOST is required when STATS_ENABLED=true")
	}
	if c.TLSEnable && (c.TLSCertPath == "" || c.TLSKeyPath == "") {
		return fmt.Errorf("TLS_CERT_PATH and TLS_KEY_PATH are required when TLS_ENABLE=true")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envList：逗号分隔列表，忽略空项
func envList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
