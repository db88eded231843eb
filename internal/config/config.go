package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/weiawesome/birdup/pkg/config"
	"github.com/weiawesome/birdup/pkg/database"
	"github.com/weiawesome/birdup/pkg/pubsub"
	"github.com/weiawesome/birdup/pkg/storage"
)

// Posting policies for writing into a group.
const (
	GroupPolicyRestricted = "restricted" // creator or follower
	GroupPolicyPermissive = "permissive" // any authenticated user
)

type Config struct {
	Server     ServerConfig
	Database   database.Config
	Redis      RedisConfig
	PubSub     pubsub.Config `mapstructure:"pubsub"`
	Storage    storage.Config
	Auth       AuthConfig
	Feed       FeedConfig
	Posting    PostingConfig
	Cache      CacheConfig
	Reconciler ReconcilerConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// RedisConfig configures the cache. An empty address runs without Redis.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	CookieName      string        `mapstructure:"cookie_name"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	LoginPath       string        `mapstructure:"login_path"`
}

type FeedConfig struct {
	PageSize                   int  `mapstructure:"page_size"`
	ProfileFeedIncludesGrouped bool `mapstructure:"profile_feed_includes_grouped"`
}

type PostingConfig struct {
	GroupPolicy string `mapstructure:"group_policy"`
}

type CacheConfig struct {
	HomeFeedTTL time.Duration `mapstructure:"home_feed_ttl"`
}

type ReconcilerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	TopN     int           `mapstructure:"top_n"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load(pkgconfig.GetEnv("CONFIG_PATH", "./config"), "config")
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "birdup")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.file_path", "./data/birdup.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("pubsub.driver", "memory")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.group_id", "birdup")
	v.SetDefault("pubsub.kafka.partitions", 4)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.base_path", "./media")
	v.SetDefault("storage.local.url_prefix", "/media")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("auth.issuer", "birdup")
	v.SetDefault("auth.access_token_ttl", "24h")
	v.SetDefault("auth.refresh_token_ttl", "168h")
	v.SetDefault("auth.cookie_name", "birdup_session")
	v.SetDefault("auth.login_path", "/auth/login/")
	v.SetDefault("feed.page_size", 10)
	v.SetDefault("feed.profile_feed_includes_grouped", true)
	v.SetDefault("posting.group_policy", GroupPolicyRestricted)
	v.SetDefault("cache.home_feed_ttl", "0s")
	v.SetDefault("reconciler.interval", "60s")
	v.SetDefault("reconciler.top_n", 100)
	v.SetDefault("log.level", "info")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.ssl_mode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "PUBSUB_REDIS_ADDRESS")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("pubsub.kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.local.base_path", "STORAGE_LOCAL_BASE_PATH")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("storage.s3.public_url", "S3_PUBLIC_URL")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("feed.page_size", "FEED_PAGE_SIZE")
	v.BindEnv("feed.profile_feed_includes_grouped", "PROFILE_FEED_INCLUDES_GROUPED")
	v.BindEnv("posting.group_policy", "GROUP_POSTING_POLICY")
	v.BindEnv("cache.home_feed_ttl", "HOME_FEED_CACHE_TTL")
	v.BindEnv("reconciler.interval", "RECONCILER_INTERVAL")
	v.BindEnv("reconciler.top_n", "RECONCILER_TOP_N")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (JWT_SECRET) must be set")
	}
	if c.Feed.PageSize <= 0 {
		return fmt.Errorf("feed.page_size must be positive, got %d", c.Feed.PageSize)
	}
	switch c.Posting.GroupPolicy {
	case GroupPolicyRestricted, GroupPolicyPermissive:
	default:
		return fmt.Errorf("posting.group_policy must be %q or %q, got %q",
			GroupPolicyRestricted, GroupPolicyPermissive, c.Posting.GroupPolicy)
	}
	return nil
}
