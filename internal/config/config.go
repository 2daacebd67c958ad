// Package config loads service settings from configs/config.yml, environment
// variables prefixed with ANALYTICS_ and built-in defaults, in that order of
// increasing precedence for env over file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"sensor_analytics/internal/models"

	"github.com/spf13/viper"
)

const envPrefix = "ANALYTICS"

type Config struct {
	Port      string          `mapstructure:"port"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis"`
	CORS      CORSConfig      `mapstructure:"cors"`

	// TrustedProxies may set X-Forwarded-For; empty means the peer address is the client.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type AnalyticsConfig struct {
	Capacity   int               `mapstructure:"capacity"`
	Thresholds models.Thresholds `mapstructure:"thresholds"`
}

type SimulatorConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Tick     time.Duration `mapstructure:"tick"`
	SensorID string        `mapstructure:"sensor_id"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// RedisConfig enables rate limiting of the write endpoints when Addr is set.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	RateLimit int           `mapstructure:"rate_limit"`
	Window    time.Duration `mapstructure:"window"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	th := models.DefaultThresholds()

	v.SetDefault("port", "5000")
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.enabled", true)
	v.SetDefault("db.path", "analytics.db")
	v.SetDefault("analytics.capacity", 100)
	v.SetDefault("analytics.thresholds.temp_high", th.TempHigh)
	v.SetDefault("analytics.thresholds.temp_low", th.TempLow)
	v.SetDefault("analytics.thresholds.humidity_high", th.HumidityHigh)
	v.SetDefault("analytics.thresholds.humidity_low", th.HumidityLow)
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.tick", time.Second)
	v.SetDefault("simulator.sensor_id", "SENSOR-1")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "sensor-readings")
	v.SetDefault("kafka.group_id", "analytics-service")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.rate_limit", 120)
	v.SetDefault("redis.window", time.Minute)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads config.yml from the given directories (default "configs").
// A missing file is not an error: defaults and environment apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("trusted_proxies: %q is neither an IP nor a CIDR", p)
			}
		}
	}
	if c.Analytics.Capacity <= 0 {
		return fmt.Errorf("analytics.capacity must be positive, got %d", c.Analytics.Capacity)
	}
	if c.Simulator.Enabled && c.Simulator.Tick <= 0 {
		return fmt.Errorf("simulator.tick must be positive, got %s", c.Simulator.Tick)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	if c.Redis.Addr != "" && (c.Redis.RateLimit <= 0 || c.Redis.Window <= 0) {
		return errors.New("redis.rate_limit and redis.window must be positive when redis.addr is set")
	}
	return nil
}
