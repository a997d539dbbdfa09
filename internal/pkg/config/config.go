package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Directions DirectionsConfig `mapstructure:"directions"`
	Cinematic  CinematicConfig  `mapstructure:"cinematic"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr          string `mapstructure:"addr"`
	RouteCacheTTL int    `mapstructure:"route_cache_ttl"`
}

type DirectionsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Profile string `mapstructure:"profile"`
	Timeout int    `mapstructure:"timeout"`
}

// CinematicConfig carries the engine's tuned constants. Hold duration
// and the reveal bearing factor are deliberate visual tuning; they are
// configuration, not derived values.
type CinematicConfig struct {
	FrameIntervalMs     int     `mapstructure:"frame_interval_ms"`
	DrawDurationMs      int     `mapstructure:"draw_duration_ms"`
	ApproachZoom        float64 `mapstructure:"approach_zoom"`
	ApproachPitch       float64 `mapstructure:"approach_pitch"`
	ApproachDurationMs  int     `mapstructure:"approach_duration_ms"`
	HoldDurationMs      int     `mapstructure:"hold_duration_ms"`
	RevealPitch         float64 `mapstructure:"reveal_pitch"`
	RevealBearingFactor float64 `mapstructure:"reveal_bearing_factor"`
	RevealDurationMs    int     `mapstructure:"reveal_duration_ms"`
	TiltedPitch         float64 `mapstructure:"tilted_pitch"`
	TiltedBearing       float64 `mapstructure:"tilted_bearing"`
	ToggleDurationMs    int     `mapstructure:"toggle_duration_ms"`
	FitPadding          float64 `mapstructure:"fit_padding"`
	IntroDurationMs     int     `mapstructure:"intro_duration_ms"`
	IntroZoom           float64 `mapstructure:"intro_zoom"`
}

func (c CinematicConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "flyover")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "flyover")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.route_cache_ttl", 86400)
	v.SetDefault("directions.base_url", "https://api.mapbox.com")
	v.SetDefault("directions.token", "")
	v.SetDefault("directions.profile", "driving")
	v.SetDefault("directions.timeout", 30)
	v.SetDefault("cinematic.frame_interval_ms", 16)
	v.SetDefault("cinematic.draw_duration_ms", 2000)
	v.SetDefault("cinematic.approach_zoom", 15.5)
	v.SetDefault("cinematic.approach_pitch", 60)
	v.SetDefault("cinematic.approach_duration_ms", 3000)
	v.SetDefault("cinematic.hold_duration_ms", 1200)
	v.SetDefault("cinematic.reveal_pitch", 45)
	v.SetDefault("cinematic.reveal_bearing_factor", 0.3)
	v.SetDefault("cinematic.reveal_duration_ms", 2500)
	v.SetDefault("cinematic.tilted_pitch", 70)
	v.SetDefault("cinematic.tilted_bearing", -20)
	v.SetDefault("cinematic.toggle_duration_ms", 800)
	v.SetDefault("cinematic.fit_padding", 80)
	v.SetDefault("cinematic.intro_duration_ms", 4000)
	v.SetDefault("cinematic.intro_zoom", 16)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: FLYOVER_DIRECTIONS_TOKEN → directions.token
	v.SetEnvPrefix("FLYOVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Directions.BaseURL == "" {
		errs = append(errs, "directions.base_url is required")
	}
	if c.Cinematic.FrameIntervalMs <= 0 {
		errs = append(errs, "cinematic.frame_interval_ms must be positive")
	}
	if c.Cinematic.DrawDurationMs <= 0 {
		errs = append(errs, "cinematic.draw_duration_ms must be positive")
	}
	if c.Cinematic.RevealBearingFactor < 0 || c.Cinematic.RevealBearingFactor > 1 {
		errs = append(errs, "cinematic.reveal_bearing_factor must be in [0, 1]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
