package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`

	// RoomRadiusKm bounds both the room.created broadcast fan-out and the
	// default radius for the synchronous room discovery query.
	RoomRadiusKm float64 `mapstructure:"room_radius_km" yaml:"room_radius_km"`

	GeoIPEndpoint string `mapstructure:"geoip_endpoint" yaml:"geoip_endpoint"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "nearchat.db",
		JWTSecret:         "dev-secret-change-me",
		JWTIssuer:         "nearchat",
		JWTAudience:       "nearchat-clients",
		RedisAddr:         "localhost:6379",
		RedisDB:           0,
		RoomRadiusKm:      5,
		GeoIPEndpoint:     "http://ip-api.com/json",
	}
}
