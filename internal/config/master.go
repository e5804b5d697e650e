package config

import "os"

type AppConfig struct {
	DebugMode        bool
	PostgresConfig   *PostgresConfig
	RedisConfig      *RedisConfig
	ServerConfig     *ServerConfig
	SubmissionConfig *SubmissionConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:        os.Getenv("DEBUG_MODE") == "true",
		PostgresConfig:   NewPostgresConfig(),
		RedisConfig:      NewRedisConfig(),
		ServerConfig:     NewServerConfig(),
		SubmissionConfig: NewSubmissionConfig(),
	}
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
