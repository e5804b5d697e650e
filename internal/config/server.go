package config

import "strconv"

type ServerConfig struct {
	Port int
	// AuthToken is the shared secret that mutating endpoints compare the
	// Authorization header against
	AuthToken string
}

func NewServerConfig() *ServerConfig {
	port, err := strconv.Atoi(getEnv("PORT", "3000"))
	if err != nil {
		port = 3000
	}
	return &ServerConfig{
		Port:      port,
		AuthToken: getEnv("AUTH_TOKEN", ""),
	}
}
