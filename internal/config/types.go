package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Redis         RedisConfig
	Turso         TursoConfig
}

// RedisConfig holds the connection settings for the game queue backend.
type RedisConfig struct {
	Addr     string
	Password string
}

// TursoConfig holds the optional remote database settings.
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
