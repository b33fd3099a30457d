package config

import (
	"os"
	"strconv"
	"time"
)

// Config representa a configuração da aplicação
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Proof    ProofConfig
	Worker   WorkerConfig
}

// ServerConfig é a configuração do servidor HTTP
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig é a configuração do PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig é a configuração do Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ProofConfig é a configuração do armazenamento de comprovantes
type ProofConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// WorkerConfig é a configuração dos workers em segundo plano
type WorkerConfig struct {
	AvailabilityRefreshInterval time.Duration
}

// Load carrega a configuração a partir das variáveis de ambiente
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "event_registration"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Proof: ProofConfig{
			Dir:          getEnv("PROOF_DIR", "data/proofs"),
			MaxSizeBytes: getInt64Env("PROOF_MAX_SIZE_BYTES", 5<<20),
		},
		Worker: WorkerConfig{
			AvailabilityRefreshInterval: getDurationEnv("AVAILABILITY_REFRESH_INTERVAL", time.Minute),
		},
	}
}

// DSN retorna a string de conexão do PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr retorna o endereço de conexão do Redis
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
