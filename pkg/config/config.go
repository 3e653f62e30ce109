package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	AMQP      AMQPConfig
	Audit     AuditConfig
	Reconcile ReconcileConfig
	Log       LogConfig
}

type ServerConfig struct {
	Address      string
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	MaxPoolConns int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// AMQPConfig points at the broker that receives audit events. An empty URL
// disables publishing.
type AMQPConfig struct {
	URL      string
	Exchange string
}

func (ac AMQPConfig) Enabled() bool {
	return ac.URL != ""
}

type AuditConfig struct {
	BufferSize int
}

type ReconcileConfig struct {
	Interval time.Duration
}

type LogConfig struct {
	Level   string
	Service string
}

func (dc *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s pool_max_conns=%d",
		dc.Host,
		dc.Port,
		dc.Name,
		dc.User,
		dc.Password,
		dc.MaxPoolConns,
	)
}

func NewConfig() (*Config, error) {
	serverCfg, err := newServerConfig()
	if err != nil {
		return nil, fmt.Errorf("server config error: %w", err)
	}

	dbCfg, err := newDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config error: %w", err)
	}

	authCfg, err := newAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("auth config error: %w", err)
	}

	auditCfg, err := newAuditConfig()
	if err != nil {
		return nil, fmt.Errorf("audit config error: %w", err)
	}

	reconcileCfg, err := newReconcileConfig()
	if err != nil {
		return nil, fmt.Errorf("reconcile config error: %w", err)
	}

	return &Config{
		Server:    serverCfg,
		Database:  dbCfg,
		Auth:      authCfg,
		AMQP:      newAMQPConfig(),
		Audit:     auditCfg,
		Reconcile: reconcileCfg,
		Log:       newLogConfig(),
	}, nil
}

func newServerConfig() (ServerConfig, error) {
	writeTimeout, err := getDurationFromEnv("SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("write timeout parse error: %w", err)
	}

	readTimeout, err := getDurationFromEnv("SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read timeout parse error: %w", err)
	}

	idleTimeout, err := getDurationFromEnv("SERVER_IDLE_TIMEOUT", "30s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("idle timeout parse error: %w", err)
	}

	return ServerConfig{
		Address:      getEnvOrDefault("SERVER_ADDRESS", ":5000"),
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func newDatabaseConfig() (DatabaseConfig, error) {
	maxConns, err := strconv.Atoi(getEnvOrDefault("MAX_CONNS", "99"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("max connections parse error: %w", err)
	}

	return DatabaseConfig{
		Host:         getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:         getEnvOrDefault("POSTGRES_PORT", "5432"),
		Name:         getEnvOrDefault("POSTGRES_DB", "boatride"),
		User:         getEnvOrDefault("POSTGRES_USER", "postgres"),
		Password:     getEnvOrDefault("POSTGRES_PASSWORD", ""),
		MaxPoolConns: maxConns,
	}, nil
}

func newAuthConfig() (AuthConfig, error) {
	ttl, err := getDurationFromEnv("JWT_TTL", "168h")
	if err != nil {
		return AuthConfig{}, fmt.Errorf("token ttl parse error: %w", err)
	}

	secret := getEnvOrDefault("JWT_SECRET", "")
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("JWT_SECRET must be set")
	}

	return AuthConfig{
		JWTSecret: secret,
		TokenTTL:  ttl,
	}, nil
}

func newAMQPConfig() AMQPConfig {
	return AMQPConfig{
		URL:      getEnvOrDefault("AMQP_URL", ""),
		Exchange: getEnvOrDefault("AMQP_EXCHANGE", "boatride.audit"),
	}
}

func newAuditConfig() (AuditConfig, error) {
	size, err := strconv.Atoi(getEnvOrDefault("AUDIT_BUFFER", "256"))
	if err != nil {
		return AuditConfig{}, fmt.Errorf("audit buffer parse error: %w", err)
	}
	return AuditConfig{BufferSize: size}, nil
}

func newReconcileConfig() (ReconcileConfig, error) {
	interval, err := getDurationFromEnv("RECONCILE_INTERVAL", "1m")
	if err != nil {
		return ReconcileConfig{}, fmt.Errorf("reconcile interval parse error: %w", err)
	}
	return ReconcileConfig{Interval: interval}, nil
}

func newLogConfig() LogConfig {
	return LogConfig{
		Level:   getEnvOrDefault("LOG_LEVEL", "INFO"),
		Service: getEnvOrDefault("SERVICE_NAME", "boatride-api"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationFromEnv(key, defaultValue string) (time.Duration, error) {
	return time.ParseDuration(getEnvOrDefault(key, defaultValue))
}
