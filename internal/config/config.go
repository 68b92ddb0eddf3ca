package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Upstream ERP (SOAP)
	ERPHost       string // e.g. https://erp.example.com
	ERPSoapPath   string // e.g. /wscartera/service.asmx
	SOAPAction    string // SOAPAction header value
	SOAPNamespace string
	SOAPMethod    string
	ERPDatabase   string // tenant identifier ("basedatos")
	ERPToken      string

	// Transport
	SOAPTimeout  time.Duration
	RetryBackoff time.Duration

	// Batch fan-out
	MaxConcurrency int

	// Optional document-prefix allow-list; empty means all prefixes.
	DocumentPrefixes []string

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ERPHost:       getEnv("ERP_HOST", ""),
		ERPSoapPath:   getEnv("ERP_SOAP_PATH", "/wscartera/service.asmx"),
		SOAPAction:    getEnv("ERP_SOAP_ACTION", "http://tempuri.org/ConsultarCartera"),
		SOAPNamespace: getEnv("ERP_SOAP_NAMESPACE", "http://tempuri.org/"),
		SOAPMethod:    getEnv("ERP_SOAP_METHOD", "ConsultarCartera"),
		ERPDatabase:   getEnv("ERP_DATABASE", ""),
		ERPToken:      getEnv("ERP_TOKEN", ""),

		SOAPTimeout:  getEnvDuration("SOAP_TIMEOUT", 28*time.Second),
		RetryBackoff: getEnvDuration("RETRY_BACKOFF", 800*time.Millisecond),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 10),

		DocumentPrefixes: getEnvList("DOCUMENT_PREFIXES"),

		CacheTTL: getEnvDuration("CACHE_TTL", 2*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// ERPEndpoint returns the full URL of the upstream SOAP service.
func (c *Config) ERPEndpoint() string {
	return strings.TrimRight(c.ERPHost, "/") + c.ERPSoapPath
}

// ValidateERP reports whether the upstream ERP can be called at all.
// Checked per request before any network call; a missing value surfaces
// as a configuration error on the cartera routes while the rest of the
// process keeps serving.
func (c *Config) ValidateERP() error {
	switch {
	case c.ERPHost == "":
		return &domain.ErrConfiguration{Missing: "ERP_HOST"}
	case c.ERPDatabase == "":
		return &domain.ErrConfiguration{Missing: "ERP_DATABASE"}
	case c.ERPToken == "":
		return &domain.ErrConfiguration{Missing: "ERP_TOKEN"}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList parses a comma-separated env var, dropping empty entries.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
