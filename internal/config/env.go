package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
)

type EnvConfig struct {
	ConfigPath string
	// SessionID scopes deduplication for the interactive host; -1 disables it.
	SessionID    int
	FileProvider string
	LogLevel     string
	OTel         OTelEnvConfig
}

type OTelEnvConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Protocol       string // "grpc" or "http/protobuf"
	Headers        map[string]string
	Insecure       bool
	SampleRatio    float64
}

func LoadEnv() EnvConfig {
	otlpEndpoint := strings.TrimSpace(envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""))

	return EnvConfig{
		ConfigPath:   envString("PHOTOSELECTOR_CONFIG", "photoselector.yaml"),
		SessionID:    envInt("SESSION_ID", 1),
		FileProvider: envString("FILE_PROVIDER", ""),
		LogLevel:     strings.ToLower(envString("LOG_LEVEL", "info")),
		OTel: OTelEnvConfig{
			Enabled:        envBool("OTEL_ENABLED", false),
			ServiceName:    strings.TrimSpace(envString("OTEL_SERVICE_NAME", "photoselector")),
			ServiceVersion: envString("OTEL_SERVICE_VERSION", ""),
			Endpoint:       otlpEndpoint,
			Protocol:       strings.ToLower(strings.TrimSpace(envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			Headers:        parseHeaders(envString("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:       envBool("OTEL_EXPORTER_OTLP_INSECURE", defaultInsecure(otlpEndpoint)),
			SampleRatio:    clamp01(envFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0)),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func parseHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func defaultInsecure(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return true
	}
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return u.Scheme == "http"
	}
	return strings.HasPrefix(endpoint, "localhost:") ||
		strings.HasPrefix(endpoint, "127.0.0.1:")
}
