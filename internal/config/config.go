package config

import (
	"os"
	"time"
)

type Config struct {
	ProjectID      string
	Region         string
	LogLevel       string
	KMSKeyName     string
	VertexModel    string
	LayoutDebounce time.Duration
	DataTTL        time.Duration
}

func New() *Config {
	return &Config{
		ProjectID:      os.Getenv("PROJECTID"),
		Region:         os.Getenv("REGION"),
		LogLevel:       os.Getenv("LOGLEVEL"),
		KMSKeyName:     os.Getenv("KMSKEYNAME"),
		VertexModel:    os.Getenv("VERTEXMODEL"),
		LayoutDebounce: getDuration(os.Getenv("LAYOUTDEBOUNCE"), 750*time.Millisecond),
		DataTTL:        getDuration(os.Getenv("DATATTL"), 5*time.Minute),
	}
}

func getDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
