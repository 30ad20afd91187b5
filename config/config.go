package config

import (
	"errors"
	"time"
)

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Default() and override only what they need.
type Config struct {
	// Worker pool controls.
	WorkerCount int // default: runtime.NumCPU()
	QueueSize   int // max queued jobs before backpressure; default: 256
	JobTimeout  time.Duration

	// Streaming / memory limits on the encoded input.
	MaxImageBytes int64 // 0 = no limit
	ChunkSize     int   // streaming chunk size in bytes; default 32 KiB

	// Limits applied to every decoder before pixels are read.
	Limits LimitsConfig

	// Logging.
	LogLevel string // "debug", "info", "warn", "error"
}

// LimitsConfig holds the decode ceilings; zero disables one.
type LimitsConfig struct {
	MaxWidth  uint32
	MaxHeight uint32
	MaxAlloc  uint64 // bytes of decoded output per image
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		WorkerCount: 0, // resolved at runtime to NumCPU
		QueueSize:   256,
		JobTimeout:  30 * time.Second,
		ChunkSize:   32 * 1024,
		Limits: LimitsConfig{
			MaxWidth:  65535,
			MaxHeight: 65535,
			MaxAlloc:  512 * 1024 * 1024,
		},
		LogLevel: "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.QueueSize < 0 {
		return errors.New("config: QueueSize must not be negative")
	}
	if c.MaxImageBytes < 0 {
		return errors.New("config: MaxImageBytes must not be negative")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New("config: LogLevel must be debug, info, warn or error")
	}
	return nil
}
