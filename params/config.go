// Package params holds service configuration: env-driven runtime settings
// and the yaml market registry the keeper loads at startup.
package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HTTP struct {
	Addr string
}

type Oracle struct {
	// URL of the websocket price stream.
	URL            string
	ReconnectDelay time.Duration
}

type Keeper struct {
	// ScanInterval paces fill-candidate scans.
	//
	// Recommended values:
	//   - Devnet:     1s (easy to follow in logs)
	//   - Production: 400ms (roughly one evaluation per slot)
	ScanInterval time.Duration
}

type Config struct {
	DataDir     string
	LogFile     string
	MarketsFile string
	HTTP        HTTP
	Oracle      Oracle
	Keeper      Keeper
}

func Default() Config {
	return Config{
		DataDir:     "data",
		LogFile:     "data/keeper.log",
		MarketsFile: "markets.yaml",
		HTTP:        HTTP{Addr: ":8080"},
		Oracle: Oracle{
			URL:            "ws://localhost:9000/prices",
			ReconnectDelay: 2 * time.Second,
		},
		Keeper: Keeper{ScanInterval: time.Second},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("MARKETS_FILE"); v != "" {
		cfg.MarketsFile = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("ORACLE_WS_URL"); v != "" {
		cfg.Oracle.URL = v
	}
	if v := os.Getenv("ORACLE_RECONNECT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Oracle.ReconnectDelay = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("SCAN_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Keeper.ScanInterval = time.Duration(ms) * time.Millisecond
		}
	}

	return cfg
}
