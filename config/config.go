// Package config is the single source of truth for every tunable constant
// shared between the room simulation and the client prediction core.
//
// IMPORTANT: when changing a balance value, only modify this file — every
// other package reads its numbers from here so the server and the client
// core can never silently disagree on a bit-exact constant.
package config

import (
	"os"
	"strconv"
)

// TickHz is the fixed rate, in Hz, at which a room's simulation advances.
const TickHz = 60

// TickInterval is the nominal wall-clock duration of one tick, in
// milliseconds. This is computed as a float so 60Hz's non-integer period
// (16.6recur) isn't truncated to 16ms and slowly drifted against wall time.
const TickInterval float64 = 1_000.0 / TickHz

// Sim holds the numeric constants that govern room simulation and must be
// bit-exact between server and client (see spec §6).
type Sim struct {
	BulletSpeed      float64 // px/s
	BulletLifetimeMs float64
	BulletDamage     int
	BulletWidth      float64
	BulletHeight     float64

	PlayerHalfWidth  float64
	PlayerHalfHeight float64

	RespawnMs float64
	WinScore  int

	MaxClients int

	RedSpawnX, RedSpawnY   float64
	BlueSpawnX, BlueSpawnY float64

	WorldMinX, WorldMaxX float64

	ReconcileDeadBandPx     float64
	SnapThresholdPx         float64
	SnapThresholdDashingPx  float64
	ReconcileRatePerSecond  float64
}

// DefaultSim returns the default simulation constants from spec §6.
func DefaultSim() Sim {
	return Sim{
		BulletSpeed:      900,
		BulletLifetimeMs: 2_000,
		BulletDamage:     10,
		BulletWidth:      10,
		BulletHeight:     4,

		PlayerHalfWidth:  18,
		PlayerHalfHeight: 26,

		RespawnMs: 3_000,
		WinScore:  30,

		MaxClients: 8,

		RedSpawnX:  200,
		RedSpawnY:  500,
		BlueSpawnX: 2800,
		BlueSpawnY: 500,

		WorldMinX: -100,
		WorldMaxX: 3100,

		ReconcileDeadBandPx:    5,
		SnapThresholdPx:        100,
		SnapThresholdDashingPx: 300,
		ReconcileRatePerSecond: 0.3,
	}
}

// SimFromEnv returns simulation constants with environment variable
// overrides, following the same override pattern used throughout this
// package. This exists for local tuning and load testing; production
// deployments should leave these untouched so clients and servers agree.
func SimFromEnv() Sim {
	cfg := DefaultSim()

	if v := getEnvFloat("BULLET_SPEED", -1); v >= 0 {
		cfg.BulletSpeed = v
	}
	if v := getEnvFloat("BULLET_LIFETIME_MS", -1); v >= 0 {
		cfg.BulletLifetimeMs = v
	}
	if v := getEnvInt("BULLET_DAMAGE", -1); v >= 0 {
		cfg.BulletDamage = v
	}
	if v := getEnvInt("WIN_SCORE", -1); v >= 0 {
		cfg.WinScore = v
	}
	if v := getEnvInt("MAX_CLIENTS", -1); v >= 0 {
		cfg.MaxClients = v
	}

	return cfg
}

// ServerConfig holds HTTP/WebSocket server settings.
type ServerConfig struct {
	Port            int
	MetricsPort     int
	InboundRatePerS float64 // per-client inbound message rate limit
	InboundBurst    int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:            8080,
		MetricsPort:     9090,
		InboundRatePerS: 120, // 2x tick rate headroom for move+dash+shoot
		InboundBurst:    60,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("METRICS_PORT", 0); p > 0 {
		cfg.MetricsPort = p
	}
	if r := getEnvFloat("INBOUND_RATE_PER_S", -1); r >= 0 {
		cfg.InboundRatePerS = r
	}
	if b := getEnvInt("INBOUND_BURST", -1); b >= 0 {
		cfg.InboundBurst = b
	}

	return cfg
}

// AppConfig is the complete application configuration.
type AppConfig struct {
	Sim    Sim
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides
// applied.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Server: ServerFromEnv(),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
