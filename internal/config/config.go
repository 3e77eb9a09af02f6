package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Sync     SyncConfig
	Agent    AgentConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	MetricsPort        string
}

type DatabaseConfig struct {
	Connection string
}

// SyncConfig holds the real-time engine tuning knobs. Defaults match the
// production transcription pipeline: 2 s agent debounce, 100 retained
// transcript entries. Chunk size is part of the audio wire format and is
// not configurable.
type SyncConfig struct {
	DebounceMs    int
	TranscriptCap int
}

// AgentConfig addresses the external AI agent over NATS.
type AgentConfig struct {
	ProcessSubject  string
	ProposalSubject string
	RoomTTL         time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			MetricsPort:        getEnv("METRICS_PORT", "9091"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Sync: SyncConfig{
			DebounceMs:    getEnvAsInt("AGENT_DEBOUNCE_MS", 2000),
			TranscriptCap: getEnvAsInt("TRANSCRIPT_CAPACITY", 100),
		},
		Agent: AgentConfig{
			ProcessSubject:  getEnv("AGENT_PROCESS_SUBJECT", "AGENT_PROCESS"),
			ProposalSubject: getEnv("AGENT_PROPOSAL_SUBJECT", "AGENT_PROPOSAL"),
			RoomTTL:         time.Duration(getEnvAsInt("ROOM_TTL_MINUTES", 120)) * time.Minute,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
