package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret signs session tokens when SESSION_SECRET is unset.
// It is public, so production refuses to start with it.
const DefaultSessionSecret = "change-me"

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Ai       AIConfig
	Speech   SpeechConfig
	Vision   VisionConfig
	Keys     KeysConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	DispatchLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ScratchDir         string
	UploadLimitMB      int
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini", "ollama" or "huggingface"
	LLMModel          string
	GeminiBaseURL     string
	ChunkSize         int
	ChunkOverlap      int
	TopK              int
	HistoryBackend    string // "memory" or "redis"
	HistoryWindow     int
}

type SpeechConfig struct {
	LanguageCode   string
	GCPAccessToken string
	Mp3SampleRate  int
}

type KeysConfig struct {
	Jina        string
	HuggingFace string
}

type VisionConfig struct {
	Narrator      string // "", "ollama" or "gemini"
	NarratorModel string
	NarratorKey   string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesDefaultSessionSecret reports whether session tokens would be signed
// with the built-in secret.
func (c *Config) UsesDefaultSessionSecret() bool {
	return c.Session.Secret == "" || c.Session.Secret == DefaultSessionSecret
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
			DispatchLogPath:    getEnv("DISPATCH_LOG_PATH", "logs/dispatch.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ScratchDir:         getEnv("SCRATCH_DIR", "temp"),
			UploadLimitMB:      getEnvAsInt("UPLOAD_LIMIT_MB", 200),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", DefaultSessionSecret),
			TTL:    getEnvAsDuration("SESSION_TTL", time.Hour),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
			GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1"),
			ChunkSize:         getEnvAsInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap:      getEnvAsInt("RAG_CHUNK_OVERLAP", 200),
			TopK:              getEnvAsInt("RAG_TOP_K", 4),
			HistoryBackend:    getEnv("HISTORY_BACKEND", "memory"),
			HistoryWindow:     getEnvAsInt("HISTORY_WINDOW", 10),
		},
		Speech: SpeechConfig{
			LanguageCode:   getEnv("SPEECH_LANGUAGE_CODE", "en-US"),
			GCPAccessToken: getEnv("GCP_ACCESS_TOKEN", ""),
			Mp3SampleRate:  getEnvAsInt("SPEECH_MP3_SAMPLE_RATE", 44100),
		},
		Vision: VisionConfig{
			Narrator:      getEnv("CAPTION_NARRATOR", ""),
			NarratorModel: getEnv("CAPTION_NARRATOR_MODEL", "llama3"),
			NarratorKey:   getEnv("CAPTION_NARRATOR_API_KEY", ""),
		},
		Keys: KeysConfig{
			Jina:        getEnv("JINA_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
