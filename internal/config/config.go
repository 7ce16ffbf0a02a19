package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Index    IndexConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // empty disables domain events
	RedisURL           string // empty disables the shared embedding cache
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	OllamaBaseURL      string
	EmbeddingModel     string
	LLMModel           string
	Temperature        float64
	NumPredict         int
	RepeatPenalty      float64
	NumThread          int
	PromptTemplateFile string
}

type IndexConfig struct {
	Backend        string // "chromem" or "pgvector"
	Path           string
	CollectionName string
}

type PipelineConfig struct {
	ManualsFolder      string
	MaxTokens          int
	Stride             int
	TopK               int
	MaxContextLength   int
	EmbeddingCacheSize int
	IngestWorkers      int
	EmbedConcurrency   int
	Tokenizer          string // "wordpiece" or "tiktoken"
	TokenizerFile      string
	TokenizerModel     string
	TokenizerEncoding  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			IngestTopic:        getEnv("INGEST_TOPIC", "INGEST_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://127.0.0.1:11434"),
			EmbeddingModel:     getEnv("OLLAMA_EMBEDDING_MODEL", "all-minilm"),
			LLMModel:           getEnv("LLM_MODEL", "mistral"),
			Temperature:        getEnvAsFloat("LLM_TEMPERATURE", 0.0),
			NumPredict:         getEnvAsInt("LLM_NUM_PREDICT", 256),
			RepeatPenalty:      getEnvAsFloat("LLM_REPEAT_PENALTY", 1.2),
			NumThread:          getEnvAsInt("LLM_NUM_THREAD", 8),
			PromptTemplateFile: getEnv("PROMPT_TEMPLATE_FILE", ""),
		},
		Index: IndexConfig{
			Backend:        getEnv("INDEX_BACKEND", "chromem"),
			Path:           getEnv("CHROMA_PATH", "db"),
			CollectionName: getEnv("COLLECTION_NAME", "manuales"),
		},
		Pipeline: PipelineConfig{
			ManualsFolder:      getEnv("MANUALS_FOLDER", "manuales/"),
			MaxTokens:          getEnvAsInt("MAX_TOKENS", 256),
			Stride:             getEnvAsInt("STRIDE", 128),
			TopK:               getEnvAsInt("TOP_K", 3),
			MaxContextLength:   getEnvAsInt("MAX_CONTEXT_LENGTH", 2000),
			EmbeddingCacheSize: getEnvAsInt("EMBEDDING_CACHE_SIZE", 1000),
			IngestWorkers:      getEnvAsInt("INGEST_WORKERS", 4),
			EmbedConcurrency:   getEnvAsInt("EMBED_CONCURRENCY", 4),
			Tokenizer:          getEnv("TOKENIZER", "wordpiece"),
			TokenizerFile:      getEnv("TOKENIZER_FILE", ""),
			TokenizerModel:     getEnv("TOKENIZER_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
			TokenizerEncoding:  getEnv("TOKENIZER_ENCODING", "cl100k_base"),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
