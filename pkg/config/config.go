package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	OpenAI   OpenAIConfig
	RAG      RAGConfig
	Chat     ChatConfig
	Catalog  CatalogConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type OpenAIConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
}

type RAGConfig struct {
	TopK int
}

type ChatConfig struct {
	// HistoryWindow is the number of recent turns forwarded to generation.
	// Unbounded history is never forwarded.
	HistoryWindow int
	// GenerationTimeout bounds one generation call; exceeding it is
	// treated as a generation failure.
	GenerationTimeout time.Duration
	// SessionTTL is how long an idle session stays in the in-process
	// registry before its state is rebuilt from persisted history.
	SessionTTL time.Duration
}

type CatalogConfig struct {
	// InterfacesDir is the root of the panel/quick-action/intent-rule
	// JSON sources.
	InterfacesDir string
}

func Load() (*Config, error) {
	// Try to load a .env file; plain environment variables work too
	// (useful for Docker/K8s).
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	topK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "6"))
	historyWindow, _ := strconv.Atoi(getEnv("CHAT_HISTORY_WINDOW", "10"))
	genTimeout, _ := strconv.Atoi(getEnv("CHAT_GENERATION_TIMEOUT", "45"))
	sessionTTL, _ := strconv.Atoi(getEnv("CHAT_SESSION_TTL_MINUTES", "60"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mediskill"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			ChatModel:      getEnv("OPENAI_MODEL_CHAT", "gpt-3.5-turbo"),
			EmbeddingModel: getEnv("OPENAI_MODEL_EMBEDDING", "text-embedding-ada-002"),
		},
		RAG: RAGConfig{
			TopK: topK,
		},
		Chat: ChatConfig{
			HistoryWindow:     historyWindow,
			GenerationTimeout: time.Duration(genTimeout) * time.Second,
			SessionTTL:        time.Duration(sessionTTL) * time.Minute,
		},
		Catalog: CatalogConfig{
			InterfacesDir: getEnv("CATALOG_INTERFACES_DIR", "data/interfaces"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// PanelPaths lists the panel sources in declaration order; that order is the
// tie-break order the router inherits.
func (c *CatalogConfig) PanelPaths() []string {
	return []string{
		filepath.Join(c.InterfacesDir, "special", "fee_and_packages.json"),
		filepath.Join(c.InterfacesDir, "special", "facilities_grid.json"),
		filepath.Join(c.InterfacesDir, "special", "training_programs.json"),
		filepath.Join(c.InterfacesDir, "special", "location_directory.json"),
	}
}

func (c *CatalogConfig) QuickActionsPath() string {
	return filepath.Join(c.InterfacesDir, "global", "quick_actions.json")
}

func (c *CatalogConfig) IntentRulesPath() string {
	return filepath.Join(c.InterfacesDir, "intent_rules.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
