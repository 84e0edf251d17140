package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig     `envconfig:"SERVER"`
	Database DatabaseConfig   `envconfig:"DB"`
	Redis    RedisConfig      `envconfig:"REDIS"`
	Storage  StorageConfig    `envconfig:"STORAGE"`
	Supabase SupabaseConfig   `envconfig:"SUPABASE"`
	Assembly AssemblyAIConfig `envconfig:"ASSEMBLYAI"`
	Whisper  WhisperConfig    `envconfig:"WHISPER"`
	Groq     GroqConfig       `envconfig:"GROQ"`
	Voice    VoiceConfig      `envconfig:"VOICE"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `split_words:"true" default:"8080"`
	Host            string   `split_words:"true" default:"0.0.0.0"`
	Environment     string   `split_words:"true" default:"development"`
	AllowedOrigins  []string `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout int      `split_words:"true" default:"10"`
	MaxUploadBytes  int64    `split_words:"true" default:"26214400"` // 25 MiB
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `split_words:"true" default:"localhost"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true" default:"postgres"`
	Name        string `split_words:"true" default:"agent_trainer"`
	SSLMode     string `split_words:"true" default:"disable"`
	MaxConns    int    `split_words:"true" default:"25"`
	MinConns    int    `split_words:"true" default:"5"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration. An empty host selects the in-memory cache.
type RedisConfig struct {
	Host     string        `split_words:"true"`
	Port     string        `split_words:"true" default:"6379"`
	Password string        `split_words:"true"`
	DB       int           `split_words:"true" default:"0"`
	TTL      time.Duration `split_words:"true" default:"1h"`
}

// StorageConfig holds recording storage configuration
type StorageConfig struct {
	Endpoint        string        `split_words:"true" default:"localhost:9000"`
	AccessKeyID     string        `split_words:"true" default:"minioadmin"`
	SecretAccessKey string        `split_words:"true" default:"minioadmin"`
	BucketName      string        `split_words:"true" default:"agent-recordings"`
	UseSSL          bool          `split_words:"true" default:"false"`
	PublicURL       string        `split_words:"true"` // e.g. https://minio.example.com behind a reverse proxy
	URLExpiry       time.Duration `split_words:"true" default:"1h"`
}

// SupabaseConfig holds the settings needed to verify Supabase access tokens
type SupabaseConfig struct {
	URL       string `split_words:"true"`
	JWTSecret string `split_words:"true"`
	Audience  string `split_words:"true" default:"authenticated"`
}

// AssemblyAIConfig holds AssemblyAI configuration
type AssemblyAIConfig struct {
	APIKey  string        `split_words:"true"`
	BaseURL string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"5m"`
}

// WhisperConfig holds configuration for an OpenAI-compatible transcription endpoint
type WhisperConfig struct {
	URL     string        `split_words:"true" default:"https://api.openai.com/v1/audio/transcriptions"`
	APIKey  string        `split_words:"true"`
	Model   string        `split_words:"true" default:"whisper-1"`
	Timeout time.Duration `split_words:"true" default:"2m"`
}

// GroqConfig holds Groq configuration
type GroqConfig struct {
	APIKey  string        `split_words:"true"`
	BaseURL string        `split_words:"true" default:"https://api.groq.com"`
	Model   string        `split_words:"true" default:"llama-3.3-70b-versatile"`
	Timeout time.Duration `split_words:"true" default:"30s"`
}

// VoiceConfig holds voice analysis configuration
type VoiceConfig struct {
	Provider        string        `split_words:"true" default:"assemblyai"` // "assemblyai" or "whisper"
	Language        string        `split_words:"true" default:"es"`
	RulesFile       string        `split_words:"true"`
	AnalysisTimeout time.Duration `split_words:"true" default:"5m"`
}

// Load loads configuration from the .env file and environment variables
func Load() (*Config, error) {
	config, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadUnvalidated loads configuration without checking the API-serving requirements.
// Tools that only touch the database use it.
func LoadUnvalidated() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch strings.ToLower(c.Voice.Provider) {
	case "assemblyai":
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when VOICE_PROVIDER=assemblyai")
		}
	case "whisper":
		if c.Whisper.URL == "" {
			return fmt.Errorf("WHISPER_URL is required when VOICE_PROVIDER=whisper")
		}
	default:
		return fmt.Errorf("unsupported VOICE_PROVIDER %q", c.Voice.Provider)
	}
	if c.Supabase.JWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.Voice.Language == "" {
		return fmt.Errorf("VOICE_LANGUAGE must not be empty")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
