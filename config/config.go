package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server      Server
	Database    Database
	Storage     Storage
	Provider    Provider
	PromptStore PromptStore
	Auth        Auth
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Storage struct {
	// Backend is "postgres" or "memory". Postgres that is unreachable at
	// boot downgrades the process to memory for its lifetime.
	Backend string
}

type Provider struct {
	// Name is "openai" or "gemini".
	Name         string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
}

type PromptStore struct {
	URL         string
	PublicKey   string
	SecretKey   string
	Environment string
}

type Auth struct {
	JWTSecret string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORAGE_BACKEND", "postgres")
	viper.SetDefault("PROVIDER", "openai")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("PROMPT_ENVIRONMENT", "production")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Storage.Backend = viper.GetString("STORAGE_BACKEND")

	config.Provider.Name = viper.GetString("PROVIDER")
	config.Provider.OpenAIAPIKey = viper.GetString("OPENAI_API_KEY")
	config.Provider.OpenAIModel = viper.GetString("OPENAI_MODEL")
	config.Provider.GeminiAPIKey = viper.GetString("GEMINI_API_KEY")

	config.PromptStore.URL = viper.GetString("PROMPT_STORE_URL")
	config.PromptStore.PublicKey = viper.GetString("PROMPT_STORE_PUBLIC_KEY")
	config.PromptStore.SecretKey = viper.GetString("PROMPT_STORE_SECRET_KEY")
	config.PromptStore.Environment = viper.GetString("PROMPT_ENVIRONMENT")

	config.Auth.JWTSecret = viper.GetString("AUTH_JWT_SECRET")

	log.Info().Str("port", config.Server.Port).
		Str("storage", config.Storage.Backend).
		Str("provider", config.Provider.Name).
		Msg("Config loaded")
	return &config, nil
}
