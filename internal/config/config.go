package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// Driver selects the backend; URL is a postgres connection string or a
// sqlite file path depending on the driver.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost" validate:"omitempty,gte=4,lte=31"`
}

// LLMConfig contains all language model integration settings. Exactly one
// provider is active at a time; only the active provider's API key is
// required.
type LLMConfig struct {
	Provider              string  `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	GeminiAPIKey          string  `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey          string  `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`
	OpenAIBaseURL         string  `mapstructure:"openai_base_url" validate:"omitempty,url"`
	ModelName             string  `mapstructure:"model_name" validate:"required"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	Temperature           float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens       int32   `mapstructure:"max_output_tokens" validate:"omitempty,gt=0"`
}

// EngineConfig contains the tunable policy values of the mastery engine.
type EngineConfig struct {
	// MasteryThreshold is the correctness ratio below which a concept is
	// classified as weak.
	MasteryThreshold float64 `mapstructure:"mastery_threshold" validate:"required,gt=0,lte=1"`

	// MinSampleSize is the attempt count under which classifications are
	// annotated as low-confidence.
	MinSampleSize int `mapstructure:"min_sample_size" validate:"required,gte=1"`

	// QuizItemCount is the number of items requested per quiz round.
	QuizItemCount int `mapstructure:"quiz_item_count" validate:"required,gte=1,lte=50"`
}

// TaskConfig contains the background task runner settings.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"omitempty,gte=1"`
	QueueSize           int `mapstructure:"queue_size" validate:"omitempty,gte=1"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"omitempty,gte=1"`
}
