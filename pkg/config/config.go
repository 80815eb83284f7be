package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Chatbot    ChatbotConfig
	Advisor    AdvisorConfig
	Catalog    CatalogConfig
	Professors ProfessorsConfig
	OpenAlex   OpenAlexConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	Logging    LoggingConfig
	Debug      bool
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type AIConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type ChatbotConfig struct {
	HistoryCap    int
	CondenseLast  int
	SessionTTLMin int
	MaxMessageLen int
}

type AdvisorConfig struct {
	DefaultMaxCourses  int
	CoursesPerSemester int
	CacheTTLMin        int
}

type CatalogConfig struct {
	CoursesPath string
	CareersPath string
}

type ProfessorsConfig struct {
	RosterPath string
}

type OpenAlexConfig struct {
	BaseURL    string
	TimeoutSec int
	MaxWorks   int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/bu-planner")

	viper.SetEnvPrefix("PLANNER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The Google credential is conventionally set as GOOGLE_API_KEY, matching
	// the deployment environment this service inherited.
	viper.BindEnv("ai.apiKey", "PLANNER_AI_APIKEY", "GOOGLE_API_KEY", "OPENAI_API_KEY")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.model", "gemini-2.0-flash")
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("ai.maxTokens", 1024)
	viper.SetDefault("ai.timeoutSec", 20)

	viper.SetDefault("chatbot.historyCap", 20)
	viper.SetDefault("chatbot.condenseLast", 5)
	viper.SetDefault("chatbot.sessionTTLMin", 60)
	viper.SetDefault("chatbot.maxMessageLen", 2000)

	viper.SetDefault("advisor.defaultMaxCourses", 8)
	viper.SetDefault("advisor.coursesPerSemester", 4)
	viper.SetDefault("advisor.cacheTTLMin", 60)

	viper.SetDefault("catalog.coursesPath", "./data/processed_courses.json")
	viper.SetDefault("catalog.careersPath", "./data/careers.json")

	viper.SetDefault("professors.rosterPath", "./data/professors.csv")

	viper.SetDefault("openalex.baseURL", "https://api.openalex.org")
	viper.SetDefault("openalex.timeoutSec", 10)
	viper.SetDefault("openalex.maxWorks", 10)

	viper.SetDefault("sqlite.path", "./data/planner.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")

	viper.SetDefault("debug", false)
}
