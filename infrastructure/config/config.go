package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pranavrajput12/PRSNL-sub011/domain/services"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StoreSQL      = "sql"
)

// Event backends
const (
	EventsMemory      = "memory"
	EventsEventBridge = "eventbridge"
	EventsKafka       = "kafka"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	EnableCORS      bool          `yaml:"enable_cors"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// StoreConfig selects and sizes the graph store
type StoreConfig struct {
	Backend string `yaml:"backend"`
	// MaxEntities caps the number of entities; 0 means unbounded.
	MaxEntities int `yaml:"max_entities"`
}

// DynamoDBConfig holds the single-table settings
type DynamoDBConfig struct {
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// SQLConfig holds the relational store settings
type SQLConfig struct {
	Driver string `yaml:"driver"` // postgres or sqlite
	DSN    string `yaml:"dsn"`
}

// EventsConfig selects where domain events go
type EventsConfig struct {
	Backend      string   `yaml:"backend"`
	EventBusName string   `yaml:"event_bus_name"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

// Neo4jConfig configures the optional graph mirror
type Neo4jConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// CacheConfig configures the analytics cache
type CacheConfig struct {
	RedisAddr  string        `yaml:"redis_addr"`
	RedisDB    int           `yaml:"redis_db"`
	TTL        time.Duration `yaml:"ttl"`
	MemorySize int           `yaml:"memory_size"`
}

// EmbeddingConfig configures the embedding backfill
type EmbeddingConfig struct {
	Enabled          bool          `yaml:"enabled"`
	BaseURL          string        `yaml:"base_url"`
	Model            string        `yaml:"model"`
	Timeout          time.Duration `yaml:"timeout"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
	BreakerMaxFailed uint32        `yaml:"breaker_max_failed"`
}

// ObservabilityConfig toggles metrics and tracing
type ObservabilityConfig struct {
	EnableMetrics bool    `yaml:"enable_metrics"`
	EnableTracing bool    `yaml:"enable_tracing"`
	OTLPEndpoint  string  `yaml:"otlp_endpoint"`
	SampleRate    float64 `yaml:"sample_rate"`
	SlowCommandMs int     `yaml:"slow_command_ms"`
	SlowQueryMs   int     `yaml:"slow_query_ms"`
}

// Config holds all application configuration
type Config struct {
	Environment string `yaml:"environment"`
	ServiceName string `yaml:"service_name"`
	LogLevel    string `yaml:"log_level"`
	IsLambda    bool   `yaml:"-"`
	// ConfigFile is the YAML file the config was overlaid from, if any.
	ConfigFile string `yaml:"-"`

	Server        ServerConfig             `yaml:"server"`
	Store         StoreConfig              `yaml:"store"`
	DynamoDB      DynamoDBConfig           `yaml:"dynamodb"`
	SQL           SQLConfig                `yaml:"sql"`
	Events        EventsConfig             `yaml:"events"`
	Neo4j         Neo4jConfig              `yaml:"neo4j"`
	Cache         CacheConfig              `yaml:"cache"`
	Embedding     EmbeddingConfig          `yaml:"embedding"`
	Observability ObservabilityConfig      `yaml:"observability"`
	Analytics     services.AnalyticsConfig `yaml:"analytics"`
}

func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		ServiceName: "prsnl-knowledge-graph",
		LogLevel:    "info",
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableCORS:      true,
			AllowedOrigins:  []string{"*"},
		},
		Store:    StoreConfig{Backend: StoreMemory},
		DynamoDB: DynamoDBConfig{Table: "prsnl-graph", Region: "us-west-2"},
		SQL:      SQLConfig{Driver: "sqlite", DSN: "file:prsnl-graph.db"},
		Events: EventsConfig{
			Backend:      EventsMemory,
			EventBusName: "prsnl-events",
			KafkaTopic:   "prsnl.graph.events",
		},
		Neo4j: Neo4jConfig{URI: "neo4j://localhost:7687", Username: "neo4j", Database: "neo4j"},
		Cache: CacheConfig{TTL: 5 * time.Minute, MemorySize: 256},
		Embedding: EmbeddingConfig{
			BaseURL:          "http://localhost:11434",
			Model:            "nomic-embed-text",
			Timeout:          10 * time.Second,
			BreakerTimeout:   60 * time.Second,
			BreakerMaxFailed: 5,
		},
		Observability: ObservabilityConfig{
			EnableMetrics: true,
			SampleRate:    1.0,
			SlowCommandMs: 500,
			SlowQueryMs:   1000,
		},
		Analytics: services.DefaultAnalyticsConfig(),
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// CONFIG_FILE and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.IsLambda = getEnv("AWS_LAMBDA_FUNCTION_NAME", "") != "" || getEnvBool("IS_LAMBDA", false)

	c.Server.Address = getEnv("SERVER_ADDRESS", c.Server.Address)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.EnableCORS = getEnvBool("ENABLE_CORS", c.Server.EnableCORS)
	c.Server.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.Store.Backend = getEnv("STORE_BACKEND", c.Store.Backend)
	c.Store.MaxEntities = getEnvInt("STORE_MAX_ENTITIES", c.Store.MaxEntities)

	c.DynamoDB.Table = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDB.Table))
	c.DynamoDB.Region = getEnv("AWS_REGION", c.DynamoDB.Region)
	c.DynamoDB.Endpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDB.Endpoint)

	c.SQL.Driver = getEnv("SQL_DRIVER", c.SQL.Driver)
	c.SQL.DSN = getEnv("DATABASE_URL", c.SQL.DSN)

	c.Events.Backend = getEnv("EVENT_BACKEND", c.Events.Backend)
	c.Events.EventBusName = getEnv("EVENT_BUS_NAME", c.Events.EventBusName)
	c.Events.KafkaBrokers = getEnvList("KAFKA_BROKERS", c.Events.KafkaBrokers)
	c.Events.KafkaTopic = getEnv("KAFKA_TOPIC", c.Events.KafkaTopic)

	c.Neo4j.Enabled = getEnvBool("NEO4J_ENABLED", c.Neo4j.Enabled)
	c.Neo4j.URI = getEnv("NEO4J_URI", c.Neo4j.URI)
	c.Neo4j.Username = getEnv("NEO4J_USER", c.Neo4j.Username)
	c.Neo4j.Password = getEnv("NEO4J_PASSWORD", c.Neo4j.Password)
	c.Neo4j.Database = getEnv("NEO4J_DATABASE", c.Neo4j.Database)

	c.Cache.RedisAddr = getEnv("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisDB = getEnvInt("REDIS_DB", c.Cache.RedisDB)
	c.Cache.TTL = getEnvDuration("CACHE_TTL", c.Cache.TTL)

	c.Embedding.Enabled = getEnvBool("EMBEDDING_ENABLED", c.Embedding.Enabled)
	c.Embedding.BaseURL = getEnv("OLLAMA_BASE_URL", c.Embedding.BaseURL)
	c.Embedding.Model = getEnv("EMBEDDING_MODEL", c.Embedding.Model)

	c.Observability.EnableMetrics = getEnvBool("ENABLE_METRICS", c.Observability.EnableMetrics)
	c.Observability.EnableTracing = getEnvBool("ENABLE_TRACING", c.Observability.EnableTracing)
	c.Observability.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Observability.OTLPEndpoint)
	c.Observability.SampleRate = getEnvFloat("TRACE_SAMPLE_RATE", c.Observability.SampleRate)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreDynamoDB, StoreSQL:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Store.MaxEntities < 0 {
		return fmt.Errorf("STORE_MAX_ENTITIES cannot be negative")
	}
	if c.Store.Backend == StoreDynamoDB && c.DynamoDB.Table == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb store")
	}
	if c.Store.Backend == StoreSQL {
		if c.SQL.Driver != "postgres" && c.SQL.Driver != "sqlite" {
			return fmt.Errorf("SQL_DRIVER must be postgres or sqlite, got %q", c.SQL.Driver)
		}
		if c.SQL.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the sql store")
		}
	}

	switch c.Events.Backend {
	case EventsMemory:
	case EventsEventBridge:
		if c.Events.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required for eventbridge")
		}
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 || c.Events.KafkaTopic == "" {
			return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC are required for kafka")
		}
	default:
		return fmt.Errorf("unknown EVENT_BACKEND %q", c.Events.Backend)
	}

	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be within [0,1]")
	}
	return ValidateAnalytics(c.Analytics)
}

// ValidateAnalytics rejects tunables no engine can run with.
func ValidateAnalytics(a services.AnalyticsConfig) error {
	if a.Similarity.SemanticWeight < 0 || a.Similarity.CoOccurrenceWeight < 0 {
		return fmt.Errorf("similarity weights cannot be negative")
	}
	if a.Similarity.SemanticWeight+a.Similarity.CoOccurrenceWeight == 0 {
		return fmt.Errorf("similarity weights cannot both be zero")
	}
	if a.Path.MaxNodesExpanded <= 0 || a.Path.MaxDepthLimit <= 0 {
		return fmt.Errorf("path search caps must be positive")
	}
	if a.Path.MediumThreshold > a.Path.EasyThreshold {
		return fmt.Errorf("path medium threshold must not exceed the easy threshold")
	}
	if a.Clustering.MaxEntities <= 0 {
		return fmt.Errorf("clustering max_entities must be positive")
	}
	if a.Clustering.CohesionFloor < 0 || a.Clustering.CohesionFloor > 1 {
		return fmt.Errorf("clustering cohesion_floor must be within [0,1]")
	}
	if a.Suggester.GlobalSampleSize <= 0 {
		return fmt.Errorf("suggester global_sample_size must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
