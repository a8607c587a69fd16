package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

type Config struct {
	DB       DBConfig
	Server   ServerConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Logger   LoggerConfig
	Importer ImporterConfig
}

type DBConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	Path            string // sqlite3 only
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	CreateDatabase  bool // mysql only: create the database before migrating
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowOrigins    string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// CacheConfig controls the read-through cache used by the catalog API.
type CacheConfig struct {
	QuestionSetTTL string
}

type LoggerConfig struct {
	Level string
	Env   string
}

// ImporterConfig describes where the importer looks and how file paths map
// onto the division/group/subject hierarchy.
type ImporterConfig struct {
	RootDir       string
	DivisionIndex int
	GroupIndex    int
	SubjectIndex  int
	MinComponents int
	Migrate       bool
	FlushCache    bool
}

func setDefaults() {
	viper.SetDefault("db.driver", DriverMySQL)
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 3306)
	viper.SetDefault("db.user", "root")
	viper.SetDefault("db.password", "")
	viper.SetDefault("db.name", "chorcha_db")
	viper.SetDefault("db.path", "mcq_catalog.db")
	viper.SetDefault("db.max_open_conns", 10)
	viper.SetDefault("db.max_idle_conns", 5)
	viper.SetDefault("db.conn_max_lifetime", "30m")
	viper.SetDefault("db.create_database", false)

	viper.SetDefault("server.port", 8001)
	viper.SetDefault("server.read_timeout", "20s")
	viper.SetDefault("server.write_timeout", "20s")
	viper.SetDefault("server.idle_timeout", "20s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.allow_origins", "*")

	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("cache.question_set_ttl", "10m")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	viper.SetDefault("importer.root_dir", "Data/Output/MCQ")
	viper.SetDefault("importer.division_index", 3)
	viper.SetDefault("importer.group_index", 4)
	viper.SetDefault("importer.subject_index", 6)
	viper.SetDefault("importer.min_components", 7)
	viper.SetDefault("importer.migrate", true)
	viper.SetDefault("importer.flush_cache", true)
}

func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		DB: DBConfig{
			Driver:          viper.GetString("db.driver"),
			Host:            viper.GetString("db.host"),
			Port:            viper.GetInt("db.port"),
			User:            viper.GetString("db.user"),
			Password:        viper.GetString("db.password"),
			DBName:          viper.GetString("db.name"),
			Path:            viper.GetString("db.path"),
			MaxOpenConns:    viper.GetInt("db.max_open_conns"),
			MaxIdleConns:    viper.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: viper.GetDuration("db.conn_max_lifetime"),
			CreateDatabase:  viper.GetBool("db.create_database"),
		},
		Server: ServerConfig{
			Port:            viper.GetInt("server.port"),
			ReadTimeout:     viper.GetDuration("server.read_timeout"),
			WriteTimeout:    viper.GetDuration("server.write_timeout"),
			IdleTimeout:     viper.GetDuration("server.idle_timeout"),
			ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
			AllowOrigins:    viper.GetString("server.allow_origins"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			QuestionSetTTL: viper.GetString("cache.question_set_ttl"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Importer: ImporterConfig{
			RootDir:       viper.GetString("importer.root_dir"),
			DivisionIndex: viper.GetInt("importer.division_index"),
			GroupIndex:    viper.GetInt("importer.group_index"),
			SubjectIndex:  viper.GetInt("importer.subject_index"),
			MinComponents: viper.GetInt("importer.min_components"),
			Migrate:       viper.GetBool("importer.migrate"),
			FlushCache:    viper.GetBool("importer.flush_cache"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot start with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverMySQL:
		if c.DB.Host == "" || c.DB.DBName == "" {
			return fmt.Errorf("db.host and db.name are required for driver %q", c.DB.Driver)
		}
	case DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("db.path is required for driver %q", c.DB.Driver)
		}
	default:
		return fmt.Errorf("unsupported db.driver %q (expected %q or %q)", c.DB.Driver, DriverMySQL, DriverSQLite)
	}

	imp := c.Importer
	if imp.DivisionIndex < 0 || imp.GroupIndex < 0 || imp.SubjectIndex < 0 {
		return fmt.Errorf("importer path indexes must be non-negative")
	}
	if imp.MinComponents <= imp.DivisionIndex || imp.MinComponents <= imp.GroupIndex {
		return fmt.Errorf("importer.min_components (%d) must exceed the division and group indexes", imp.MinComponents)
	}
	return nil
}

// ServerDSN is DSN without a database name, for statements that run before
// the database exists.
func (d DBConfig) ServerDSN() string {
	d.DBName = ""
	return d.DSN()
}

// DSN renders the driver-specific connection string.
func (d DBConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", d.Path)
	}
	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	mc.DBName = d.DBName
	mc.ParseTime = true
	mc.MultiStatements = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// ParseTTLStringOrDefault parses a duration string, falling back to def when
// the value is empty or malformed.
func (c *Config) ParseTTLStringOrDefault(ttlString string, def time.Duration) time.Duration {
	if ttlString == "" {
		return def
	}
	d, err := time.ParseDuration(ttlString)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
