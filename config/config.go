// Package config loads service settings from an optional YAML file, a .env file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	PriceSourceLive = "live"
	PriceSourceMock = "mock"

	StorageMongo  = "mongo"
	StorageWAL    = "wal"
	StorageSQLite = "sqlite"
)

const (
	defaultHTTPAddr    = ":8001"
	defaultLLMURL      = "https://api.openai.com/v1"
	defaultLLMModel    = "gpt-4o"
	defaultLLMTimeout  = 60 * time.Second
	defaultCMCURL      = "https://pro-api.coinmarketcap.com/v1"
	defaultCMCTimeout  = 30 * time.Second
	defaultMongoURL    = "mongodb://localhost:27017"
	defaultDBName      = "cryptoadvisor"
	defaultWALDir      = "./wal/recommendations"
	defaultSQLitePath  = "./cryptoadvisor.db"
	defaultWorkers     = 1
	defaultLogLevel    = "info"
	defaultCORSOrigins = "*"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	PriceSource string
	CMC         CoinMarketCapConfig
	LLM         LLMConfig
	Storage     StorageConfig

	AnalysisSchedule string
	AnalysisWorkers  int

	LogLevel string
	LogFile  string
}

type CoinMarketCapConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type LLMConfig struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type StorageConfig struct {
	Driver     string
	MongoURL   string
	DBName     string
	WALDir     string
	SQLitePath string
}

// ConfigTmp raw YAML layout, zero values keep the defaults.
type ConfigTmp struct {
	HTTP struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"http"`
	PriceSource struct {
		Mode             string        `yaml:"mode"`
		CoinMarketCapURL string        `yaml:"coinmarketcap_url"`
		CoinMarketCapKey string        `yaml:"coinmarketcap_api_key"`
		Timeout          time.Duration `yaml:"timeout"`
	} `yaml:"price_source"`
	LLM struct {
		APIURL  string        `yaml:"api_url"`
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	Storage struct {
		Driver     string `yaml:"driver"`
		MongoURL   string `yaml:"mongo_url"`
		DBName     string `yaml:"db_name"`
		WALDir     string `yaml:"wal_dir"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Analysis struct {
		Schedule string `yaml:"schedule"`
		Workers  int    `yaml:"workers"`
	} `yaml:"analysis"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		HTTPAddr:    defaultHTTPAddr,
		CORSOrigins: splitList(defaultCORSOrigins),
		PriceSource: PriceSourceLive,
		CMC: CoinMarketCapConfig{
			URL:     defaultCMCURL,
			Timeout: defaultCMCTimeout,
		},
		LLM: LLMConfig{
			APIURL:  defaultLLMURL,
			Model:   defaultLLMModel,
			Timeout: defaultLLMTimeout,
		},
		Storage: StorageConfig{
			Driver:     StorageMongo,
			MongoURL:   defaultMongoURL,
			DBName:     defaultDBName,
			WALDir:     defaultWALDir,
			SQLitePath: defaultSQLitePath,
		},
		AnalysisWorkers: defaultWorkers,
		LogLevel:        defaultLogLevel,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (optional),
// then variables from .env, then the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyYaml(path); err != nil {
			return Config{}, err
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return Config{}, errors.Wrap(err, "failed to load .env")
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyYaml(path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config %s", path)
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return errors.Wrapf(err, "failed to parse config %s", path)
	}

	setString(&c.HTTPAddr, tmp.HTTP.Addr)
	if len(tmp.HTTP.CORSOrigins) > 0 {
		c.CORSOrigins = tmp.HTTP.CORSOrigins
	}

	setString(&c.PriceSource, tmp.PriceSource.Mode)
	setString(&c.CMC.URL, tmp.PriceSource.CoinMarketCapURL)
	setString(&c.CMC.APIKey, tmp.PriceSource.CoinMarketCapKey)
	if tmp.PriceSource.Timeout > 0 {
		c.CMC.Timeout = tmp.PriceSource.Timeout
	}

	setString(&c.LLM.APIURL, tmp.LLM.APIURL)
	setString(&c.LLM.APIKey, tmp.LLM.APIKey)
	setString(&c.LLM.Model, tmp.LLM.Model)
	if tmp.LLM.Timeout > 0 {
		c.LLM.Timeout = tmp.LLM.Timeout
	}

	setString(&c.Storage.Driver, tmp.Storage.Driver)
	setString(&c.Storage.MongoURL, tmp.Storage.MongoURL)
	setString(&c.Storage.DBName, tmp.Storage.DBName)
	setString(&c.Storage.WALDir, tmp.Storage.WALDir)
	setString(&c.Storage.SQLitePath, tmp.Storage.SQLitePath)

	setString(&c.AnalysisSchedule, tmp.Analysis.Schedule)
	if tmp.Analysis.Workers != 0 {
		c.AnalysisWorkers = tmp.Analysis.Workers
	}

	setString(&c.LogLevel, tmp.Log.Level)
	setString(&c.LogFile, tmp.Log.File)

	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString(&c.Storage.MongoURL, getenv("MONGO_URL"))
	setString(&c.Storage.DBName, getenv("DB_NAME"))
	setString(&c.Storage.Driver, getenv("STORAGE_DRIVER"))
	setString(&c.CMC.APIKey, getenv("COINMARKETCAP_API_KEY"))
	setString(&c.LLM.APIKey, getenv("OPENAI_API_KEY"))
	setString(&c.LLM.APIURL, getenv("LLM_API_URL"))
	setString(&c.LLM.Model, getenv("LLM_MODEL"))
	setString(&c.PriceSource, getenv("PRICE_SOURCE"))
	setString(&c.HTTPAddr, getenv("HTTP_ADDR"))
	setString(&c.AnalysisSchedule, getenv("ANALYSIS_SCHEDULE"))
	setString(&c.LogLevel, getenv("LOG_LEVEL"))
	setString(&c.LogFile, getenv("LOG_FILE"))

	if origins := getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}

	if workers := getenv("ANALYSIS_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("incorrect ANALYSIS_WORKERS value %q (must be an integer), error: %w", workers, err)
		}
		c.AnalysisWorkers = n
	}

	return nil
}

// Validate rejects unknown modes and non-positive worker counts.
func (c Config) Validate() error {
	switch c.PriceSource {
	case PriceSourceLive, PriceSourceMock:
	default:
		return fmt.Errorf("unknown price source %q, expected %s or %s", c.PriceSource, PriceSourceLive, PriceSourceMock)
	}

	switch c.Storage.Driver {
	case StorageMongo:
		if c.Storage.MongoURL == "" || c.Storage.DBName == "" {
			return errors.New("mongo storage requires MONGO_URL and DB_NAME")
		}
	case StorageWAL:
		if c.Storage.WALDir == "" {
			return errors.New("wal storage requires a directory")
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite storage requires a file path")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.AnalysisWorkers <= 0 {
		return fmt.Errorf("analysis workers must be positive, got %d", c.AnalysisWorkers)
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return nil
}

// AllowsAnyOrigin reports whether CORS is open to every origin.
func (c Config) AllowsAnyOrigin() bool {
	for _, o := range c.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
