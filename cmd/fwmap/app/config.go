package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/fwmap/pkg/constants"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "FWMAP"

// Config holds settings from flags, environment, .env files and the
// config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	ConfigFile string

	// Catalog
	DataDir         string
	FirmwareDir     string
	ReleaseRepo     string
	ReleaseHost     string
	APIBase         string
	GitHubToken     string
	CrawlBaseURL    string
	CheckpointEvery int

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig reads configuration in order of precedence:
//  1. Command-line flags (applied later by cobra)
//  2. Environment variables (FWMAP_*, plus GITHUB_TOKEN)
//  3. .env and .env.local
//  4. Config file (.fwmap.yaml in $HOME or the working directory)
//  5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), "")
}

func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	loadEnvFiles()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github_token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("log_level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_format", EnvPrefix+"_LOG_FORMAT", "LOG_FORMAT")
	_ = v.BindEnv("log_output", EnvPrefix+"_LOG_OUTPUT", "LOG_OUTPUT")

	v.SetDefault("data_dir", ".")
	v.SetDefault("firmware_dir", "firmwares")
	v.SetDefault("checkpoint_every", constants.DefaultCheckpointEvery)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".fwmap")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && configFile != "" {
			return nil, err
		}
	}

	return &Config{
		Verbose:         v.GetBool("verbose"),
		Quiet:           v.GetBool("quiet"),
		NoColor:         v.GetBool("no_color"),
		Format:          v.GetString("format"),
		ConfigFile:      v.ConfigFileUsed(),
		DataDir:         v.GetString("data_dir"),
		FirmwareDir:     v.GetString("firmware_dir"),
		ReleaseRepo:     v.GetString("release_repo"),
		ReleaseHost:     v.GetString("release_host"),
		APIBase:         v.GetString("api_base"),
		GitHubToken:     v.GetString("github_token"),
		CrawlBaseURL:    v.GetString("crawl_base_url"),
		CheckpointEvery: v.GetInt("checkpoint_every"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		LogOutput:       v.GetString("log_output"),
	}, nil
}

// UpdateFromFlags applies parsed persistent flags. Flags always win.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env then .env.local. Variables already set in the
// environment are not overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
