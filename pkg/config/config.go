package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/webbreaker/webinspect/pkg/fs"
	"github.com/webbreaker/webinspect/pkg/logger"
	"github.com/webbreaker/webinspect/pkg/webinspect"
)

type (
	// Config holds the options for the webinspect command line tool. The
	// client library itself only takes a webinspect.Config.
	Config struct {
		Logger    Logger    `toml:"logger"`
		Server    Server    `toml:"server"`
		Formatter Formatter `toml:"formatter"`
		Listen    Listen    `toml:"listen"`
	}

	// Logger provides general logging config
	Logger struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	}

	// Server describes the WebInspect instance to talk to
	Server struct {
		Host      string `toml:"host"`
		Username  string `toml:"username"`
		Password  string `toml:"password"`
		CertFile  string `toml:"cert_file"`
		KeyFile   string `toml:"key_file"`
		VerifySSL bool   `toml:"verify_ssl"`
		// Timeout is in seconds, zero means no timeout
		Timeout   int    `toml:"timeout"`
		UserAgent string `toml:"user_agent"`
	}

	// Formatter sets how responses are printed
	Formatter struct {
		Format string `toml:"format"`
	}

	// Listen configures the listen command
	Listen struct {
		Workers   int `toml:"workers"`
		QueueSize int `toml:"queue_size"`
		// RateLimit caps the requests per second sent to the server, zero
		// means no limit
		RateLimit float64 `toml:"rate_limit"`
	}
)

// localConfigDir is a var so tests can point it somewhere else
var localConfigDir = filepath.Join(xdg.ConfigHome, "webinspect")

const systemConfigPath = "/etc/webinspect/config.toml"

// DefaultConfig provides a fully usable instance of Config with default
// values provided
func DefaultConfig() *Config {
	return &Config{
		Logger: Logger{
			Level:  "INFO",
			Format: "HUMAN",
		},
		Server: Server{
			VerifySSL: true,
		},
		Formatter: Formatter{
			Format: "JSON",
		},
		Listen: Listen{
			Workers:   1,
			QueueSize: 1024,
		},
	}
}

// ClientConfig turns the server section into the config used to build a
// webinspect.Client
func (s Server) ClientConfig() webinspect.Config {
	return webinspect.Config{
		Host:               s.Host,
		Username:           s.Username,
		Password:           s.Password,
		CertFile:           s.CertFile,
		KeyFile:            s.KeyFile,
		InsecureSkipVerify: !s.VerifySSL,
		Timeout:            time.Duration(s.Timeout) * time.Second,
		UserAgent:          s.UserAgent,
	}
}

// applyEnv lets the environment override the server settings
func (c *Config) applyEnv() {
	if host := os.Getenv("WEBINSPECT_HOST"); len(host) > 0 {
		c.Server.Host = host
	}

	if username := os.Getenv("WEBINSPECT_USERNAME"); len(username) > 0 {
		c.Server.Username = username
	}

	if password := os.Getenv("WEBINSPECT_PASSWORD"); len(password) > 0 {
		c.Server.Password = password
	}
}

// apply pushes the logger settings into the logger
func (c *Config) apply() error {
	if err := logger.SetLoggerLevel(c.Logger.Level); err != nil {
		return err
	}

	format, err := logger.ParseLoggerFormat(c.Logger.Format)
	if err != nil {
		return err
	}

	return logger.SetLoggerFormat(format)
}

// LoadConfigFromFile provides a config object with default values set plus any
// custom values pulled in from the config file
func LoadConfigFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	_, err := toml.DecodeFile(filepath.Clean(path), config)

	if err != nil {
		return nil, err
	}

	config.applyEnv()

	if err := config.apply(); err != nil {
		return nil, err
	}

	return config, nil
}

// LocateAndLoadConfig looks through the possible places for the config
// favoring the provided path if it is set
func LocateAndLoadConfig(path string) (*Config, error) {
	if len(path) > 0 {
		return LoadConfigFromFile(path)
	}

	if path = os.Getenv("WEBINSPECT_CONFIG"); len(path) > 0 {
		return LoadConfigFromFile(path)
	}

	path = filepath.Join(localConfigDir, "config.toml")
	if fs.FileExists(path) {
		return LoadConfigFromFile(path)
	}

	if fs.FileExists(systemConfigPath) {
		return LoadConfigFromFile(systemConfigPath)
	}

	config := DefaultConfig()
	config.applyEnv()

	return config, config.apply()
}
