// ABOUTME: Configuration management for sophos-report.
// ABOUTME: Loads settings from YAML, credentials from the environment or .env, and runs interactive setup.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	envClientID     = "SOPHOS_CLIENT_ID"
	envClientSecret = "SOPHOS_CLIENT_SECRET"
)

// ErrMissingCredentials means the client id or secret is not set.
var ErrMissingCredentials = errors.New("missing API credentials: set " + envClientID + " and " + envClientSecret)

type Config struct {
	AuthURL           string  `yaml:"auth_url"`
	APIBase           string  `yaml:"api_base"`
	OutputDir         string  `yaml:"output_dir"`
	PageSize          int     `yaml:"page_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

func defaultConfig() *Config {
	return &Config{
		AuthURL:           "https://id.sophos.com/api/v2/oauth2/token",
		APIBase:           "https://api.central.sophos.com",
		OutputDir:         "output",
		PageSize:          100,
		RequestsPerSecond: 10,
		TimeoutSeconds:    30,
	}
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sophos-report", "config.yaml"), nil
}

// loadConfig reads the settings file at path, or the default location when
// path is empty. A missing file yields the defaults. A negative
// requests_per_second turns request pacing off.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := configPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	def := defaultConfig()
	if cfg.AuthURL == "" {
		cfg.AuthURL = def.AuthURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = def.APIBase
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}

	return cfg, nil
}

func saveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// loadCredentials applies envFile, if it exists, without overriding
// variables already set, then reads the client id and secret.
func loadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	creds := Credentials{
		ClientID:     strings.TrimSpace(os.Getenv(envClientID)),
		ClientSecret: strings.TrimSpace(os.Getenv(envClientSecret)),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}

// runSetup asks for API credentials, checks them against Sophos Central,
// and stores them in envFile. A settings file with defaults is written too
// if there is none at cfgPath.
func runSetup(ctx context.Context, cfg *Config, cfgPath, envFile string, in io.Reader, out io.Writer, log *zap.Logger) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "Create API credentials in Sophos Central Partner > Settings > API Credentials Management.")
	fmt.Fprintln(out)

	fmt.Fprint(out, "Client ID: ")
	clientID, err := reader.ReadString('\n')
	if err != nil && clientID == "" {
		return err
	}
	clientID = strings.TrimSpace(clientID)

	fmt.Fprint(out, "Client Secret: ")
	secret, err := reader.ReadString('\n')
	if err != nil && secret == "" {
		return err
	}
	secret = strings.TrimSpace(secret)

	if clientID == "" || secret == "" {
		return ErrMissingCredentials
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, "Testing connection... ")

	client := NewSophosClient(cfg, Credentials{ClientID: clientID, ClientSecret: secret}, log)
	sess, err := client.Authenticate(ctx)
	if err != nil {
		fmt.Fprintln(out, "failed!")
		return fmt.Errorf("could not connect to Sophos Central: %w", err)
	}
	fmt.Fprintf(out, "authenticated as partner %s\n", sess.PartnerID())

	env := map[string]string{}
	if existing, err := godotenv.Read(envFile); err == nil {
		env = existing
	}
	env[envClientID] = clientID
	env[envClientSecret] = secret

	if err := godotenv.Write(env, envFile); err != nil {
		return fmt.Errorf("could not save credentials: %w", err)
	}
	if err := os.Chmod(envFile, 0600); err != nil {
		return fmt.Errorf("could not restrict %s: %w", envFile, err)
	}
	fmt.Fprintf(out, "\nCredentials saved to %s\n", envFile)

	if cfgPath == "" {
		if cfgPath, err = configPath(); err != nil {
			return fmt.Errorf("could not determine config path: %w", err)
		}
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := saveConfig(cfgPath, cfg); err != nil {
			return fmt.Errorf("could not save config: %w", err)
		}
		fmt.Fprintf(out, "Settings saved to %s\n", cfgPath)
	}

	return nil
}
