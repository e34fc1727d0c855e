package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the file vault passphrase is prompted at runtime and stored in memory - use GetVaultPasswordBytes()
type Config struct {
	Port             string `envconfig:"PORT" default:"8080"`
	DataDir          string `envconfig:"KEYSTORE_DATA_DIR" default:"./data"`
	StorageBackend   string `envconfig:"STORAGE_BACKEND" default:"bolt"`
	DatabaseDSN      string `envconfig:"DATABASE_DSN"`
	VaultBackend     string `envconfig:"VAULT_BACKEND" default:"file"`
	VaultServiceName string `envconfig:"VAULT_SERVICE_NAME" default:"ether-keystore"`
	ScryptN          int    `envconfig:"SCRYPT_N" default:"262144"`
	ScryptP          int    `envconfig:"SCRYPT_P" default:"1"`
	Workers          int    `envconfig:"WORKERS" default:"4"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case "bolt", "memory":
	case "postgres":
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q: use bolt, postgres or memory", c.StorageBackend)
	}
	// scrypt needs N to be a power of two greater than 1
	if c.ScryptN < 2 || c.ScryptN&(c.ScryptN-1) != 0 {
		return fmt.Errorf("SCRYPT_N must be a power of two, got %d", c.ScryptN)
	}
	if c.ScryptP < 1 {
		return fmt.Errorf("SCRYPT_P must be positive, got %d", c.ScryptP)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetDataDir returns the directory holding the bolt database and the file vault
func GetDataDir() string {
	return Get().DataDir
}

// GetStorageBackend returns bolt, postgres or memory
func GetStorageBackend() string {
	return Get().StorageBackend
}

// GetDatabaseDSN returns the postgres connection string
func GetDatabaseDSN() string {
	return Get().DatabaseDSN
}

// GetVaultBackend returns the keyring backend name
func GetVaultBackend() string {
	return Get().VaultBackend
}

// GetVaultServiceName returns the keyring service name
func GetVaultServiceName() string {
	return Get().VaultServiceName
}

// GetScryptN returns the scrypt N cost for new keys
func GetScryptN() int {
	return Get().ScryptN
}

// GetScryptP returns the scrypt p cost for new keys
func GetScryptP() int {
	return Get().ScryptP
}

// GetWorkers returns the size of the worker pool
func GetWorkers() int {
	return Get().Workers
}

// GetLogLevel returns the zap log level name
func GetLogLevel() string {
	return Get().LogLevel
}

var passwordBytes []byte

// PromptForPassword prompts the user for the file vault passphrase in the terminal.
// The passphrase is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := ReadPassword("Enter vault passphrase: ")
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errors.New("passphrase cannot be empty")
	}

	passwordBytes = make([]byte, len(raw))
	copy(passwordBytes, raw)
	clear(raw)
	return nil
}

// GetVaultPasswordBytes returns the passphrase stored in memory (from PromptForPassword).
// Returns an error if the passphrase was not set.
// Caller must zero the returned slice after use for security.
func GetVaultPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("vault passphrase not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}

// ReadPassword prints prompt to stderr and reads a line from the terminal without echo.
// Caller must zero the returned slice after use.
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return raw, nil
}
