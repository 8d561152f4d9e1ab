package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	envConfigDir   = "LITBOT_CONFIG_DIR"
	configFileName = "credentials.yaml"
)

// SavedLogin is what `litbot auth login` writes to disk.
type SavedLogin struct {
	APIToken string `yaml:"api_token"`
	APIURL   string `yaml:"api_url"`
}

// ConfigPath is $LITBOT_CONFIG_DIR/credentials.yaml, falling back to the
// user config directory.
func ConfigPath() (string, error) {
	dir := os.Getenv(envConfigDir)
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate user config directory: %w", err)
		}
		dir = filepath.Join(base, "litbot")
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadLogin returns nil without error when nobody has logged in.
func LoadLogin() (*SavedLogin, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var login SavedLogin
	if err := yaml.Unmarshal(data, &login); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &login, nil
}

// SaveLogin writes the credentials file readable by the owner only.
func SaveLogin(login SavedLogin) (string, error) {
	if login.APIToken == "" {
		return "", fmt.Errorf("refusing to save an empty token")
	}
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(login)
	if err != nil {
		return "", fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// ForgetLogin removes saved credentials; a missing file is not an error.
func ForgetLogin() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// CredentialSource names where the active token came from.
type CredentialSource string

const (
	SourceFlag  CredentialSource = "flag"
	SourceEnv   CredentialSource = "env"
	SourceSaved CredentialSource = "saved"
	SourceNone  CredentialSource = "none"
)

// Credentials are the token and URL a command will use.
type Credentials struct {
	Source CredentialSource `json:"source"`
	Token  string           `json:"-"`
	URL    string           `json:"api_url"`
}

// ResolveCredentials picks each of token and URL from the first of: flag,
// environment, saved login. The URL then defaults to localhost.
func ResolveCredentials(flagToken, flagURL string) (Credentials, error) {
	creds := Credentials{Source: SourceNone, Token: flagToken, URL: flagURL}
	if creds.Token != "" {
		creds.Source = SourceFlag
	} else if creds.Token = os.Getenv(envAPIToken); creds.Token != "" {
		creds.Source = SourceEnv
	}
	if creds.URL == "" {
		creds.URL = os.Getenv(envAPIURL)
	}

	if creds.Token == "" || creds.URL == "" {
		saved, err := LoadLogin()
		if err != nil {
			return Credentials{}, err
		}
		if saved != nil {
			if creds.Token == "" && saved.APIToken != "" {
				creds.Token = saved.APIToken
				creds.Source = SourceSaved
			}
			if creds.URL == "" {
				creds.URL = saved.APIURL
			}
		}
	}

	if creds.URL == "" {
		creds.URL = defaultAPIURL
	}
	return creds, nil
}
