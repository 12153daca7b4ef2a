// Package config loads connection settings from the YAML config file and
// watches it for changes.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/aside/assets"
	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

// FileLoader loads YAML settings from ~/.aside/config.yaml (overridable via
// ASIDE_CONFIG). Every Load returns a fresh immutable snapshot: updates fully
// replace the previous snapshot, there is no field-wise merging.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// fileSettings mirrors the YAML document. Booleans are pointers so "key
// absent" and "key explicitly false" hydrate differently; both panel toggles
// default to true.
type fileSettings struct {
	CloudEnvironment        string   `yaml:"cloud_environment"`
	VaultName               string   `yaml:"vault_name"`
	SelectedInsideCodeblock *bool    `yaml:"selected_inside_codeblock"`
	PasteOnClick            *bool    `yaml:"paste_on_click"`
	Model                   string   `yaml:"model"`
	MaxTokens               int      `yaml:"max_tokens"`
	Temperature             *float32 `yaml:"temperature"`
}

// Load implements ports.SettingsProvider.
func (l *FileLoader) Load(context.Context) (domain.ConnectionSettings, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.ConnectionSettings{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, 0o600); err != nil {
				return domain.ConnectionSettings{}, err
			}
			data = assets.DefaultConfigYAML
		} else {
			return domain.ConnectionSettings{}, err
		}
	}

	var raw fileSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.ConnectionSettings{}, err
	}

	return hydrate(raw), nil
}

// Path returns the effective config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("ASIDE_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".aside", "config.yaml")
}

func hydrate(raw fileSettings) domain.ConnectionSettings {
	settings := domain.ConnectionSettings{
		CloudEnvironment:        domain.CloudEnvironment(raw.CloudEnvironment),
		VaultName:               raw.VaultName,
		SelectedInsideCodeblock: true,
		PasteOnClick:            true,
		Model:                   raw.Model,
		MaxTokens:               raw.MaxTokens,
	}
	if raw.CloudEnvironment == "" {
		settings.CloudEnvironment = domain.CloudCommercial
	}
	if raw.SelectedInsideCodeblock != nil {
		settings.SelectedInsideCodeblock = *raw.SelectedInsideCodeblock
	}
	if raw.PasteOnClick != nil {
		settings.PasteOnClick = *raw.PasteOnClick
	}
	if settings.Model == "" {
		settings.Model = domain.DefaultModel
	}
	// Out-of-range generation knobs hydrate like absent ones: a snapshot that
	// leaves Load never carries values the remote API would reject.
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = domain.DefaultMaxTokens
	}
	if raw.Temperature != nil {
		settings.Temperature = *raw.Temperature
	} else {
		settings.Temperature = domain.DefaultTemperature
	}
	if settings.Temperature < 0 || settings.Temperature > 1 {
		settings.Temperature = domain.DefaultTemperature
	}
	if vault := os.Getenv("ASIDE_VAULT_NAME"); vault != "" {
		settings.VaultName = vault
	}
	return settings
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.SettingsProvider = (*FileLoader)(nil)
