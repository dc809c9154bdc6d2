package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LastOptions are the most recently used generation options, persisted so
// the web UI can pre-fill the form on the next visit.
type LastOptions struct {
	Source        string    `json:"source"`
	Output        string    `json:"output"`
	ImagesPerPage int       `json:"images_per_page"`
	IncludeMaps   bool      `json:"include_maps"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SettingsManager reads and writes user settings under ~/.appendix.
type SettingsManager struct {
	dir string
}

func NewSettingsManager() (*SettingsManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".appendix")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	return &SettingsManager{dir: dir}, nil
}

func (m *SettingsManager) settingsPath() string {
	return filepath.Join(m.dir, "settings.json")
}

// LoadLastOptions returns the saved options, or defaults when none exist.
func (m *SettingsManager) LoadLastOptions() (*LastOptions, error) {
	data, err := os.ReadFile(m.settingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &LastOptions{
				Output:        cfg.Output,
				ImagesPerPage: cfg.ImagesPerPage,
			}, nil
		}
		return nil, err
	}

	var opts LastOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return &opts, nil
}

// SaveLastOptions writes the options atomically (temp file + rename).
func (m *SettingsManager) SaveLastOptions(opts *LastOptions) error {
	switch opts.ImagesPerPage {
	case 1, 2, 4:
	default:
		return &ValidationError{Field: "images_per_page", Message: "images per page must be 1, 2 or 4"}
	}

	opts.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := m.settingsPath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, m.settingsPath())
}
