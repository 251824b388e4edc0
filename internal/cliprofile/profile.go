// Package cliprofile persists the fabriq CLI's connection settings
// between invocations as one YAML file under the user's home
// directory.
package cliprofile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is the CLI's saved connection state.
type Profile struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
}

// Dir returns the directory profile.yaml lives in, creating it if
// necessary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cliprofile: resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".fabriq")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("cliprofile: create %s: %w", dir, err)
	}
	return dir, nil
}

func path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.yaml"), nil
}

// Load reads the saved profile. A missing file is not an error; it
// returns a zero Profile so callers can fall back to flags or defaults.
func Load() (Profile, error) {
	p, err := path()
	if err != nil {
		return Profile{}, err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, nil
		}
		return Profile{}, fmt.Errorf("cliprofile: read %s: %w", p, err)
	}
	var prof Profile
	if err := yaml.Unmarshal(raw, &prof); err != nil {
		return Profile{}, fmt.Errorf("cliprofile: parse %s: %w", p, err)
	}
	return prof, nil
}

// Save writes prof to disk, overwriting any existing profile.
func Save(prof Profile) error {
	p, err := path()
	if err != nil {
		return err
	}
	raw, err := yaml.Marshal(prof)
	if err != nil {
		return fmt.Errorf("cliprofile: marshal profile: %w", err)
	}
	if err := os.WriteFile(p, raw, 0o600); err != nil {
		return fmt.Errorf("cliprofile: write %s: %w", p, err)
	}
	return nil
}
