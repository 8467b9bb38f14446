package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is a named set of connection defaults stored in profiles.yaml.
type Profile struct {
	Server   string `yaml:"server"`
	CACert   string `yaml:"ca_cert"`
	Insecure bool   `yaml:"insecure"`
	Comment  string `yaml:"comment"`
}

// ProfilesPath returns the profiles file location: CATCTL_PROFILES if set,
// otherwise <user config dir>/catctl/profiles.yaml.
func ProfilesPath() (string, error) {
	if p := os.Getenv("CATCTL_PROFILES"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "catctl", "profiles.yaml"), nil
}

// LoadProfiles reads and parses the profiles file at path.
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	profiles := make(map[string]Profile)
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles file %s: %w", path, err)
	}
	return profiles, nil
}

func lookupProfile(name string) (Profile, error) {
	path, err := ProfilesPath()
	if err != nil {
		return Profile{}, fmt.Errorf("locate profiles file: %w", err)
	}
	profiles, err := LoadProfiles(path)
	if err != nil {
		return Profile{}, err
	}
	profile, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found in %s", name, path)
	}
	return profile, nil
}
