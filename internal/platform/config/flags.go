package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// FeatureFlags is the set of enabled toggles. Unknown names are off.
type FeatureFlags map[string]bool

func (f FeatureFlags) Enabled(name string) bool { return f[name] }

type flagsFile struct {
	Flags map[string]bool `yaml:"flags"`
}

// LoadFlags reads a YAML file of the form
//
//	flags:
//	  keep_members_in_slack_and_email: true
//
// An empty path or a missing file yields all flags off.
func LoadFlags(path string) (FeatureFlags, error) {
	flags := FeatureFlags{}
	if path == "" {
		return flags, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return flags, nil
		}
		return nil, fmt.Errorf("FEATURE_FLAGS_FILE: %w", err)
	}
	return ParseFlags(b)
}

// ParseFlags decodes the YAML flags document.
func ParseFlags(b []byte) (FeatureFlags, error) {
	var f flagsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("FEATURE_FLAGS_FILE must be YAML with a top-level flags map: %w", err)
	}
	flags := FeatureFlags{}
	for k, v := range f.Flags {
		flags[k] = v
	}
	return flags, nil
}
