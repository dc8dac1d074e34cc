package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OptionsFile is the on-disk shape of a ranking options file.
// Absent fields keep their defaults.
type OptionsFile struct {
	Version        string `json:"version" yaml:"version"`
	Normalize      *bool  `json:"normalize" yaml:"normalize"`
	StopWords      *bool  `json:"stop_words" yaml:"stop_words"`
	MinTokenLength *int   `json:"min_token_length" yaml:"min_token_length"`
}

// LoadOptions reads ranking options from a JSON or YAML file (chosen by
// extension; .yaml and .yml are YAML, anything else JSON).
// An empty path returns the defaults. On error the defaults are returned
// together with the error.
func LoadOptions(filePath string) (Options, error) {
	return LoadOptionsOver(DefaultOptions(), filePath)
}

// LoadOptionsOver is LoadOptions with the file applied on top of base
// instead of the defaults. On error base is returned with the error.
func LoadOptionsOver(base Options, filePath string) (Options, error) {
	if filePath == "" {
		return base, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read ranking options file, keeping current options",
			"path", filePath,
			"error", err)
		return base, fmt.Errorf("failed to read ranking options file: %w", err)
	}

	var file OptionsFile
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		slog.Warn("failed to parse ranking options file, keeping current options",
			"path", filePath,
			"error", err)
		return base, fmt.Errorf("failed to parse ranking options file: %w", err)
	}

	merged := MergeOptions(base, file)
	logOptionOverrides(base, merged)
	return merged, nil
}

// MergeOptions applies the fields set in override on top of base.
func MergeOptions(base Options, override OptionsFile) Options {
	result := base
	if override.Normalize != nil {
		result.Normalize = *override.Normalize
	}
	if override.StopWords != nil {
		result.StopWords = *override.StopWords
	}
	if override.MinTokenLength != nil && *override.MinTokenLength > 0 {
		result.MinTokenLength = *override.MinTokenLength
	}
	return result
}

func logOptionOverrides(defaults, loaded Options) {
	var overrides []string
	if loaded.Normalize != defaults.Normalize {
		overrides = append(overrides, fmt.Sprintf("normalize: %t -> %t", defaults.Normalize, loaded.Normalize))
	}
	if loaded.StopWords != defaults.StopWords {
		overrides = append(overrides, fmt.Sprintf("stop_words: %t -> %t", defaults.StopWords, loaded.StopWords))
	}
	if loaded.MinTokenLength != defaults.MinTokenLength {
		overrides = append(overrides, fmt.Sprintf("min_token_length: %d -> %d", defaults.MinTokenLength, loaded.MinTokenLength))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking options with overrides", "overrides", overrides)
	} else {
		slog.Info("loaded ranking options (using all defaults)")
	}
}
