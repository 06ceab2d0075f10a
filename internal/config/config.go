// Package config loads layered application configuration for the repojson CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/deeplifeai/repojson/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Snapshot SnapshotConfiguration `mapstructure:"snapshot"`
	KeyCheck KeyCheckConfiguration `mapstructure:"keycheck"`
}

// SnapshotConfiguration defines defaults for the snapshot command.
type SnapshotConfiguration struct {
	Exclude   ExclusionConfiguration `mapstructure:"exclude"`
	Tokens    TokenConfiguration     `mapstructure:"tokens"`
	Clipboard *bool                  `mapstructure:"clipboard"`
}

// ExclusionConfiguration overrides the built-in exclusion rule sets. A
// non-empty list replaces the corresponding default set.
type ExclusionConfiguration struct {
	Directories []string `mapstructure:"directories"`
	Files       []string `mapstructure:"files"`
	Extensions  []string `mapstructure:"extensions"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// KeyCheckConfiguration defines defaults for the keycheck command.
type KeyCheckConfiguration struct {
	TimeoutSeconds *int `mapstructure:"timeout_seconds"`
}

// LoadApplicationConfiguration loads configuration from global and local
// files. The global file lives under the user's home directory; the local
// file is either the explicit path from LoadOptions or the default file name
// in the working directory. Missing files are not errors; local settings
// override global ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfiguration, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(localConfiguration)
	}

	merged.Snapshot.Exclude.Directories = utils.DeduplicatePatterns(merged.Snapshot.Exclude.Directories)
	merged.Snapshot.Exclude.Files = utils.DeduplicatePatterns(merged.Snapshot.Exclude.Files)
	merged.Snapshot.Exclude.Extensions = utils.DeduplicatePatterns(merged.Snapshot.Exclude.Extensions)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	pathInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if pathInformation.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Snapshot = result.Snapshot.merge(override.Snapshot)
	result.KeyCheck = result.KeyCheck.merge(override.KeyCheck)
	return result
}

func (configuration SnapshotConfiguration) merge(override SnapshotConfiguration) SnapshotConfiguration {
	result := configuration
	result.Exclude = result.Exclude.merge(override.Exclude)
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (configuration ExclusionConfiguration) merge(override ExclusionConfiguration) ExclusionConfiguration {
	result := configuration
	if len(override.Directories) > 0 {
		result.Directories = append([]string{}, utils.DeduplicatePatterns(override.Directories)...)
	}
	if len(override.Files) > 0 {
		result.Files = append([]string{}, utils.DeduplicatePatterns(override.Files)...)
	}
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string{}, utils.DeduplicatePatterns(override.Extensions)...)
	}
	return result
}

func (configuration TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := configuration
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (configuration KeyCheckConfiguration) merge(override KeyCheckConfiguration) KeyCheckConfiguration {
	result := configuration
	if override.TimeoutSeconds != nil {
		result.TimeoutSeconds = cloneInt(override.TimeoutSeconds)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
