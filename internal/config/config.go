package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default values applied when a key is absent from the configuration file.
// Defaults enable every analyzer and every report format.
const (
	// DefaultGeminiCommand is the AI reviewer CLI invoked per guide
	DefaultGeminiCommand = "gemini"

	// DefaultGuidesDir is where review guide files are looked up
	DefaultGuidesDir = "qa/guides"

	// DefaultToolTimeoutSeconds bounds a single external tool invocation
	DefaultToolTimeoutSeconds = 300

	// DefaultAITimeoutSeconds bounds a single AI guide review
	DefaultAITimeoutSeconds = 600

	// DefaultMaxConcurrency is the analyzer fan-out limit in parallel mode
	DefaultMaxConcurrency = 4
)

// Config is the immutable snapshot of all recognized options. It is built
// once per run from a file plus built-in defaults and never mutated after
// construction. Unknown keys in the file are ignored.
type Config struct {
	// IgnoreFailures downgrades an overall fail to warning
	IgnoreFailures bool `json:"ignoreFailures" mapstructure:"ignorefailures" yaml:"ignoreFailures"`

	// SkipUnavailableAnalyzers records missing tools as skipped instead of error
	SkipUnavailableAnalyzers bool `json:"skipUnavailableAnalyzers" mapstructure:"skipunavailableanalyzers" yaml:"skipUnavailableAnalyzers"`

	// Static holds the static analysis tool group
	Static StaticConfig `json:"static" mapstructure:"static" yaml:"static"`

	// Coverage holds the coverage tool group
	Coverage CoverageConfig `json:"coverage" mapstructure:"coverage" yaml:"coverage"`

	// ArchUnit holds architecture rule checking configuration
	ArchUnit ArchUnitConfig `json:"archunit" mapstructure:"archunit" yaml:"archunit"`

	// AI holds the AI reviewer group
	AI AIConfig `json:"ai" mapstructure:"ai" yaml:"ai"`

	// Reports selects which report artifacts are written
	Reports ReportsConfig `json:"reports" mapstructure:"reports" yaml:"reports"`

	// Performance tunes analyzer execution
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// History configures the optional run-history store
	History HistoryConfig `json:"history" mapstructure:"history" yaml:"history"`
}

// StaticConfig groups the static analysis tools
type StaticConfig struct {
	Enabled    bool             `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Checkstyle CheckstyleConfig `json:"checkstyle" mapstructure:"checkstyle" yaml:"checkstyle"`
	PMD        PMDConfig        `json:"pmd" mapstructure:"pmd" yaml:"pmd"`
	SpotBugs   SpotBugsConfig   `json:"spotbugs" mapstructure:"spotbugs" yaml:"spotbugs"`
}

// CheckstyleConfig configures the checkstyle analyzer
type CheckstyleConfig struct {
	Enabled        bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	ConfigFile     string `json:"configFile,omitempty" mapstructure:"configfile" yaml:"configFile,omitempty"`
	ReportFile     string `json:"reportFile,omitempty" mapstructure:"reportfile" yaml:"reportFile,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutseconds" yaml:"timeoutSeconds"`
}

// PMDConfig configures the PMD analyzer
type PMDConfig struct {
	Enabled        bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Ruleset        string `json:"ruleset,omitempty" mapstructure:"ruleset" yaml:"ruleset,omitempty"`
	ReportFile     string `json:"reportFile,omitempty" mapstructure:"reportfile" yaml:"reportFile,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutseconds" yaml:"timeoutSeconds"`
}

// SpotBugsConfig configures the SpotBugs analyzer
type SpotBugsConfig struct {
	Enabled        bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	ExcludeFile    string `json:"excludeFile,omitempty" mapstructure:"excludefile" yaml:"excludeFile,omitempty"`
	ReportFile     string `json:"reportFile,omitempty" mapstructure:"reportfile" yaml:"reportFile,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutseconds" yaml:"timeoutSeconds"`
}

// CoverageConfig groups coverage tools
type CoverageConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Minimum is the line coverage percentage below which the coverage
	// result is a warning. 0 disables the gate.
	Minimum float64 `json:"minimum" mapstructure:"minimum" yaml:"minimum"`

	JaCoCo JaCoCoConfig `json:"jacoco" mapstructure:"jacoco" yaml:"jacoco"`
}

// JaCoCoConfig configures the JaCoCo coverage analyzer
type JaCoCoConfig struct {
	Enabled        bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	ReportFile     string `json:"reportFile,omitempty" mapstructure:"reportfile" yaml:"reportFile,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutseconds" yaml:"timeoutSeconds"`
}

// ArchUnitConfig configures the architecture rule analyzer
type ArchUnitConfig struct {
	Enabled        bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	RulesJar       string `json:"rulesJar,omitempty" mapstructure:"rulesjar" yaml:"rulesJar,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutseconds" yaml:"timeoutSeconds"`
}

// AIConfig groups AI review providers
type AIConfig struct {
	Enabled bool         `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Gemini  GeminiConfig `json:"gemini" mapstructure:"gemini" yaml:"gemini"`
}

// GeminiConfig configures the sequential Gemini reviewer
type GeminiConfig struct {
	Enabled        bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Command        string `json:"command" mapstructure:"command" yaml:"command"`
	GuidesDir      string `json:"guidesDir" mapstructure:"guidesdir" yaml:"guidesDir"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutseconds" yaml:"timeoutSeconds"`
}

// ReportsConfig selects report artifacts
type ReportsConfig struct {
	HTML     ReportFormatConfig `json:"html" mapstructure:"html" yaml:"html"`
	JSON     ReportFormatConfig `json:"json" mapstructure:"json" yaml:"json"`
	Markdown ReportFormatConfig `json:"markdown" mapstructure:"markdown" yaml:"markdown"`
}

// ReportFormatConfig toggles one report format
type ReportFormatConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
}

// PerformanceConfig tunes analyzer execution
type PerformanceConfig struct {
	// Parallel runs independent analyzers concurrently. Report ordering
	// stays deterministic regardless: results are re-slotted into catalog
	// order before assembly.
	Parallel bool `json:"parallel" mapstructure:"parallel" yaml:"parallel"`

	// MaxConcurrency limits the fan-out in parallel mode
	MaxConcurrency int `json:"maxConcurrency" mapstructure:"maxconcurrency" yaml:"maxConcurrency"`
}

// HistoryConfig configures the run-history store
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Path overrides the default store location under the XDG data dir
	Path string `json:"path,omitempty" mapstructure:"path" yaml:"path,omitempty"`
}

// DefaultConfig returns the built-in defaults: all analyzers enabled, all
// report formats enabled, missing tools recorded as skipped.
func DefaultConfig() *Config {
	return &Config{
		IgnoreFailures:           false,
		SkipUnavailableAnalyzers: true,
		Static: StaticConfig{
			Enabled:    true,
			Checkstyle: CheckstyleConfig{Enabled: true, TimeoutSeconds: DefaultToolTimeoutSeconds},
			PMD:        PMDConfig{Enabled: true, TimeoutSeconds: DefaultToolTimeoutSeconds},
			SpotBugs:   SpotBugsConfig{Enabled: true, TimeoutSeconds: DefaultToolTimeoutSeconds},
		},
		Coverage: CoverageConfig{
			Enabled: true,
			Minimum: 0,
			JaCoCo:  JaCoCoConfig{Enabled: true, TimeoutSeconds: DefaultToolTimeoutSeconds},
		},
		ArchUnit: ArchUnitConfig{Enabled: true, TimeoutSeconds: DefaultToolTimeoutSeconds},
		AI: AIConfig{
			Enabled: true,
			Gemini: GeminiConfig{
				Enabled:        true,
				Command:        DefaultGeminiCommand,
				GuidesDir:      DefaultGuidesDir,
				TimeoutSeconds: DefaultAITimeoutSeconds,
			},
		},
		Reports: ReportsConfig{
			HTML:     ReportFormatConfig{Enabled: true},
			JSON:     ReportFormatConfig{Enabled: true},
			Markdown: ReportFormatConfig{Enabled: true},
		},
		Performance: PerformanceConfig{
			Parallel:       false,
			MaxConcurrency: DefaultMaxConcurrency,
		},
		History: HistoryConfig{Enabled: false},
	}
}

// LoadConfig loads configuration from the specified path, or from a
// discovered config file when path is empty
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a config file near
// targetPath when no explicit path is given
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// New viper instance per load to avoid shared state
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Unknown keys are silently ignored; absent keys keep their defaults
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// configFileCandidates lists recognized config file names in order of preference
var configFileCandidates = []string{
	"qgate.yaml",
	"qgate.yml",
	".qgate.yaml",
	".qgate.yml",
	"qgate.json",
	".qgate.json",
}

// findDefaultConfig searches targetPath and its ancestors for a config file
func findDefaultConfig(targetPath string) string {
	startDir := targetPath
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return ""
		}
	}

	if info, err := os.Stat(startDir); err == nil && !info.IsDir() {
		startDir = filepath.Dir(startDir)
	}

	dir := startDir
	for {
		if found := searchConfigInDirectory(dir, configFileCandidates); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func searchConfigInDirectory(dir string, candidates []string) string {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Coverage.Minimum < 0 || c.Coverage.Minimum > 100 {
		return fmt.Errorf("coverage.minimum must be between 0 and 100, got %.1f", c.Coverage.Minimum)
	}
	if c.Performance.MaxConcurrency < 0 {
		return fmt.Errorf("performance.maxConcurrency cannot be negative, got %d", c.Performance.MaxConcurrency)
	}
	if c.AI.Gemini.Enabled && c.AI.Gemini.Command == "" {
		return fmt.Errorf("ai.gemini.command cannot be empty when the Gemini reviewer is enabled")
	}
	return nil
}

// CheckstyleEnabled reports whether the checkstyle analyzer is selected
func (c *Config) CheckstyleEnabled() bool {
	return c.Static.Enabled && c.Static.Checkstyle.Enabled
}

// PMDEnabled reports whether the PMD analyzer is selected
func (c *Config) PMDEnabled() bool {
	return c.Static.Enabled && c.Static.PMD.Enabled
}

// SpotBugsEnabled reports whether the SpotBugs analyzer is selected
func (c *Config) SpotBugsEnabled() bool {
	return c.Static.Enabled && c.Static.SpotBugs.Enabled
}

// JaCoCoEnabled reports whether the coverage analyzer is selected
func (c *Config) JaCoCoEnabled() bool {
	return c.Coverage.Enabled && c.Coverage.JaCoCo.Enabled
}

// ArchUnitEnabled reports whether the architecture analyzer is selected
func (c *Config) ArchUnitEnabled() bool {
	return c.ArchUnit.Enabled
}

// GeminiEnabled reports whether the sequential AI reviewer is selected
func (c *Config) GeminiEnabled() bool {
	return c.AI.Enabled && c.AI.Gemini.Enabled
}
