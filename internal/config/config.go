// Package config merges scan settings from defaults, a YAML file,
// environment variables and command-line flags.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/seo-detector/internal/log"
	"github.com/example/seo-detector/internal/output"
	"github.com/example/seo-detector/internal/rules"
)

const (
	DefaultConfigPath = "seo-detector.config.yml"

	envInputs     = "SEO_INPUTS"
	envInputsFile = "SEO_INPUTS_FILE"
	envOutput     = "SEO_OUTPUT"
	envOutputDir  = "SEO_OUTPUT_DIR"
	envRulesFile  = "SEO_RULES_FILE"
	envRules      = "SEO_RULES"
	envLogLevel   = "SEO_LOG_LEVEL"
	envLogFormat  = "SEO_LOG_FORMAT"
	envWatch      = "SEO_WATCH"
)

// Loader merges configuration coming from files, environment variables, and CLI flags.
type Loader struct {
	ConfigPath string
}

// RuntimeConfig contains the fully merged settings required by the commands.
type RuntimeConfig struct {
	Inputs    []string
	Outputs   []string
	OutputDir string
	// RuleOverrides comes from a rules mapping in the config file.
	RuleOverrides *rules.Overrides
	RulesFile     string
	// Rules is an overrides document in JSON form.
	Rules     string
	LogLevel  string
	LogFormat string
	Watch     bool
}

// Overrides captures values coming from the config file, env vars or CLI flags.
type Overrides struct {
	Inputs        []string
	InputsFile    string
	Outputs       []string
	OutputDir     string
	RuleOverrides *rules.Overrides
	RulesFile     string
	Rules         string
	LogLevel      string
	LogFormat     string
	Watch         *bool
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Outputs:   []string{"console"},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load resolves the final runtime configuration.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
		if err := cfg.apply(fileOv); err != nil {
			return cfg, err
		}
	}

	if err := cfg.apply(overridesFromEnv()); err != nil {
		return cfg, err
	}

	if err := cfg.apply(override); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures the config contains the minimum required data for the scan command.
func (c RuntimeConfig) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("no inputs configured; provide arguments, --inputs, --inputs-file, or set SEO_INPUTS")
	}

	return c.ValidateSettings()
}

// ValidateSettings checks everything except the presence of inputs.
func (c RuntimeConfig) ValidateSettings() error {
	if len(c.Outputs) == 0 {
		return errors.New("at least one output must be specified")
	}

	for _, name := range c.Outputs {
		if !output.DefaultRegistry.Has(name) {
			return fmt.Errorf("unknown output %q (known: %s)", name, strings.Join(output.DefaultRegistry.Names(), ", "))
		}
		if strings.EqualFold(name, "file") && strings.TrimSpace(c.OutputDir) == "" {
			return errors.New("file output needs an output directory; provide --output-dir or set SEO_OUTPUT_DIR")
		}
	}

	if _, err := log.GetLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := log.GetFormat(c.LogFormat); err != nil {
		return err
	}

	return nil
}

// LoadRuleOverrides returns the configured rule overrides in the order they
// apply: the config file mapping, the rules file, then the JSON document.
func (c RuntimeConfig) LoadRuleOverrides() ([]*rules.Overrides, error) {
	var out []*rules.Overrides

	if c.RuleOverrides != nil {
		out = append(out, c.RuleOverrides)
	}

	if c.RulesFile != "" {
		o, err := rules.LoadOverridesFile(c.RulesFile)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}

	if strings.TrimSpace(c.Rules) != "" {
		o, err := rules.ParseOverrides(c.Rules)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}

	return out, nil
}

func (c *RuntimeConfig) apply(src Overrides) error {
	if len(src.Inputs) > 0 {
		c.Inputs = cleanList(src.Inputs)
	}

	if src.InputsFile != "" {
		values, err := readInputsFile(src.InputsFile)
		if err != nil {
			return err
		}
		c.Inputs = values
	}

	if len(src.Outputs) > 0 {
		c.Outputs = cleanList(src.Outputs)
	}

	if src.OutputDir != "" {
		c.OutputDir = src.OutputDir
	}

	if src.RuleOverrides != nil {
		c.RuleOverrides = src.RuleOverrides
	}

	if src.RulesFile != "" {
		c.RulesFile = src.RulesFile
	}

	if src.Rules != "" {
		c.Rules = src.Rules
	}

	if src.LogLevel != "" {
		c.LogLevel = strings.ToLower(src.LogLevel)
	}

	if src.LogFormat != "" {
		c.LogFormat = strings.ToLower(src.LogFormat)
	}

	if src.Watch != nil {
		c.Watch = *src.Watch
	}

	return nil
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawConfig struct {
		Inputs     stringList `yaml:"inputs"`
		InputsFile string     `yaml:"inputsFile"`
		Output     stringList `yaml:"output"`
		OutputDir  string     `yaml:"outputDir"`
		RulesFile  string     `yaml:"rulesFile"`
		Rules      ruleBlock  `yaml:"rules"`
		LogLevel   string     `yaml:"logLevel"`
		LogFormat  string     `yaml:"logFormat"`
		Watch      *bool      `yaml:"watch"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	return Overrides{
		Inputs:        raw.Inputs,
		InputsFile:    raw.InputsFile,
		Outputs:       raw.Output,
		OutputDir:     raw.OutputDir,
		RuleOverrides: raw.Rules.overrides,
		RulesFile:     raw.RulesFile,
		Rules:         raw.Rules.json,
		LogLevel:      raw.LogLevel,
		LogFormat:     raw.LogFormat,
		Watch:         raw.Watch,
	}, nil
}

func overridesFromEnv() Overrides {
	ov := Overrides{}

	if value := os.Getenv(envInputs); value != "" {
		ov.Inputs = ParseInputsList(value)
	}

	if value := os.Getenv(envInputsFile); value != "" {
		ov.InputsFile = value
	}

	if value := os.Getenv(envOutput); value != "" {
		ov.Outputs = ParseOutputs(value)
	}

	if value := os.Getenv(envOutputDir); value != "" {
		ov.OutputDir = value
	}

	if value := os.Getenv(envRulesFile); value != "" {
		ov.RulesFile = value
	}

	if value := os.Getenv(envRules); value != "" {
		ov.Rules = value
	}

	if value := os.Getenv(envLogLevel); value != "" {
		ov.LogLevel = value
	}

	if value := os.Getenv(envLogFormat); value != "" {
		ov.LogFormat = value
	}

	if value := os.Getenv(envWatch); value != "" {
		parsed := strings.EqualFold(value, "true") || value == "1"
		ov.Watch = &parsed
	}

	return ov
}

// ParseInputsList turns comma or newline separated input into individual inputs.
func ParseInputsList(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r'})
}

// ParseOutputs splits comma separated output names.
func ParseOutputs(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r', ' '})
}

func splitOnDelimiters(input string, delims []rune) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	separator := func(r rune) bool {
		for _, d := range delims {
			if r == d {
				return true
			}
		}
		return false
	}

	return cleanList(strings.FieldsFunc(trimmed, separator))
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func readInputsFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var inputs []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return inputs, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// stringList enables YAML fields that can be specified as a scalar or sequence.
type stringList []string

func (t *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var out []string
		for _, node := range value.Content {
			out = append(out, strings.TrimSpace(node.Value))
		}
		*t = cleanList(out)
	case yaml.ScalarNode:
		*t = ParseInputsList(value.Value)
	default:
		return fmt.Errorf("unsupported YAML type for list at line %d", value.Line)
	}
	return nil
}

// ruleBlock accepts rule overrides either as a YAML mapping or as a JSON string.
type ruleBlock struct {
	overrides *rules.Overrides
	json      string
}

func (r *ruleBlock) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		o := rules.NewOverrides()
		if err := value.Decode(o); err != nil {
			return err
		}
		r.overrides = o
	case yaml.ScalarNode:
		r.json = value.Value
	default:
		return fmt.Errorf("rules at line %d must be a mapping or a JSON string", value.Line)
	}
	return nil
}
