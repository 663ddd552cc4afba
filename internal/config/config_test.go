package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/seo-detector/internal/log"
	"github.com/example/seo-detector/internal/rules"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoaderLoadWithFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	inputsFile := writeFile(t, dir, "inputs.txt", "# pages\none.html\n\nhttps://two.test\n")
	configPath := writeFile(t, dir, DefaultConfigPath,
		"inputsFile: "+inputsFile+"\noutput: [console, file]\noutputDir: out\nlogLevel: debug\nwatch: true\n")

	t.Setenv(envOutput, "stream")
	t.Setenv(envLogFormat, "JSON")

	cfg, err := Loader{ConfigPath: configPath}.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}

	if len(cfg.Inputs) != 2 || cfg.Inputs[1] != "https://two.test" {
		t.Fatalf("unexpected inputs: %#v", cfg.Inputs)
	}

	if len(cfg.Outputs) != 1 || cfg.Outputs[0] != "stream" {
		t.Fatalf("env override should replace outputs, got %#v", cfg.Outputs)
	}

	if cfg.OutputDir != "out" || cfg.LogLevel != "debug" || cfg.LogFormat != "json" || !cfg.Watch {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestOverridesApplyInputsList(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, DefaultConfigPath, "inputs: from-file.html\n")

	cfg, err := Loader{ConfigPath: configPath}.Load(Overrides{Inputs: []string{"override.html"}})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "override.html" {
		t.Fatalf("expected overrides to replace inputs, got %#v", cfg.Inputs)
	}
}

func TestLoaderMissingConfigUsesDefaults(t *testing.T) {
	cfg, err := Loader{ConfigPath: filepath.Join(t.TempDir(), "absent.yml")}.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.Outputs) != 1 || cfg.Outputs[0] != "console" || cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestLoaderRejectsBadYAML(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), DefaultConfigPath, "inputs: {a: b}\n")

	if _, err := (Loader{ConfigPath: configPath}).Load(Overrides{}); err == nil {
		t.Fatalf("expected error for mapping inputs")
	}
}

func TestValidate(t *testing.T) {
	base := DefaultRuntimeConfig()
	base.Inputs = []string{"page.html"}

	tests := []struct {
		name   string
		mutate func(c *RuntimeConfig)
		want   string
	}{
		{name: "valid", mutate: func(c *RuntimeConfig) {}},
		{name: "no inputs", mutate: func(c *RuntimeConfig) { c.Inputs = nil }, want: "no inputs configured"},
		{name: "no outputs", mutate: func(c *RuntimeConfig) { c.Outputs = nil }, want: "at least one output"},
		{name: "unknown output", mutate: func(c *RuntimeConfig) { c.Outputs = []string{"printer"} }, want: `unknown output "printer"`},
		{name: "file without dir", mutate: func(c *RuntimeConfig) { c.Outputs = []string{"file"} }, want: "output directory"},
		{name: "file with dir", mutate: func(c *RuntimeConfig) { c.Outputs = []string{"file"}; c.OutputDir = "out" }},
		{name: "bad level", mutate: func(c *RuntimeConfig) { c.LogLevel = "loud" }, want: "unknown log level"},
		{name: "bad format", mutate: func(c *RuntimeConfig) { c.LogFormat = "xml" }, want: "unknown log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Outputs = append([]string(nil), base.Outputs...)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	bad := base
	bad.LogLevel = "loud"
	if err := bad.Validate(); !errors.Is(err, log.ErrUnknownLogLevel) {
		t.Fatalf("expected ErrUnknownLogLevel, got %v", err)
	}
}

func TestRuleOverridesFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	rulesFile := writeFile(t, dir, "rules.json", `{"h1": {"tag": "h2"}}`)
	configPath := writeFile(t, dir, DefaultConfigPath, `
rulesFile: `+rulesFile+`
rules:
  strong:
    conditions:
      - itself:
          assertion: length.to.be.below
          assertValue: 3
        defectMessage: This HTML has more than 2 <strong> tag
`)

	cfg, err := Loader{ConfigPath: configPath}.Load(Overrides{Rules: `{"a": {"tag": "link"}}`})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	sets, err := cfg.LoadRuleOverrides()
	if err != nil {
		t.Fatalf("load rule overrides: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("expected 3 override sets, got %d", len(sets))
	}

	set := rules.Build(slog.New(slog.DiscardHandler), sets...)
	strong, _ := set.Get("strong")
	h1, _ := set.Get("h1")
	a, _ := set.Get("a")

	if strong.Conditions[0].DefectMessage != "This HTML has more than 2 <strong> tag" || h1.Tag != "h2" || a.Tag != "link" {
		t.Fatalf("overrides not applied: strong=%#v h1=%#v a=%#v", strong, h1, a)
	}
}

func TestRuleOverridesAsJSONString(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), DefaultConfigPath, "rules: '{\"h1\": {\"tag\": \"h3\"}}'\n")

	cfg, err := Loader{ConfigPath: configPath}.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	sets, err := cfg.LoadRuleOverrides()
	if err != nil || len(sets) != 1 {
		t.Fatalf("unexpected result %v, %v", sets, err)
	}

	cfg.Rules = "[]"
	if _, err := cfg.LoadRuleOverrides(); !errors.Is(err, rules.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestParseInputsList(t *testing.T) {
	inputs := ParseInputsList("a.html,https://b.test\nc.html\r\n , ")
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d (%#v)", len(inputs), inputs)
	}

	if got := ParseOutputs("console file,stream"); len(got) != 3 {
		t.Fatalf("expected 3 outputs, got %#v", got)
	}
}
