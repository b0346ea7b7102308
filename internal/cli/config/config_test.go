package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.LLM.APIKeyEnv)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, DefaultChartDPI, cfg.Charts.DPI)
	assert.Equal(t, DefaultMaxSuggestions, cfg.Analysis.MaxSuggestions)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := filepath.Join(t.TempDir(), "datalyst.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output: json
llm:
  enabled: true
  model: custom-model
charts:
  dpi: 96
`), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "custom-model", cfg.LLM.Model)
	assert.Equal(t, 96, cfg.Charts.DPI)
	assert.Equal(t, DefaultMaxSuggestions, cfg.Analysis.MaxSuggestions, "unset keys keep defaults")
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	ResetConfig()
	path := filepath.Join(t.TempDir(), "datalyst.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: from-file\n"), 0o600))

	t.Setenv("DATALYST_LLM__MODEL", "from-env")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.Model)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Setenv("DATALYST_LLM__MODEL", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("model", DefaultModel, "")
	flags.Bool("use-llm", false, "")
	flags.Int("max-suggestions", DefaultMaxSuggestions, "")
	require.NoError(t, flags.Parse([]string{"--model", "from-flag", "--use-llm", "--max-suggestions", "5"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.LLM.Model)
	assert.True(t, cfg.LLM.Enabled, "use-llm maps to llm.enabled")
	assert.Equal(t, 5, cfg.Analysis.MaxSuggestions)
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("model", "flag-default", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.LLM.Model, "flag defaults must not override config defaults")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Output:   "table",
		Charts:   ChartsConfig{DPI: 150},
		Analysis: AnalysisConfig{MaxSuggestions: 8},
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Output = "xml"
	assert.Error(t, bad.Validate(), "unknown output format")

	bad = valid
	bad.Charts.DPI = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Analysis.MaxSuggestions = -1
	assert.Error(t, bad.Validate())
}
