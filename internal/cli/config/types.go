// Package config provides configuration management for the Datalyst CLI.
package config

// LLMConfig configures the external code provider fallback.
type LLMConfig struct {
	// Enabled gates the fallback; when false, unmatched prompts fail
	// with an instructional message instead of calling the provider.
	Enabled bool `koanf:"enabled"`
	// Model is the chat model name.
	Model string `koanf:"model"`
	// BaseURL overrides the API endpoint (Groq if empty).
	BaseURL string `koanf:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never appears in config files.
	APIKeyEnv string `koanf:"api_key_env"`
	// TimeoutSeconds bounds one provider call.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// ChartsConfig configures chart artifact rendering.
type ChartsConfig struct {
	// Dir is where PNGs are written (system temp dir if empty).
	Dir string `koanf:"dir"`
	// DPI is the raster resolution.
	DPI int `koanf:"dpi"`
}

// AnalysisConfig tunes suggestion generation.
type AnalysisConfig struct {
	MaxSuggestions int `koanf:"max_suggestions"`
}

// Config is the full CLI configuration.
type Config struct {
	Verbose  bool           `koanf:"verbose"`
	Output   string         `koanf:"output"`
	LLM      LLMConfig      `koanf:"llm"`
	Charts   ChartsConfig   `koanf:"charts"`
	Analysis AnalysisConfig `koanf:"analysis"`
}

// Defaults.
const (
	DefaultOutput         = "table"
	DefaultModel          = "llama-3.3-70b-versatile"
	DefaultAPIKeyEnv      = "GROQ_API_KEY"
	DefaultTimeoutSeconds = 60
	DefaultChartDPI       = 150
	DefaultMaxSuggestions = 8
)
