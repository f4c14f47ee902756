package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

type ModelType string

const (
	ModelGPT    ModelType = "GPT"
	ModelSpacy  ModelType = "SPACY"
	ModelClaude ModelType = "CLAUDE"
	ModelGemini ModelType = "GEMINI"
	ModelOllama ModelType = "OLLAMA"
)

// ParsePolicy decides what happens to a completion line whose value cannot be parsed.
type ParsePolicy string

const (
	ParseSkip  ParsePolicy = "skip"
	ParseAbort ParsePolicy = "abort"
)

// Melted table column names besides the record id field.
const (
	ColumnName  = "NAME"
	ColumnValue = "VALUE"
)

type InputConfig struct {
	Dir       string `toml:"dir" validate:"required"`
	Extension string `toml:"extension" validate:"required"`
}

type CleaningConfig struct {
	SeparateSlashes   bool `toml:"separate_slashes"`
	RemoveLinebreaks  bool `toml:"remove_linebreaks"`
	RemoveNonAlphanum bool `toml:"remove_non_alphanum"`
	EnsureEncoding    bool `toml:"ensure_encoding"`
}

type ModelConfig struct {
	Type                ModelType   `toml:"type" validate:"oneof=GPT SPACY CLAUDE GEMINI OLLAMA"`
	URI                 string      `toml:"uri" validate:"required"`
	APIKey              string      `toml:"api_key"`
	BaseURL             string      `toml:"base_url"`
	PromptSeparator     string      `toml:"prompt_separator"`
	CompletionSeparator string      `toml:"completion_separator"`
	RecordIDField       string      `toml:"record_id_field" validate:"required"`
	Concurrency         int         `toml:"concurrency" validate:"min=1"`
	OnParseError        ParsePolicy `toml:"on_parse_error" validate:"oneof=skip abort"`
}

type BatchConfig struct {
	Size int `toml:"size" validate:"min=1"`
}

type GraphConfig struct {
	Enabled  bool   `toml:"enabled"`
	URI      string `toml:"uri" validate:"required_if=Enabled true"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ExportConfig struct {
	JSON        bool        `toml:"json"`
	JSONPath    string      `toml:"json_path" validate:"required_if=JSON true"`
	Tabular     bool        `toml:"tabular"`
	TabularPath string      `toml:"tabular_path" validate:"required_if=Tabular true"`
	Melt        bool        `toml:"melt"`
	SortColumn  string      `toml:"sort_column"`
	Graph       GraphConfig `toml:"graph"`
}

type Config struct {
	Input    InputConfig    `toml:"input"`
	Cleaning CleaningConfig `toml:"cleaning"`
	Model    ModelConfig    `toml:"model"`
	Batch    BatchConfig    `toml:"batch"`
	Export   ExportConfig   `toml:"export"`
}

// Defaults turns every cleaning filter on and selects the GPT backend with
// JSON plus melted spreadsheet output.
func Defaults() Config {
	return Config{
		Input: InputConfig{
			Dir:       "data/records",
			Extension: ".txt",
		},
		Cleaning: CleaningConfig{
			SeparateSlashes:   true,
			RemoveLinebreaks:  true,
			RemoveNonAlphanum: true,
			EnsureEncoding:    true,
		},
		Model: ModelConfig{
			Type:                ModelGPT,
			PromptSeparator:     "\n\n###\n\n",
			CompletionSeparator: " END",
			RecordIDField:       "REC_ID",
			Concurrency:         1,
			OnParseError:        ParseSkip,
		},
		Batch: BatchConfig{Size: 10},
		Export: ExportConfig{
			JSON:        true,
			JSONPath:    "output/results.json",
			Tabular:     true,
			TabularPath: "output/results.xlsx",
			Melt:        true,
		},
	}
}

// Load reads a TOML file on top of Defaults, so omitted keys keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Defaults()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides credentials and model selection from the environment.
// getenv is usually os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if key := getenv("NERBATCH_API_KEY"); key != "" {
		cfg.Model.APIKey = key
	} else if key := getenv("OPENAI_API_KEY"); key != "" && cfg.Model.APIKey == "" {
		cfg.Model.APIKey = key
	}
	if uri := getenv("NERBATCH_MODEL_URI"); uri != "" {
		cfg.Model.URI = uri
	}
	if mt := getenv("NERBATCH_MODEL_TYPE"); mt != "" {
		cfg.Model.Type = ModelType(strings.ToUpper(mt))
	}
	if baseURL := getenv("NERBATCH_BASE_URL"); baseURL != "" {
		cfg.Model.BaseURL = baseURL
	}
	if pass := getenv("NERBATCH_GRAPH_PASSWORD"); pass != "" {
		cfg.Export.Graph.Password = pass
	}
}

// SortColumn returns the configured sort column, defaulting to the record id field.
func (c *Config) SortColumn() string {
	if c.Export.SortColumn == "" {
		return c.Model.RecordIDField
	}
	return c.Export.SortColumn
}

var validate = validator.New()

func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s failed '%s' check", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}

	if cfg.Export.Melt {
		switch cfg.SortColumn() {
		case cfg.Model.RecordIDField, ColumnName, ColumnValue:
		default:
			return fmt.Errorf("config: sort_column %q is not a melted column", cfg.Export.SortColumn)
		}
	}
	if cfg.Model.Type != ModelSpacy && cfg.Model.Type != ModelOllama && cfg.Model.APIKey == "" {
		return fmt.Errorf("config: api_key required for model type %s", cfg.Model.Type)
	}
	return nil
}
