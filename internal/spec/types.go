package spec

// Config is the on-disk shape of .enemeval/config.yml.
type Config struct {
	Version              int         `yaml:"version"`
	QuestionsDir         string      `yaml:"questions_dir"`
	Checkpoint           string      `yaml:"checkpoint"`
	ReportsDir           string      `yaml:"reports_dir"`
	Delay                string      `yaml:"delay"`
	Resume               bool        `yaml:"resume"`
	SynthesizeMissingIDs bool        `yaml:"synthesize_missing_ids"`
	UI                   string      `yaml:"ui"`
	Store                StoreConfig `yaml:"store"`
	Model                ModelConfig `yaml:"model"`
}

type StoreConfig struct {
	// DuckDB is the results database path; empty disables the store.
	DuckDB string `yaml:"duckdb"`
}

type ModelConfig struct {
	Name         string   `yaml:"name"`
	BaseURL      string   `yaml:"base_url"`
	Temperature  *float64 `yaml:"temperature"`
	MaxTokens    int      `yaml:"max_tokens"`
	TopP         *float64 `yaml:"top_p"`
	Timeout      string   `yaml:"timeout"`
	SystemPrompt string   `yaml:"system_prompt"`
	APIKeyEnv    string   `yaml:"api_key_env"`
	Dotenv       string   `yaml:"dotenv"`
}
