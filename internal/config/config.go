package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
	MaxChunks int `toml:"max_chunks"`
}

type MapReduceConfig struct {
	Workers            int `toml:"workers"`
	ChunkSummaryLength int `toml:"chunk_summary_length"`
}

type RAGConfig struct {
	ChunkSize int     `toml:"chunk_size"`
	Overlap   int     `toml:"overlap"`
	TopK      int     `toml:"top_k"`
	MinScore  float64 `toml:"min_score"`
	Workers   int     `toml:"workers"`
}

type GraphRAGConfig struct {
	ChunkSize       int  `toml:"chunk_size"`
	UseGlobalSearch bool `toml:"use_global_search"`
}

type EvalConfig struct {
	HallucinationPenalty float64 `toml:"hallucination_penalty"`
}

type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	MapReduce MapReduceConfig `toml:"mapreduce"`
	RAG       RAGConfig       `toml:"rag"`
	GraphRAG  GraphRAGConfig  `toml:"graphrag"`
	Eval      EvalConfig      `toml:"eval"`
}

// Default returns a runnable configuration without touching the filesystem.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Chunking: ChunkingConfig{
			ChunkSize: 4000,
			Overlap:   200,
			MaxChunks: 20,
		},
		MapReduce: MapReduceConfig{
			Workers:            4,
			ChunkSummaryLength: 300,
		},
		RAG: RAGConfig{
			ChunkSize: 500,
			Overlap:   50,
			TopK:      5,
			MinScore:  0.3,
			Workers:   4,
		},
		GraphRAG: GraphRAGConfig{
			ChunkSize:       2000,
			UseGlobalSearch: true,
		},
		Eval: EvalConfig{
			HallucinationPenalty: 0.5,
		},
	}
}

// Load reads a TOML config file, with defaults filled in for anything the
// file leaves unset. A .env file next to the process, if any, is loaded
// first; environment variables override API credentials from the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides credentials from the environment, keyed by provider,
// e.g. OPENAI_API_KEY / DEEPSEEK_BASE_URL.
func (c *Config) applyEnv() {
	prefix := strings.ToUpper(c.LLM.Provider)
	if prefix == "" {
		return
	}
	if v := os.Getenv(prefix + "_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(prefix + "_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
}
