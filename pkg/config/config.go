package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/pagevoice/pagevoice/pkg/logger"
)

type HostedConfig struct {
	APIKey       string  `json:"-" env:"ELEVENLABS_API_KEY"`
	BaseURL      string  `json:"base_url" env:"PAGEVOICE_HOSTED_BASE_URL"`
	VoiceID      string  `json:"voice_id" env:"PAGEVOICE_HOSTED_VOICE_ID"`
	ModelID      string  `json:"model_id" env:"PAGEVOICE_HOSTED_MODEL_ID"`
	OutputFormat string  `json:"output_format" env:"PAGEVOICE_HOSTED_OUTPUT_FORMAT"`
	Stability    float64 `json:"stability" env:"PAGEVOICE_HOSTED_STABILITY"`
	Similarity   float64 `json:"similarity" env:"PAGEVOICE_HOSTED_SIMILARITY"`
	Playback     bool    `json:"playback" env:"PAGEVOICE_HOSTED_PLAYBACK"`
}

type CloneConfig struct {
	ServerURL  string `json:"server_url" env:"PAGEVOICE_CLONE_SERVER_URL"`
	Language   string `json:"language" env:"PAGEVOICE_CLONE_LANGUAGE"`
	SampleRate int    `json:"sample_rate" env:"PAGEVOICE_CLONE_SAMPLE_RATE"`
}

type TextConfig struct {
	ChunkSize int `json:"chunk_size" env:"PAGEVOICE_TEXT_CHUNK_SIZE"`
	// WordJoinFix inserts spaces at case and letter-digit transitions to
	// repair words a PDF text layer glued together. It also breaks
	// intentional CamelCase, so it can be switched off.
	WordJoinFix bool `json:"word_join_fix" env:"PAGEVOICE_TEXT_WORD_JOIN_FIX"`
}

type GatewayConfig struct {
	Host string `json:"host" env:"PAGEVOICE_GATEWAY_HOST"`
	Port int    `json:"port" env:"PAGEVOICE_GATEWAY_PORT"`
}

type OutputConfig struct {
	Dir        string `json:"dir" env:"PAGEVOICE_OUTPUT_DIR"`
	UploadsDir string `json:"uploads_dir" env:"PAGEVOICE_UPLOADS_DIR"`
}

type Config struct {
	Hosted  HostedConfig  `json:"hosted"`
	Clone   CloneConfig   `json:"clone"`
	Text    TextConfig    `json:"text"`
	Gateway GatewayConfig `json:"gateway"`
	Output  OutputConfig  `json:"output"`
	LogFile string        `json:"log_file" env:"PAGEVOICE_LOG_FILE"`
}

func DefaultConfig() *Config {
	return &Config{
		Hosted: HostedConfig{
			BaseURL:      "https://api.elevenlabs.io",
			VoiceID:      "JBFqnCBsd6RMkjVDRZzb",
			ModelID:      "eleven_multilingual_v2",
			OutputFormat: "mp3_44100_128",
			Stability:    0.5,
			Similarity:   0.75,
		},
		Clone: CloneConfig{
			ServerURL:  "http://localhost:5002",
			Language:   "en",
			SampleRate: 22050,
		},
		Text: TextConfig{
			ChunkSize:   250,
			WordJoinFix: true,
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 8750,
		},
		Output: OutputConfig{
			Dir:        "audio_output",
			UploadsDir: "uploads",
		},
	}
}

// LoadConfig reads the JSON config at path (missing file falls back to
// defaults), then overlays environment variables. A .env file in the
// working directory is read first so the API key can live there.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.DebugC("config", "No .env file found, relying on process environment")
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// RequireHostedKey fails fast when the ElevenLabs API key is absent.
// Called before any hosted pipeline or voice-registry operation runs.
func (c *Config) RequireHostedKey() error {
	if c.Hosted.APIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is not set (put it in .env or the environment)")
	}
	return nil
}

// DefaultPath returns the config file location, overridable via
// PAGEVOICE_CONFIG for tests and containers.
func DefaultPath() string {
	if p := os.Getenv("PAGEVOICE_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pagevoice.json"
	}
	return filepath.Join(home, ".pagevoice", "config.json")
}
