package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/perini/anexos-downloader/internal/model"
	"gopkg.in/yaml.v2"
)

// Settings holds all configuration options.
type Settings struct {
	// Source page settings
	PageURL          string   `json:"page_url" yaml:"page_url"`
	BaseOrigin       string   `json:"base_origin" yaml:"base_origin"`
	UserAgent        string   `json:"user_agent" yaml:"user_agent"`
	Markers          []string `json:"markers" yaml:"markers"`
	Extensions       []string `json:"extensions" yaml:"extensions"`
	CaseInsensitive  bool     `json:"case_insensitive" yaml:"case_insensitive"`
	DeduplicateLinks bool     `json:"deduplicate_links" yaml:"deduplicate_links"`

	// Download settings
	DownloadDir        string  `json:"download_dir" yaml:"download_dir"`
	Concurrency        int     `json:"concurrency" yaml:"concurrency"`
	MaxRetries         int     `json:"max_retries" yaml:"max_retries"`
	Timeout            float64 `json:"timeout" yaml:"timeout"`
	RetryCooldown      float64 `json:"retry_cooldown" yaml:"retry_cooldown"`
	RetryExponent      float64 `json:"retry_exponent" yaml:"retry_exponent"`
	RemovePartialFiles bool    `json:"remove_partial_files" yaml:"remove_partial_files"`

	// Output settings
	ArchivePath string `json:"archive_path" yaml:"archive_path"`
	ReportPath  string `json:"report_path" yaml:"report_path"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		PageURL:    "https://www.gov.br/ans/pt-br/acesso-a-informacao/participacao-da-sociedade/atualizacao-do-rol-de-procedimentos",
		BaseOrigin: "https://www.gov.br",
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Markers:    []string{"Anexo_I", "Anexo_II"},
		Extensions: []string{"pdf", "xls", "xlsx", "doc", "docx"},

		DownloadDir:   "downloads",
		Concurrency:   4,
		MaxRetries:    3,
		Timeout:       15,
		RetryCooldown: 0,
		RetryExponent: 2,

		ArchivePath: "anexos_anss.zip",
	}
}

// Load reads settings from a JSON or YAML file.
//
// The format is chosen by extension: ".yaml" and ".yml" are decoded as YAML,
// anything else as JSON. Fields missing from the file keep their default
// values. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the settings can drive a run.
func (s *Settings) Validate() error {
	var problems []string

	if strings.TrimSpace(s.PageURL) == "" {
		problems = append(problems, "page_url is required")
	}
	if len(nonEmpty(s.Markers)) == 0 {
		problems = append(problems, "at least one marker is required")
	}
	if len(nonEmpty(s.Extensions)) == 0 {
		problems = append(problems, "at least one extension is required")
	}
	if s.DownloadDir == "" {
		problems = append(problems, "download_dir is required")
	}
	if s.ArchivePath == "" {
		problems = append(problems, "archive_path is required")
	}
	if s.Concurrency < 1 {
		problems = append(problems, "concurrency must be at least 1")
	}
	if s.MaxRetries < 1 {
		problems = append(problems, "max_retries must be at least 1")
	}
	if s.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if s.RetryCooldown < 0 {
		problems = append(problems, "retry_cooldown must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", model.ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

// TimeoutDuration returns Timeout (seconds) as a time.Duration.
func (s *Settings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout * float64(time.Second))
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
