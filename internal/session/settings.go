package session

import (
	"sportanalyzer/internal/config"
)

// Settings bound the parameters a controller accepts.
type Settings struct {
	DefaultPrompt      string
	DefaultFPS         float64
	MinFPS             float64
	MaxFPS             float64
	TestMode           bool
	AcceptedExtensions []string
}

// SettingsFromConfig extracts the analysis section of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	return Settings{
		DefaultPrompt:      cfg.Analysis.DefaultPrompt,
		DefaultFPS:         cfg.Analysis.DefaultFPS,
		MinFPS:             cfg.Analysis.MinFPS,
		MaxFPS:             cfg.Analysis.MaxFPS,
		TestMode:           cfg.Analysis.TestMode,
		AcceptedExtensions: append([]string(nil), cfg.Analysis.AcceptedExtensions...),
	}
}

func (s Settings) withDefaults() Settings {
	d := SettingsFromConfig(nil)
	if s.DefaultPrompt == "" {
		s.DefaultPrompt = d.DefaultPrompt
	}
	if s.MinFPS <= 0 {
		s.MinFPS = d.MinFPS
	}
	if s.MaxFPS <= 0 {
		s.MaxFPS = d.MaxFPS
	}
	if s.DefaultFPS <= 0 {
		s.DefaultFPS = d.DefaultFPS
	}
	if len(s.AcceptedExtensions) == 0 {
		s.AcceptedExtensions = d.AcceptedExtensions
	}
	return s
}

func (s Settings) initialParameters() Parameters {
	return Parameters{FPS: s.DefaultFPS, TestMode: s.TestMode}
}
