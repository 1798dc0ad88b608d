// Package smsxml provides a plugin wrapper for the SMS backup XML reader.
package smsxml

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kayitare/momoledger/pkg/api"
	smsreader "github.com/kayitare/momoledger/pkg/reader/smsxml"
)

// Plugin implements the ReaderPlugin interface for SMS backup XML files.
type Plugin struct{}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "smsxml"
}

// Description returns a human-readable description.
func (p *Plugin) Description() string {
	return "Read mobile-money transactions from an SMS backup XML export"
}

// ConfigSchema returns a JSON schema describing the plugin's configuration.
func (p *Plugin) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filePath": map[string]any{
				"type":        "string",
				"description": "Path to the SMS backup XML file",
			},
			"sender": map[string]any{
				"type":        "string",
				"description": "Only ingest messages from this sender address",
			},
		},
		"required": []string{"filePath"},
	}
}

// Config represents the SMS backup reader configuration.
type Config struct {
	FilePath string `json:"filePath"`
	Sender   string `json:"sender,omitempty"`
}

// NewReader creates a new SMS backup reader instance.
func (p *Plugin) NewReader(configData json.RawMessage, logger *slog.Logger) (api.Reader, error) {
	var cfg Config
	if err := json.Unmarshal(configData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling smsxml config: %w", err)
	}

	if cfg.FilePath == "" {
		return nil, fmt.Errorf("filePath is required")
	}

	return smsreader.New(smsreader.Config{
		FilePath: cfg.FilePath,
		Sender:   cfg.Sender,
	}, logger)
}
