package commands

import (
	"tagaudit/internal/components/telemetry"
	"tagaudit/internal/db"
)

type Config struct {
	// ApiKey is the OAuth consumer key of the registered application.
	ApiKey           string `json:"api_key"`
	BaseUrl          string `json:"base_url" validate:"omitempty,url"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`

	Tags []string `json:"tags" validate:"dive,required"`
	// MaxPages per tag, 0 pages until the API runs out of posts.
	MaxPages int `json:"max_pages" validate:"gte=0"`
	// IncludeOriginals keeps posts without a reblog origin.
	IncludeOriginals bool `json:"include_originals"`

	OutputDir string           `json:"output_dir"`
	Database  db.Config        `json:"database" validate:"required"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func (c Config) outputDir() string {
	if c.OutputDir == "" {
		return "out"
	}
	return c.OutputDir
}
