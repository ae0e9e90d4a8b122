package models

import "time"

// ProviderSetting is the persisted form of one capability's provider
// configuration. APIKey holds the sealed value as written to disk.
type ProviderSetting struct {
	Capability string
	Provider   string
	APIKey     string
	Endpoint   string
	Model      string
	Enabled    bool
	UpdatedAt  time.Time
}
