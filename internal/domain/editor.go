package domain

import "time"

// Preferences are the editor settings saved alongside a catalog.
type Preferences struct {
	LineEnding string    `json:"line_ending"`
	LastImport string    `json:"last_import,omitempty"`
	LastExport string    `json:"last_export,omitempty"`
	RuleDir    string    `json:"rule_dir,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Change is one committed field edit as kept in the change journal.
type Change struct {
	Seq         int64     `json:"seq"`
	ItemID      ID        `json:"item_id"`
	Field       string    `json:"field"`
	Before      string    `json:"before"`
	After       string    `json:"after"`
	CommittedAt time.Time `json:"committed_at"`
}
