package models

// PanelKind identifies the schema a panel's rows must follow.
type PanelKind string

const (
	PanelKindFacilities PanelKind = "facilities"
	PanelKindFees       PanelKind = "fees"
	PanelKindLocation   PanelKind = "location"
	PanelKindTraining   PanelKind = "training"
)

// Panel is a pre-authored structured answer (table/list) shown instead of a
// generated reply. Panels are loaded once at startup and never mutated.
type Panel struct {
	ID      string              `json:"id"`
	Mode    Mode                `json:"mode"`
	Kind    PanelKind           `json:"kind"`
	Title   string              `json:"title"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// WithRows returns a shallow copy of the panel carrying a different row set.
// Used by the location filter; the catalog's panel is never modified.
func (p *Panel) WithRows(rows []map[string]string) *Panel {
	cp := *p
	cp.Rows = rows
	return &cp
}

// QuickAction is a clickable shortcut that maps directly to an intent,
// bypassing text matching.
type QuickAction struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Intent string `json:"intent"`
	Scope  Mode   `json:"scope"`
}
