package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"mediskill/internal/models"
)

// SchemaError reports a malformed catalog source. It is fatal at startup:
// the service must not serve traffic with a partially loaded catalog.
type SchemaError struct {
	Source string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalog schema error in %s: %s", e.Source, e.Reason)
}

func schemaErrf(source, format string, args ...any) *SchemaError {
	return &SchemaError{Source: source, Reason: fmt.Sprintf(format, args...)}
}

// Sources lists the structured-data locations the catalog is built from.
// Panel files are loaded in the given order; that order is the panels'
// declaration order.
type Sources struct {
	QuickActionsPath string
	IntentRulesPath  string
	PanelPaths       []string
}

// requiredColumns is the per-kind row schema. A row missing any of these
// fields fails the whole load.
var requiredColumns = map[models.PanelKind][]string{
	models.PanelKindFees:       {"service", "price"},
	models.PanelKindFacilities: {"name", "category"},
	models.PanelKindLocation:   {"name", "city", "district", "address"},
	models.PanelKindTraining:   {"name", "topic", "duration"},
}

// Load reads and validates every source and returns an immutable catalog.
// Any malformed entry aborts the entire load; partial catalogs are never
// returned.
func Load(src Sources) (*Catalog, error) {
	c := &Catalog{
		panels:     make(map[string]*models.Panel),
		actionByID: make(map[string]*models.QuickAction),
	}

	for _, path := range src.PanelPaths {
		panel, err := loadPanel(path)
		if err != nil {
			return nil, err
		}
		if _, dup := c.panels[panel.ID]; dup {
			return nil, schemaErrf(path, "duplicate panel id %q", panel.ID)
		}
		c.panels[panel.ID] = panel
		c.panelOrder = append(c.panelOrder, panel.ID)
	}

	intents, err := loadIntents(src.IntentRulesPath)
	if err != nil {
		return nil, err
	}
	c.intents = intents

	actions, err := loadQuickActions(src.QuickActionsPath, c)
	if err != nil {
		return nil, err
	}
	c.actions = actions
	for i := range c.actions {
		c.actionByID[c.actions[i].ID] = &c.actions[i]
	}

	return c, nil
}

func loadPanel(path string) (*models.Panel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schemaErrf(path, "read failed: %v", err)
	}

	var panel models.Panel
	if err := json.Unmarshal(data, &panel); err != nil {
		return nil, schemaErrf(path, "invalid JSON: %v", err)
	}

	if panel.ID == "" {
		return nil, schemaErrf(path, "panel id is empty")
	}
	if panel.Mode != models.ModeAny {
		if _, err := models.ParseMode(string(panel.Mode)); err != nil {
			return nil, schemaErrf(path, "panel %q: %v", panel.ID, err)
		}
	}
	required, known := requiredColumns[panel.Kind]
	if !known {
		return nil, schemaErrf(path, "panel %q: unknown kind %q", panel.ID, panel.Kind)
	}
	if len(panel.Columns) == 0 {
		return nil, schemaErrf(path, "panel %q: columns are empty", panel.ID)
	}
	if len(panel.Rows) == 0 {
		return nil, schemaErrf(path, "panel %q: rows are empty", panel.ID)
	}
	for i, row := range panel.Rows {
		if len(row) == 0 {
			return nil, schemaErrf(path, "panel %q: row %d is empty", panel.ID, i)
		}
		for _, col := range required {
			if row[col] == "" {
				return nil, schemaErrf(path, "panel %q: row %d is missing required field %q for kind %q",
					panel.ID, i, col, panel.Kind)
			}
		}
	}

	return &panel, nil
}

func loadIntents(path string) ([]models.Intent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schemaErrf(path, "read failed: %v", err)
	}

	var file struct {
		Intents []models.Intent `json:"intents"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, schemaErrf(path, "invalid JSON: %v", err)
	}
	if len(file.Intents) == 0 {
		return nil, schemaErrf(path, "no intents defined")
	}

	seen := make(map[string]bool)
	for _, in := range file.Intents {
		if in.Name == "" {
			return nil, schemaErrf(path, "intent with empty name")
		}
		if seen[in.Name] {
			return nil, schemaErrf(path, "duplicate intent %q", in.Name)
		}
		seen[in.Name] = true
		if in.Mode != models.ModeAny {
			if _, err := models.ParseMode(string(in.Mode)); err != nil {
				return nil, schemaErrf(path, "intent %q: %v", in.Name, err)
			}
		}
		if in.Target == "" {
			return nil, schemaErrf(path, "intent %q: target is empty", in.Name)
		}
		if len(in.Matchers) == 0 {
			return nil, schemaErrf(path, "intent %q: no matcher rules", in.Name)
		}
		for i, m := range in.Matchers {
			switch m.Kind {
			case models.MatcherSubstring, models.MatcherKeywordSet:
			default:
				return nil, schemaErrf(path, "intent %q: matcher %d has unknown kind %q", in.Name, i, m.Kind)
			}
			if len(m.Patterns) == 0 {
				return nil, schemaErrf(path, "intent %q: matcher %d has no patterns", in.Name, i)
			}
		}
	}

	return file.Intents, nil
}

func loadQuickActions(path string, c *Catalog) ([]models.QuickAction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schemaErrf(path, "read failed: %v", err)
	}

	var file struct {
		QuickActions []models.QuickAction `json:"quick_actions"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, schemaErrf(path, "invalid JSON: %v", err)
	}

	seen := make(map[string]bool)
	for _, qa := range file.QuickActions {
		if qa.ID == "" || qa.Label == "" {
			return nil, schemaErrf(path, "quick action with empty id or label")
		}
		if seen[qa.ID] {
			return nil, schemaErrf(path, "duplicate quick action id %q", qa.ID)
		}
		seen[qa.ID] = true
		if qa.Scope != models.ModeAny {
			if _, err := models.ParseMode(string(qa.Scope)); err != nil {
				return nil, schemaErrf(path, "quick action %q: %v", qa.ID, err)
			}
		}
		// A quick action must point at a declared intent; panel mode
		// mismatches are a runtime concern, a dangling intent is not.
		if _, ok := c.Intent(qa.Intent); !ok {
			return nil, schemaErrf(path, "quick action %q references unknown intent %q", qa.ID, qa.Intent)
		}
	}

	return file.QuickActions, nil
}
