package catalog

import (
	"mediskill/internal/models"
)

// Catalog is the process-wide, read-only set of panels, quick actions and
// intent rules. It is built once by Load and shared by all sessions without
// locking; nothing mutates it afterwards.
type Catalog struct {
	panels     map[string]*models.Panel
	panelOrder []string
	actions    []models.QuickAction
	actionByID map[string]*models.QuickAction
	intents    []models.Intent
}

// Lookup returns the panel with the given id.
func (c *Catalog) Lookup(id string) (*models.Panel, bool) {
	p, ok := c.panels[id]
	return p, ok
}

// Panels returns every panel in declaration order.
func (c *Catalog) Panels() []*models.Panel {
	out := make([]*models.Panel, 0, len(c.panelOrder))
	for _, id := range c.panelOrder {
		out = append(out, c.panels[id])
	}
	return out
}

// PanelsForMode returns, in declaration order, every panel visible in the
// given session mode.
func (c *Catalog) PanelsForMode(mode models.Mode) []*models.Panel {
	var out []*models.Panel
	for _, id := range c.panelOrder {
		if p := c.panels[id]; p.Mode.Allows(mode) {
			out = append(out, p)
		}
	}
	return out
}

// QuickAction returns the quick action with the given id.
func (c *Catalog) QuickAction(id string) (*models.QuickAction, bool) {
	qa, ok := c.actionByID[id]
	return qa, ok
}

// QuickActionsForMode returns the quick actions offered in the given session
// mode: global actions plus the mode-specific ones, in declaration order.
func (c *Catalog) QuickActionsForMode(mode models.Mode) []models.QuickAction {
	var out []models.QuickAction
	for _, qa := range c.actions {
		if qa.Scope.Allows(mode) {
			out = append(out, qa)
		}
	}
	return out
}

// Intents returns the intent rules in declaration order. The returned slice
// is shared and must not be modified.
func (c *Catalog) Intents() []models.Intent {
	return c.intents
}

// Intent returns the intent with the given name.
func (c *Catalog) Intent(name string) (*models.Intent, bool) {
	for i := range c.intents {
		if c.intents[i].Name == name {
			return &c.intents[i], true
		}
	}
	return nil, false
}
