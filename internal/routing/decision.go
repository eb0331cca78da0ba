// Package routing holds the response-mode decision: given a resolved intent
// and the active mode, choose between a pre-authored panel and generation.
package routing

import (
	"fmt"

	"mediskill/internal/catalog"
	"mediskill/internal/models"
)

type DecisionKind string

const (
	// DecisionShowPanel serves the attached pre-authored panel; no
	// retrieval or generation happens for the turn.
	DecisionShowPanel DecisionKind = "show_panel"
	// DecisionGenerative routes the turn to retrieval-augmented generation.
	DecisionGenerative DecisionKind = "generative"
	// DecisionUnresolvedIntent means the intent pointed at a panel that is
	// absent or not visible in the active mode. Recoverable: the caller
	// downgrades to generative handling and records the anomaly.
	DecisionUnresolvedIntent DecisionKind = "unresolved_intent"
)

type Decision struct {
	Kind  DecisionKind
	Panel *models.Panel
	// Anomaly describes the mismatch for DecisionUnresolvedIntent.
	Anomaly string
}

// Decide maps a resolved intent (nil when nothing matched) to a routing
// decision. A panel is only ever shown when its mode is "any" or equals the
// active mode; the router enforces this even if the rule data points at a
// mismatched panel.
func Decide(in *models.Intent, mode models.Mode, c *catalog.Catalog) Decision {
	if in == nil || in.Target == models.TargetGenerative {
		return Decision{Kind: DecisionGenerative}
	}

	panel, ok := c.Lookup(in.Target)
	if !ok {
		return Decision{
			Kind:    DecisionUnresolvedIntent,
			Anomaly: fmt.Sprintf("intent %q targets unknown panel %q", in.Name, in.Target),
		}
	}
	if !panel.Mode.Allows(mode) {
		return Decision{
			Kind: DecisionUnresolvedIntent,
			Anomaly: fmt.Sprintf("intent %q targets panel %q scoped to mode %q, active mode is %q",
				in.Name, panel.ID, panel.Mode, mode),
		}
	}

	return Decision{Kind: DecisionShowPanel, Panel: panel}
}
