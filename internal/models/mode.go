package models

import "fmt"

// Mode is the top-level domain context of a session. It restricts which
// intents match and which panels may be shown.
type Mode string

const (
	ModeMedical    Mode = "medical"
	ModeSoftSkills Mode = "softskills"

	// ModeAny is not a session mode. It marks panels, intents and quick
	// actions that are valid regardless of the active mode.
	ModeAny Mode = "any"
)

// ParseMode validates a mode string coming from configuration or a request.
// ModeAny is only legal on catalog entries, never as a session mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMedical:
		return ModeMedical, nil
	case ModeSoftSkills:
		return ModeSoftSkills, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Allows reports whether an entry scoped to m is visible in the active
// session mode.
func (m Mode) Allows(active Mode) bool {
	return m == ModeAny || m == active
}
