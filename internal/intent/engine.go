// Package intent maps free-text user input, or an explicit quick-action
// click, to zero-or-one recognized intent. Matching is driven entirely by
// the rule data in the catalog; the engine holds no state of its own.
package intent

import (
	"strings"
	"unicode"

	"mediskill/internal/catalog"
	"mediskill/internal/models"
)

type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Resolve returns the intent for one user turn, or nil when nothing matches.
//
// An explicit quick action always dominates text matching, whatever the user
// typed. Otherwise intents are evaluated in declaration order, restricted to
// those valid for the active mode plus global ones; the first intent with a
// matching rule wins. Declaration order is the only tie-break.
func (e *Engine) Resolve(userText, explicitActionID string, mode models.Mode) *models.Intent {
	if explicitActionID != "" {
		qa, ok := e.catalog.QuickAction(explicitActionID)
		if !ok {
			return nil
		}
		in, _ := e.catalog.Intent(qa.Intent)
		return in
	}

	text := Normalize(userText)
	if text == "" {
		return nil
	}
	words := tokenize(text)

	intents := e.catalog.Intents()
	for i := range intents {
		in := &intents[i]
		if !in.Mode.Allows(mode) {
			continue
		}
		for _, m := range in.Matchers {
			if matches(m, text, words) {
				return in
			}
		}
	}
	return nil
}

// Normalize case-folds, trims and collapses whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func tokenize(normalized string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}
	return words
}

func matches(m models.Matcher, text string, words map[string]bool) bool {
	switch m.Kind {
	case models.MatcherSubstring:
		for _, p := range m.Patterns {
			if strings.Contains(text, Normalize(p)) {
				return true
			}
		}
		return false
	case models.MatcherKeywordSet:
		for _, p := range m.Patterns {
			if !words[Normalize(p)] {
				return false
			}
		}
		return true
	default:
		// Unknown kinds are rejected at load time.
		return false
	}
}
