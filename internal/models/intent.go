package models

// TargetGenerative marks an intent that routes to retrieval-augmented
// generation instead of a panel.
const TargetGenerative = "generative"

// MatcherKind selects the matching semantics of a rule. Rules are data;
// the engine only dispatches on the kind.
type MatcherKind string

const (
	// MatcherSubstring matches when any pattern occurs as a substring of
	// the normalized user text.
	MatcherSubstring MatcherKind = "substring"
	// MatcherKeywordSet matches when every keyword occurs as a whole word
	// in the normalized user text.
	MatcherKeywordSet MatcherKind = "keyword_set"
)

// Matcher is one rule of an intent, evaluated in order.
type Matcher struct {
	Kind     MatcherKind `json:"kind"`
	Patterns []string    `json:"patterns"`
}

// Intent is a named, rule-matched user goal. Target is either a panel id or
// TargetGenerative. Mode limits text matching to one session mode; ModeAny
// intents match in every mode.
type Intent struct {
	Name     string    `json:"name"`
	Mode     Mode      `json:"mode"`
	Matchers []Matcher `json:"matchers"`
	Target   string    `json:"target"`
}
