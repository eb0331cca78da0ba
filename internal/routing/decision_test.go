package routing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediskill/internal/catalog"
	"mediskill/internal/models"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	feePath := write("fee.json", `{
		"id": "fee_and_packages", "mode": "any", "kind": "fees",
		"title": "Biaya", "columns": ["service", "price"],
		"rows": [{"service": "Konsultasi", "price": "Rp 150.000"}]
	}`)
	facilitiesPath := write("facilities.json", `{
		"id": "facilities_grid", "mode": "medical", "kind": "facilities",
		"title": "Fasilitas", "columns": ["name", "category"],
		"rows": [{"name": "Lab", "category": "Penunjang"}]
	}`)
	intentsPath := write("intents.json", `{
		"intents": [
			{"name": "ask_price", "mode": "any", "target": "fee_and_packages",
			 "matchers": [{"kind": "substring", "patterns": ["harga"]}]},
			{"name": "ask_facilities", "mode": "medical", "target": "facilities_grid",
			 "matchers": [{"kind": "substring", "patterns": ["fasilitas"]}]},
			{"name": "ask_ghost", "mode": "any", "target": "panel_gone",
			 "matchers": [{"kind": "substring", "patterns": ["hantu"]}]},
			{"name": "ask_help", "mode": "any", "target": "generative",
			 "matchers": [{"kind": "substring", "patterns": ["bantuan"]}]}
		]
	}`)
	actionsPath := write("quick_actions.json", `{"quick_actions": []}`)

	cat, err := catalog.Load(catalog.Sources{
		QuickActionsPath: actionsPath,
		IntentRulesPath:  intentsPath,
		PanelPaths:       []string{feePath, facilitiesPath},
	})
	require.NoError(t, err)
	return cat
}

func TestDecideNilIntentIsGenerative(t *testing.T) {
	d := Decide(nil, models.ModeMedical, newTestCatalog(t))
	assert.Equal(t, DecisionGenerative, d.Kind)
	assert.Nil(t, d.Panel)
}

func TestDecideGenerativeTarget(t *testing.T) {
	cat := newTestCatalog(t)
	in, ok := cat.Intent("ask_help")
	require.True(t, ok)

	d := Decide(in, models.ModeSoftSkills, cat)
	assert.Equal(t, DecisionGenerative, d.Kind)
}

func TestDecideShowsVisiblePanel(t *testing.T) {
	cat := newTestCatalog(t)
	in, ok := cat.Intent("ask_facilities")
	require.True(t, ok)

	d := Decide(in, models.ModeMedical, cat)
	require.Equal(t, DecisionShowPanel, d.Kind)
	require.NotNil(t, d.Panel)
	assert.Equal(t, "facilities_grid", d.Panel.ID)
}

func TestDecideAnyModePanelVisibleEverywhere(t *testing.T) {
	cat := newTestCatalog(t)
	in, ok := cat.Intent("ask_price")
	require.True(t, ok)

	for _, mode := range []models.Mode{models.ModeMedical, models.ModeSoftSkills} {
		d := Decide(in, mode, cat)
		require.Equal(t, DecisionShowPanel, d.Kind)
		assert.Equal(t, "fee_and_packages", d.Panel.ID)
	}
}

func TestDecideModeMismatchIsUnresolved(t *testing.T) {
	cat := newTestCatalog(t)
	in, ok := cat.Intent("ask_facilities")
	require.True(t, ok)

	// A medical-only panel is never shown in a softskills session.
	d := Decide(in, models.ModeSoftSkills, cat)
	assert.Equal(t, DecisionUnresolvedIntent, d.Kind)
	assert.Nil(t, d.Panel)
	assert.NotEmpty(t, d.Anomaly)
}

func TestDecideUnknownPanelIsUnresolved(t *testing.T) {
	cat := newTestCatalog(t)
	in, ok := cat.Intent("ask_ghost")
	require.True(t, ok)

	d := Decide(in, models.ModeMedical, cat)
	assert.Equal(t, DecisionUnresolvedIntent, d.Kind)
	assert.Contains(t, d.Anomaly, "panel_gone")
}
