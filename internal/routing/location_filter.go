package routing

import (
	"strings"

	"mediskill/internal/intent"
	"mediskill/internal/models"
)

const allJakarta = "ALL_JAKARTA"

// citySynonyms maps colloquial Jakarta-area names to the city values used in
// the location panel rows.
var citySynonyms = map[string]string{
	"jakarta pusat":   "Jakarta Pusat",
	"jakpus":          "Jakarta Pusat",
	"central jakarta": "Jakarta Pusat",

	"jakarta barat": "Jakarta Barat",
	"jakbar":        "Jakarta Barat",
	"west jakarta":  "Jakarta Barat",

	"jakarta utara": "Jakarta Utara",
	"jakut":         "Jakarta Utara",
	"north jakarta": "Jakarta Utara",

	"jakarta selatan": "Jakarta Selatan",
	"jaksel":          "Jakarta Selatan",
	"south jakarta":   "Jakarta Selatan",

	"jakarta timur": "Jakarta Timur",
	"jaktim":        "Jakarta Timur",
	"east jakarta":  "Jakarta Timur",

	"dki jakarta":     allJakarta,
	"jakarta":         allJakarta,
	"sekitar jakarta": allJakarta,
}

// FilterLocationPanel narrows a location panel to the rows matching the
// cities or districts mentioned in the user text. District matches take
// priority over city matches. When nothing matches, or a match would filter
// every row out, the panel is returned as-is. The catalog's panel is never
// modified.
func FilterLocationPanel(panel *models.Panel, userText string) *models.Panel {
	if panel == nil || panel.Kind != models.PanelKindLocation || userText == "" {
		return panel
	}

	text := intent.Normalize(userText)
	cities, districts := matchLocations(text, panel.Rows)

	if len(districts) > 0 {
		rows := filterRows(panel.Rows, "district", districts)
		if len(rows) > 0 {
			return panel.WithRows(rows)
		}
		return panel
	}
	if len(cities) > 0 {
		rows := filterRows(panel.Rows, "city", cities)
		if len(rows) > 0 {
			return panel.WithRows(rows)
		}
	}
	return panel
}

func matchLocations(text string, rows []map[string]string) (cities, districts map[string]bool) {
	cities = make(map[string]bool)
	districts = make(map[string]bool)

	// 1) colloquial synonyms
	for key, mapped := range citySynonyms {
		if !strings.Contains(text, key) {
			continue
		}
		if mapped == allJakarta {
			for _, r := range rows {
				if c := r["city"]; c != "" {
					cities[c] = true
				}
			}
		} else {
			cities[mapped] = true
		}
	}

	// 2) exact city/district values from the rows
	for _, r := range rows {
		if c := r["city"]; c != "" && strings.Contains(text, strings.ToLower(c)) {
			cities[c] = true
		}
		if d := r["district"]; d != "" && strings.Contains(text, strings.ToLower(d)) {
			districts[d] = true
		}
	}

	// 3) token fallback: short fragments like "selatan" or a district word
	if len(cities) == 0 && len(districts) == 0 {
		words := make(map[string]bool)
		for _, w := range strings.Fields(text) {
			words[w] = true
		}
		for _, r := range rows {
			for _, tok := range strings.Fields(strings.ToLower(r["city"])) {
				if len(tok) >= 3 && words[tok] {
					cities[r["city"]] = true
				}
			}
			for _, tok := range strings.Fields(strings.ToLower(r["district"])) {
				if len(tok) >= 3 && words[tok] {
					districts[r["district"]] = true
				}
			}
		}
	}

	return cities, districts
}

func filterRows(rows []map[string]string, field string, wanted map[string]bool) []map[string]string {
	var out []map[string]string
	for _, r := range rows {
		if wanted[r[field]] {
			out = append(out, r)
		}
	}
	return out
}
