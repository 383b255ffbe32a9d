// Package location resolves free-text Malaysian state and district names
// against a static gazetteer and finds locations mentioned in article text.
package location

import "strings"

// State is one gazetteer entry: a canonical state name and its districts in order.
type State struct {
	Name      string
	Districts []string
}

// Gazetteer maps canonical state names to their districts. It is immutable after construction.
type Gazetteer struct {
	states  []State
	byLower map[string]int
	aliases map[string]string
}

// NewGazetteer builds a gazetteer. Aliases map a lower-case variant spelling to a canonical state name.
func NewGazetteer(states []State, aliases map[string]string) *Gazetteer {
	g := &Gazetteer{
		states:  states,
		byLower: make(map[string]int, len(states)),
		aliases: make(map[string]string, len(aliases)),
	}
	for i, s := range states {
		g.byLower[strings.ToLower(s.Name)] = i
	}
	for alias, canonical := range aliases {
		g.aliases[strings.ToLower(alias)] = canonical
	}
	return g
}

// States returns the canonical state names in gazetteer order.
func (g *Gazetteer) States() []string {
	names := make([]string, 0, len(g.states))
	for _, s := range g.states {
		names = append(names, s.Name)
	}
	return names
}

// Districts returns the districts of a canonical state, or nil.
func (g *Gazetteer) Districts(state string) []string {
	if i, ok := g.byLower[strings.ToLower(state)]; ok {
		return g.states[i].Districts
	}
	return nil
}

// Normalize maps a free-text state and district onto canonical gazetteer spellings.
// Each returned value is either an exact gazetteer entry or empty.
func (g *Gazetteer) Normalize(state, district string) (string, string) {
	state = strings.TrimSpace(state)
	district = strings.TrimSpace(district)
	if state == "" && district == "" {
		return "", ""
	}

	canonical, ok := g.lookupState(state)
	if ok {
		return canonical, findFold(g.states[g.byLower[strings.ToLower(canonical)]].Districts, district)
	}
	if district == "" {
		return "", ""
	}

	// Infer the state only when the district name belongs to exactly one state.
	owner := -1
	match := ""
	for i, s := range g.states {
		if d := findFold(s.Districts, district); d != "" {
			if owner >= 0 {
				return "", ""
			}
			owner, match = i, d
		}
	}
	if owner < 0 {
		return "", ""
	}
	return g.states[owner].Name, match
}

func (g *Gazetteer) lookupState(state string) (string, bool) {
	if state == "" {
		return "", false
	}
	lower := strings.ToLower(state)
	if i, ok := g.byLower[lower]; ok {
		return g.states[i].Name, true
	}
	if canonical, ok := g.aliases[lower]; ok {
		if _, known := g.byLower[strings.ToLower(canonical)]; known {
			return canonical, true
		}
	}
	return "", false
}

func findFold(values []string, target string) string {
	if target == "" {
		return ""
	}
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return v
		}
	}
	return ""
}
