package location

import (
	"regexp"
	"strings"

	"github.com/healthshield/mentions-bot/internal/models"
)

// ruleStates is scanned in order; the first state name found in the text wins.
var ruleStates = []string{
	"Johor", "Kedah", "Kelantan", "Melaka", "Negeri Sembilan", "Pahang",
	"Penang", "Pulau Pinang", "Perak", "Perlis", "Sabah", "Sarawak",
	"Selangor", "Terengganu", "Kuala Lumpur", "Labuan", "Putrajaya",
}

type locality struct {
	name     string
	state    string
	district string
	pattern  *regexp.Regexp
}

func newLocality(name, state, district string) locality {
	return locality{
		name:     name,
		state:    state,
		district: district,
		pattern:  regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`),
	}
}

// Well-known towns and municipalities, mapped onto the gazetteer district that contains them.
var localities = []locality{
	newLocality("Petaling Jaya", "Selangor", "Petaling"),
	newLocality("Shah Alam", "Selangor", "Petaling"),
	newLocality("Subang Jaya", "Selangor", "Petaling"),
	newLocality("Klang", "Selangor", "Klang"),
	newLocality("Gombak", "Selangor", "Gombak"),
	newLocality("Hulu Langat", "Selangor", "Hulu Langat"),
	newLocality("Hulu Selangor", "Selangor", "Hulu Selangor"),
	newLocality("Sepang", "Selangor", "Sepang"),
	newLocality("Sabak Bernam", "Selangor", "Sabak Bernam"),
	newLocality("Kuala Langat", "Selangor", "Kuala Langat"),
	newLocality("George Town", "Pulau Pinang", "Timur Laut"),
	newLocality("Butterworth", "Pulau Pinang", "Seberang Perai Utara"),
	newLocality("Seberang Perai", "Pulau Pinang", ""),
	newLocality("Ipoh", "Perak", "Kinta"),
	newLocality("Johor Bahru", "Johor", "Johor Bahru"),
	newLocality("Kota Kinabalu", "Sabah", "Kota Kinabalu"),
	newLocality("Kuching", "Sarawak", "Kuching"),
	newLocality("Miri", "Sarawak", "Miri"),
	newLocality("Sandakan", "Sabah", "Sandakan"),
	newLocality("Alor Setar", "Kedah", "Kota Setar"),
	newLocality("Kuantan", "Pahang", "Kuantan"),
	newLocality("Seremban", "Negeri Sembilan", "Seremban"),
	newLocality("Melaka", "Melaka", ""),
	newLocality("Kangar", "Perlis", "Kangar"),
	newLocality("Kuala Terengganu", "Terengganu", "Kuala Terengganu"),
}

// MatchRules scans text for a state name (substring, list order) and a known
// locality (whole word, list order) and returns whichever matched. When both
// match and disagree, the scanned state wins and the locality's district is
// kept only if it also belongs to that state.
func MatchRules(text string) (models.Location, bool) {
	if strings.TrimSpace(text) == "" {
		return models.Location{}, false
	}

	state := scanState(text)
	l, hasLocality := scanLocality(text)

	switch {
	case hasLocality && (state == "" || state == l.state):
		return models.Location{State: l.state, District: l.district}, true
	case hasLocality:
		st, district := Normalize(state, l.district)
		return models.Location{State: st, District: district}, true
	case state != "":
		return models.Location{State: state}, true
	default:
		return models.Location{}, false
	}
}

func scanState(text string) string {
	lowered := strings.ToLower(text)
	for _, s := range ruleStates {
		if strings.Contains(lowered, strings.ToLower(s)) {
			if state, _ := Normalize(s, ""); state != "" {
				return state
			}
		}
	}
	return ""
}

func scanLocality(text string) (locality, bool) {
	for _, l := range localities {
		if l.pattern.MatchString(text) {
			return l, true
		}
	}
	return locality{}, false
}
