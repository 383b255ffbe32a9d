package sources

import (
	"net/url"
	"strings"
)

// hostNames maps known hosts to their publication names
var hostNames = map[string]string{
	"www.thestar.com.my":        "The Star",
	"thestar.com.my":            "The Star",
	"www.malaymail.com":         "Malay Mail",
	"malaymail.com":             "Malay Mail",
	"www.nst.com.my":            "New Straits Times",
	"nst.com.my":                "New Straits Times",
	"www.bernama.com":           "Bernama",
	"bernama.com":               "Bernama",
	"www.freemalaysiatoday.com": "Free Malaysia Today",
	"freemalaysiatoday.com":     "Free Malaysia Today",
	"www.theedgemalaysia.com":   "The Edge Malaysia",
	"theedgemalaysia.com":       "The Edge Malaysia",
	"www.theborneopost.com":     "The Borneo Post",
	"theborneopost.com":         "The Borneo Post",
	"www.dailyexpress.com.my":   "Daily Express",
	"dailyexpress.com.my":       "Daily Express",
	"www.malaysiakini.com":      "Malaysiakini",
	"malaysiakini.com":          "Malaysiakini",
	"www.straitstimes.com":      "The Straits Times",
	"straitstimes.com":          "The Straits Times",
	"x.com":                     "X",
	"twitter.com":               "X",
	"mobile.twitter.com":        "X",
	"www.twitter.com":           "X",
	"reddit.com":                "Reddit",
	"www.reddit.com":            "Reddit",
	"youtube.com":               "YouTube",
	"www.youtube.com":           "YouTube",
}

// Second-level labels that sit under a country code (example.com.my).
var genericLabels = map[string]bool{
	"com": true, "net": true, "org": true, "gov": true, "edu": true, "co": true,
}

func hostOf(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// OutletFromLink returns the publication name for a link whose host is in
// the known table, or "".
func OutletFromLink(link string) string {
	return hostNames[hostOf(link)]
}

// MediaNameFromURL names the publication behind a URL: the known-host table
// first, else the registrable domain label title-cased (my-site.com -> My Site).
func MediaNameFromURL(link string) string {
	host := hostOf(link)
	if host == "" {
		return ""
	}
	if name, ok := hostNames[host]; ok {
		return name
	}

	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	base := parts[len(parts)-2]
	if len(parts) >= 3 && genericLabels[base] && len(parts[len(parts)-1]) == 2 {
		base = parts[len(parts)-3]
	}
	return titleWords(strings.ReplaceAll(base, "-", " "))
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
