package voices

import (
	"sort"
	"strings"
)

// Descriptor describes one synthetic voice as reported by the platform.
type Descriptor struct {
	VoiceURI     string `json:"voiceURI"`
	Name         string `json:"name"`
	Lang         string `json:"lang"`
	LocalService bool   `json:"localService"`
	Default      bool   `json:"default"`
}

// Platform is the detected operating system of the speech worker.
type Platform string

const (
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformUnknown Platform = "unknown"
)

// Browser is the detected browser of the speech worker.
type Browser string

const (
	BrowserChrome  Browser = "chrome"
	BrowserEdge    Browser = "edge"
	BrowserSafari  Browser = "safari"
	BrowserFirefox Browser = "firefox"
	BrowserUnknown Browser = "unknown"
)

// DetectPlatform parses a user-agent string. Order matters: Android UAs
// contain "linux" and iOS UAs contain "mac".
func DetectPlatform(ua string) Platform {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "android"):
		return PlatformAndroid
	case strings.Contains(s, "iphone"), strings.Contains(s, "ipad"):
		return PlatformIOS
	case strings.Contains(s, "windows"):
		return PlatformWindows
	case strings.Contains(s, "mac os"), strings.Contains(s, "macintosh"):
		return PlatformMac
	case strings.Contains(s, "linux"):
		return PlatformLinux
	}
	return PlatformUnknown
}

// DetectBrowser parses a user-agent string. Edge and Chrome UAs both
// contain "chrome"; Chrome and Safari UAs both contain "safari".
func DetectBrowser(ua string) Browser {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "edg/"), strings.Contains(s, "edge"):
		return BrowserEdge
	case strings.Contains(s, "firefox"), strings.Contains(s, "fxios"):
		return BrowserFirefox
	case strings.Contains(s, "chrome"), strings.Contains(s, "crios"):
		return BrowserChrome
	case strings.Contains(s, "safari"):
		return BrowserSafari
	}
	return BrowserUnknown
}

// Scoring weights. Bonuses are additive: a voice can be boosted by several
// rules at once.
const (
	scoreLocaleMatch  = 100
	scoreLangMatch    = 50
	bonusLocalService = 10
	bonusDefault      = 10

	// KeepThreshold is the minimum recomputed score at which a previously
	// saved preference is still honored.
	KeepThreshold = 60

	// ViabilityThreshold is the score below which automatic selection
	// falls back to the first available voice.
	ViabilityThreshold = 40
)

type nameBonus struct {
	marker string
	bonus  int
}

// Vendor markers known to indicate high-quality voices per platform.
var platformBonuses = map[Platform][]nameBonus{
	PlatformWindows: {
		{"microsoft", 30},
		{"online (natural)", 60},
	},
	PlatformMac: {
		{"siri", 50},
		{"samantha", 40},
		{"ava", 30},
		{"alex", 30},
	},
	PlatformIOS: {
		{"siri", 50},
		{"samantha", 40},
	},
	PlatformAndroid: {
		{"google", 40},
		{"network", 20},
	},
}

var browserBonuses = map[Browser][]nameBonus{
	BrowserChrome: {
		{"google", 40},
	},
	BrowserEdge: {
		{"microsoft", 30},
		{"natural", 30},
	},
	BrowserSafari: {
		{"samantha", 30},
		{"alex", 20},
	},
}

// Name patterns indicating natural-sounding or premium voices, applied on
// every platform.
var qualityBonuses = []nameBonus{
	{"natural", 50},
	{"neural", 50},
	{"premium", 40},
	{"enhanced", 40},
}

// Score computes the additive heuristic score of one voice for the wanted
// language on the given platform and browser. Pure: identical inputs always
// produce identical scores.
func Score(d Descriptor, lang string, p Platform, b Browser) int {
	s := 0

	dl := normalizeLang(d.Lang)
	wl := normalizeLang(lang)
	switch {
	case dl != "" && dl == wl:
		s += scoreLocaleMatch
	case dl != "" && baseLang(dl) == baseLang(wl):
		s += scoreLangMatch
	}

	name := strings.ToLower(d.Name)
	for _, nb := range platformBonuses[p] {
		if strings.Contains(name, nb.marker) {
			s += nb.bonus
		}
	}
	for _, nb := range browserBonuses[b] {
		if strings.Contains(name, nb.marker) {
			s += nb.bonus
		}
	}
	for _, nb := range qualityBonuses {
		if strings.Contains(name, nb.marker) {
			s += nb.bonus
		}
	}

	if d.LocalService {
		s += bonusLocalService
	}
	if d.Default {
		s += bonusDefault
	}
	return s
}

// Scored pairs a descriptor with its computed score.
type Scored struct {
	Descriptor
	Score int `json:"score"`
}

// Rank scores every voice and returns them best first. Ties break by name
// then URI so the order is stable across recomputations.
func Rank(list []Descriptor, lang string, p Platform, b Browser) []Scored {
	out := make([]Scored, 0, len(list))
	for _, d := range list {
		out = append(out, Scored{Descriptor: d, Score: Score(d, lang, p, b)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].VoiceURI < out[j].VoiceURI
	})
	return out
}

func normalizeLang(lang string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
}

func baseLang(lang string) string {
	if i := strings.IndexByte(lang, '-'); i >= 0 {
		return lang[:i]
	}
	return lang
}
