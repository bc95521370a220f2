package voices

import "testing"

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		ua   string
		want Platform
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", PlatformWindows},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", PlatformMac},
		{"Mozilla/5.0 (X11; Linux x86_64)", PlatformLinux},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8)", PlatformAndroid},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", PlatformIOS},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", PlatformIOS},
		{"curl/8.0", PlatformUnknown},
	}
	for _, tc := range cases {
		if got := DetectPlatform(tc.ua); got != tc.want {
			t.Errorf("DetectPlatform(%q) = %q, want %q", tc.ua, got, tc.want)
		}
	}
}

func TestDetectBrowser(t *testing.T) {
	cases := []struct {
		ua   string
		want Browser
	}{
		{"Mozilla/5.0 ... Chrome/120.0 Safari/537.36", BrowserChrome},
		{"Mozilla/5.0 ... Chrome/120.0 Safari/537.36 Edg/120.0", BrowserEdge},
		{"Mozilla/5.0 ... Version/17.0 Safari/605.1.15", BrowserSafari},
		{"Mozilla/5.0 ... Gecko/20100101 Firefox/121.0", BrowserFirefox},
		{"curl/8.0", BrowserUnknown},
	}
	for _, tc := range cases {
		if got := DetectBrowser(tc.ua); got != tc.want {
			t.Errorf("DetectBrowser(%q) = %q, want %q", tc.ua, got, tc.want)
		}
	}
}

func TestScoreAdditive(t *testing.T) {
	cases := []struct {
		name string
		d    Descriptor
		lang string
		p    Platform
		b    Browser
		want int
	}{
		{
			name: "exact locale only",
			d:    Descriptor{Name: "Plain", Lang: "en-US"},
			lang: "en-US", p: PlatformLinux, b: BrowserUnknown,
			want: scoreLocaleMatch,
		},
		{
			name: "base language only",
			d:    Descriptor{Name: "Plain", Lang: "en-GB"},
			lang: "en-US", p: PlatformLinux, b: BrowserUnknown,
			want: scoreLangMatch,
		},
		{
			name: "underscore locale normalized",
			d:    Descriptor{Name: "Plain", Lang: "en_US"},
			lang: "en-US", p: PlatformLinux, b: BrowserUnknown,
			want: scoreLocaleMatch,
		},
		{
			name: "language mismatch scores nothing",
			d:    Descriptor{Name: "Plain", Lang: "fr-FR"},
			lang: "en-US", p: PlatformLinux, b: BrowserUnknown,
			want: 0,
		},
		{
			name: "windows natural stacks vendor and quality",
			d:    Descriptor{Name: "Microsoft Aria Online (Natural)", Lang: "en-US"},
			lang: "en-US", p: PlatformWindows, b: BrowserEdge,
			// locale 100 + microsoft 30 + online(natural) 60 + edge microsoft
			// 30 + edge natural 30 + quality natural 50
			want: 300,
		},
		{
			name: "mac samantha local default",
			d:    Descriptor{Name: "Samantha", Lang: "en-US", LocalService: true, Default: true},
			lang: "en-US", p: PlatformMac, b: BrowserSafari,
			// locale 100 + samantha 40 + safari samantha 30 + local 10 +
			// default 10
			want: 190,
		},
		{
			name: "android google network on chrome",
			d:    Descriptor{Name: "Google US English Network", Lang: "en-US"},
			lang: "en-US", p: PlatformAndroid, b: BrowserChrome,
			// locale 100 + google 40 + network 20 + chrome google 40
			want: 200,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.d, tc.lang, tc.p, tc.b); got != tc.want {
				t.Fatalf("Score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	d := Descriptor{Name: "Microsoft Zira", Lang: "en-US", LocalService: true}
	first := Score(d, "en-US", PlatformWindows, BrowserEdge)
	for i := 0; i < 10; i++ {
		if got := Score(d, "en-US", PlatformWindows, BrowserEdge); got != first {
			t.Fatalf("score changed between calls: %d vs %d", got, first)
		}
	}
}

func TestRankOrderAndTieBreak(t *testing.T) {
	list := []Descriptor{
		{VoiceURI: "uri-c", Name: "Carol", Lang: "en-US"},
		{VoiceURI: "uri-a", Name: "Alice", Lang: "en-US"},
		{VoiceURI: "uri-f", Name: "Fleur", Lang: "fr-FR"},
	}
	ranked := Rank(list, "en-US", PlatformLinux, BrowserUnknown)

	if ranked[0].Name != "Alice" || ranked[1].Name != "Carol" {
		t.Fatalf("tied scores not name-ordered: %v, %v", ranked[0].Name, ranked[1].Name)
	}
	if ranked[2].Name != "Fleur" {
		t.Fatalf("mismatched language ranked above matches")
	}
}
