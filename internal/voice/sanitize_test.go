package voice

import "testing"

func TestSanitizeForSpeech(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "take me to the lab", "take me to the lab"},
		{"markdown emphasis stripped", "**Bold** and _under_ and `code` and #tag", "Bold and under and code and tag"},
		{"emoticons stripped", "great job \U0001F600", "great job"},
		{"pictographs stripped", "launch \U0001F680 now", "launch  now"},
		{"misc symbols stripped", "sunny ☀ day", "sunny  day"},
		{"dingbats stripped", "done ✅✔", "done"},
		{"flags stripped", "from \U0001F1EB\U0001F1F7", "from"},
		{"surrounding whitespace trimmed", "  hello  ", "hello"},
		{"empty input", "", ""},
		{"only markup becomes empty", "*** ### ```", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeForSpeech(tc.in); got != tc.want {
				t.Fatalf("SanitizeForSpeech(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeForSpeechIdempotent(t *testing.T) {
	in := "**Take** me to the _lab_ \U0001F600"
	once := SanitizeForSpeech(in)
	twice := SanitizeForSpeech(once)
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}
