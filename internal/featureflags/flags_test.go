package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"0":     false,
		"false": false,
		"1":     true,
		"TRUE":  true,
		" yes ": true,
		"on":    true,
	}
	for value, want := range cases {
		t.Setenv("FLAG_LIVE_FEED", value)
		if got := Enabled(LiveFeed); got != want {
			t.Errorf("FLAG_LIVE_FEED=%q: got %v, want %v", value, got, want)
		}
	}
}
