package i18n

import "testing"

func TestPick(t *testing.T) {
    cases := []struct {
        header string
        want   string
    }{
        {"", LangFR},
        {"fr", LangFR},
        {"en-US,en;q=0.9", LangEN},
        {"ar-DZ", LangAR},
        {"de-DE,es;q=0.8", LangFR},
        {"de-DE, en;q=0.5", LangEN},
    }
    for _, tc := range cases {
        if got := Pick(tc.header); got != tc.want {
            t.Errorf("Pick(%q) = %q, want %q", tc.header, got, tc.want)
        }
    }
}

func TestTranslateFallback(t *testing.T) {
    if got := T(LangEN, "booking.confirmed"); got != "Your reservation is confirmed" {
        t.Errorf("unexpected english translation: %q", got)
    }
    // unknown language falls back to french
    if got := T("xx", "booking.confirmed"); got != T(LangFR, "booking.confirmed") {
        t.Errorf("unknown language should fall back to french, got %q", got)
    }
    // unknown key comes back verbatim
    if got := T(LangFR, "no.such.key"); got != "no.such.key" {
        t.Errorf("unknown key should echo, got %q", got)
    }
}
