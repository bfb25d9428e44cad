package booking

import (
    "testing"
    "time"
)

func TestNewReferenceFormat(t *testing.T) {
    at := time.Date(2024, 12, 15, 9, 30, 0, 0, time.UTC)
    for i := 0; i < 50; i++ {
        ref, err := NewReference(at)
        if err != nil {
            t.Fatalf("NewReference error: %v", err)
        }
        if !ValidReference(ref) {
            t.Fatalf("generated reference %q does not match format", ref)
        }
        if ref[:11] != "LA-20241215" {
            t.Fatalf("reference %q does not carry the generation date", ref)
        }
    }
}

func TestNewConfirmationCodeFormat(t *testing.T) {
    for i := 0; i < 50; i++ {
        code, err := NewConfirmationCode()
        if err != nil {
            t.Fatalf("NewConfirmationCode error: %v", err)
        }
        if !ValidConfirmationCode(code) {
            t.Fatalf("generated code %q does not match format", code)
        }
    }
}

func TestParseReferenceRoundTrip(t *testing.T) {
    const ref = "LA-20241215-0042"
    parsed, err := ParseReference(ref)
    if err != nil {
        t.Fatalf("ParseReference error: %v", err)
    }
    if parsed.Prefix != "LA" || parsed.Date != "20241215" || parsed.Suffix != "0042" {
        t.Fatalf("unexpected segments: %#v", parsed)
    }
    if got := parsed.Format(); got != ref {
        t.Fatalf("round-trip mismatch: got %q want %q", got, ref)
    }
}

func TestParseReferenceRejectsMalformed(t *testing.T) {
    for _, s := range []string{"", "LA-2024121-0042", "XX-20241215-0042", "LA-20241215-42", "la-20241215-0042"} {
        if _, err := ParseReference(s); err == nil {
            t.Errorf("ParseReference(%q) accepted malformed input", s)
        }
    }
}
