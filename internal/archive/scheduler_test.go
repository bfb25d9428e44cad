package archive

import (
    "testing"
    "time"
)

func TestDue(t *testing.T) {
    now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
    ago := func(d time.Duration) *time.Time {
        ts := now.Add(-d)
        return &ts
    }
    cases := []struct {
        name      string
        lastRun   *time.Time
        frequency string
        want      bool
    }{
        {"never ran", nil, "daily", true},
        {"daily not due", ago(2 * time.Hour), "daily", false},
        {"daily due", ago(25 * time.Hour), "daily", true},
        {"hourly due", ago(61 * time.Minute), "hourly", true},
        {"hourly not due", ago(10 * time.Minute), "hourly", false},
        {"weekly not due", ago(3 * 24 * time.Hour), "weekly", false},
        {"weekly due", ago(8 * 24 * time.Hour), "weekly", true},
        {"unknown frequency defaults daily", ago(25 * time.Hour), "monthly", true},
    }
    for _, tc := range cases {
        if got := due(tc.lastRun, tc.frequency, now); got != tc.want {
            t.Errorf("%s: due = %v, want %v", tc.name, got, tc.want)
        }
    }
}
