package booking

import (
    "testing"
    "time"
)

func day(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceThreeNightStay(t *testing.T) {
    // 2024-12-15 → 2024-12-18 at 5000/night with a 2000 cleaning fee.
    q, err := Price(5000, 2000, day(2024, 12, 15), day(2024, 12, 18))
    if err != nil {
        t.Fatalf("Price error: %v", err)
    }
    if q.Nights != 3 {
        t.Fatalf("nights = %d, want 3", q.Nights)
    }
    if q.Base != 15000 || q.CleaningFee != 2000 || q.Tax != 500 {
        t.Fatalf("unexpected breakdown: %+v", q)
    }
    if q.Total != 17500 {
        t.Fatalf("total = %d, want 17500", q.Total)
    }
}

func TestPriceRejectsBadRange(t *testing.T) {
    if _, err := Price(5000, 0, day(2024, 12, 18), day(2024, 12, 18)); err != ErrInvalidStay {
        t.Fatalf("zero-night stay: err = %v, want ErrInvalidStay", err)
    }
    if _, err := Price(5000, 0, day(2024, 12, 18), day(2024, 12, 15)); err != ErrInvalidStay {
        t.Fatalf("negative stay: err = %v, want ErrInvalidStay", err)
    }
}
