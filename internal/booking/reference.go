// Package booking generates and validates the human-shareable identifiers
// attached to reservations: booking references (LA-YYYYMMDD-NNNN) and
// 6-character confirmation codes.  Uniqueness is not guaranteed here;
// the reservations table carries unique indexes on both columns and the
// repository regenerates on duplicate-key conflicts.
package booking

import (
    "crypto/rand"
    "errors"
    "fmt"
    "math/big"
    "regexp"
    "strings"
    "time"
)

// MaxAttempts bounds how many times a caller may regenerate an identifier
// after a uniqueness conflict before giving up.
const MaxAttempts = 10

// ErrReferenceExhausted is returned when a unique booking reference or
// confirmation code could not be produced within MaxAttempts tries.
// Callers must treat this as a hard failure (HTTP 500); it is not
// retried further up the stack.
var ErrReferenceExhausted = errors.New("booking identifier generation exhausted")

var (
    refPattern  = regexp.MustCompile(`^LA-\d{8}-\d{4}$`)
    codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

// confirmation codes draw from uppercase letters and digits only so they
// survive being read over the phone.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewReference builds a booking reference for the given generation time:
// the literal prefix "LA", the date as YYYYMMDD and a random 4-digit
// suffix.  The suffix is drawn from crypto/rand.
func NewReference(t time.Time) (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(10000))
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("LA-%s-%04d", t.UTC().Format("20060102"), n.Int64()), nil
}

// NewConfirmationCode returns a random 6-character uppercase alphanumeric
// code drawn from crypto/rand.
func NewConfirmationCode() (string, error) {
    var b strings.Builder
    b.Grow(6)
    max := big.NewInt(int64(len(codeAlphabet)))
    for i := 0; i < 6; i++ {
        n, err := rand.Int(rand.Reader, max)
        if err != nil {
            return "", err
        }
        b.WriteByte(codeAlphabet[n.Int64()])
    }
    return b.String(), nil
}

// ValidReference reports whether s matches the LA-YYYYMMDD-NNNN format.
// Only the shape is checked; the date digits are not range-validated.
func ValidReference(s string) bool { return refPattern.MatchString(s) }

// ValidConfirmationCode reports whether s is a 6-character uppercase
// alphanumeric code.
func ValidConfirmationCode(s string) bool { return codePattern.MatchString(s) }

// Reference is the decomposed form of a booking reference.
type Reference struct {
    Prefix string // always "LA"
    Date   string // YYYYMMDD segment
    Suffix string // 4-digit random segment
}

// ParseReference splits a formatted booking reference into its three
// segments.  It returns an error when the input does not match the
// expected shape.
func ParseReference(s string) (Reference, error) {
    if !ValidReference(s) {
        return Reference{}, fmt.Errorf("malformed booking reference %q", s)
    }
    parts := strings.SplitN(s, "-", 3)
    return Reference{Prefix: parts[0], Date: parts[1], Suffix: parts[2]}, nil
}

// Format reassembles a Reference into its wire form.  Parsing a
// reference and formatting it again round-trips the original string.
func (r Reference) Format() string {
    return r.Prefix + "-" + r.Date + "-" + r.Suffix
}
