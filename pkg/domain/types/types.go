package types

import (
	"strings"
	"time"
	"unicode"
)

// GuideID is the canonical identifier of a committed repair guide, derived
// from the vehicle and the generated title. Two requests producing the same
// title for the same vehicle share one guide, which is the intended
// de-duplication behavior.
type GuideID string

// Fingerprint is the pre-generation dedup key derived from the vehicle and
// the raw task string. It is the primary cache key: reservation, commit and
// abort all operate on it, so title non-determinism can never duplicate work
// for the same request.
type Fingerprint string

// SubjectID identifies the caller (user ID or anonymous session ID)
type SubjectID string

// PeriodKey identifies a usage accounting period (calendar month, UTC)
type PeriodKey string

func (x GuideID) String() string     { return string(x) }
func (x Fingerprint) String() string { return string(x) }
func (x SubjectID) String() string   { return string(x) }
func (x PeriodKey) String() string   { return string(x) }

// Slugify lowercases s and collapses whitespace and separator runs into
// single hyphens, dropping any other punctuation. "Front Brake Pad
// Replacement" becomes "front-brake-pad-replacement".
func Slugify(s string) string {
	var sb strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			pendingHyphen = true
		}
	}
	return sb.String()
}

// NewFingerprint builds the pre-generation cache key from vehicle parts and
// the raw task string
func NewFingerprint(year, make, model, task string) Fingerprint {
	return Fingerprint(Slugify(year + " " + make + " " + model + " " + task))
}

// NewGuideID builds the canonical guide id from vehicle parts and the
// generated title
func NewGuideID(year, make, model, title string) GuideID {
	return GuideID(Slugify(year + " " + make + " " + model + " " + title))
}

// PeriodOf returns the accounting period containing t
func PeriodOf(t time.Time) PeriodKey {
	return PeriodKey(t.UTC().Format("2006-01"))
}

// CurrentPeriod returns the accounting period containing now
func CurrentPeriod() PeriodKey {
	return PeriodOf(time.Now())
}
