package types_test

import (
	"testing"
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Front Brake Pad Replacement", "front-brake-pad-replacement"},
		{"already slug", "front-brake-pad-replacement", "front-brake-pad-replacement"},
		{"mixed separators", "replace_front/brake pads", "replace-front-brake-pads"},
		{"separator runs", "replace   front -- brake", "replace-front-brake"},
		{"punctuation dropped", "what's that clunk? (front)", "whats-that-clunk-front"},
		{"leading and trailing space", "  Oil Change  ", "oil-change"},
		{"diagnostic code", "P0420", "p0420"},
		{"empty", "", ""},
		{"only separators", " -_/ ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, types.Slugify(tc.input)).Equal(tc.want)
		})
	}
}

func TestNewFingerprint(t *testing.T) {
	fp := types.NewFingerprint("2015", "Honda", "Civic", "replace front brakes")
	gt.Value(t, fp).Equal(types.Fingerprint("2015-honda-civic-replace-front-brakes"))

	// Fingerprints normalize case and separators, so request spelling
	// variants share one cache entry
	again := types.NewFingerprint("2015", "HONDA", "CIVIC", "Replace  Front_Brakes")
	gt.Value(t, again).Equal(fp)
}

func TestNewGuideID(t *testing.T) {
	id := types.NewGuideID("2015", "Honda", "Civic", "Front Brake Pad Replacement")
	gt.Value(t, id).Equal(types.GuideID("2015-honda-civic-front-brake-pad-replacement"))
}

func TestPeriodOf(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)

	cases := []struct {
		name string
		at   time.Time
		want types.PeriodKey
	}{
		{"mid month", time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC), "2026-08"},
		{"period boundary uses UTC", time.Date(2026, 9, 1, 3, 0, 0, 0, jst), "2026-08"},
		{"first instant of month", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "2026-09"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, types.PeriodOf(tc.at)).Equal(tc.want)
		})
	}
}

func TestPlan(t *testing.T) {
	gt.Bool(t, types.PlanFree.IsValid()).True()
	gt.Bool(t, types.PlanPremium.IsValid()).True()
	gt.Bool(t, types.Plan("enterprise").IsValid()).False()
	gt.Bool(t, types.Plan("").IsValid()).False()

	gt.Bool(t, types.PlanFree.Metered()).True()
	gt.Bool(t, types.PlanPremium.Metered()).False()
}
