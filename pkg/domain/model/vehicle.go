package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Vehicle identifies a specific make/model/year. Values are immutable after
// construction; use NewVehicle to get normalization and the year check.
type Vehicle struct {
	Year  string
	Make  string
	Model string
}

// NewVehicle constructs a Vehicle, trimming fields and requiring a 4-digit
// year. Catalog membership is checked separately by the validator.
func NewVehicle(year, make, model string) (Vehicle, error) {
	v := Vehicle{
		Year:  strings.TrimSpace(year),
		Make:  strings.TrimSpace(make),
		Model: strings.TrimSpace(model),
	}
	if !yearPattern.MatchString(v.Year) {
		return Vehicle{}, goerr.Wrap(types.ErrUnknownVehicle, "year must be 4 digits", goerr.V("year", year))
	}
	if v.Make == "" || v.Model == "" {
		return Vehicle{}, goerr.Wrap(types.ErrUnknownVehicle, "make and model are required")
	}
	return v, nil
}

// YearInt returns the production year as an integer
func (v Vehicle) YearInt() int {
	n, _ := strconv.Atoi(v.Year)
	return n
}

// Label returns the human-readable form, e.g. "2015 Honda Civic"
func (v Vehicle) Label() string {
	return fmt.Sprintf("%s %s %s", v.Year, v.Make, v.Model)
}

// Slug returns the URL-safe form, e.g. "2015-honda-civic"
func (v Vehicle) Slug() string {
	return types.Slugify(v.Label())
}

// GuideRequest pairs a vehicle with a free-text repair task. The task is
// never validated against a vocabulary; symptoms, diagnostic codes and free
// text are all forwarded to generation as-is.
type GuideRequest struct {
	Vehicle Vehicle
	Task    string
}

// Fingerprint returns the pre-generation dedup key for this request
func (r GuideRequest) Fingerprint() types.Fingerprint {
	return types.NewFingerprint(r.Vehicle.Year, r.Vehicle.Make, r.Vehicle.Model, r.Task)
}
