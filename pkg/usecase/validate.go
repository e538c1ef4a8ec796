package usecase

import (
	"strings"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// validateRequest rejects impossible vehicle/task combinations before any
// external call. Pure and synchronous: a failed request costs nothing.
func (uc *UseCases) validateRequest(req model.GuideRequest) error {
	if strings.TrimSpace(req.Task) == "" {
		return goerr.Wrap(types.ErrEmptyTask, "request rejected")
	}

	v := req.Vehicle
	if _, ok := uc.catalog.Lookup(v.Make); !ok {
		return goerr.Wrap(types.ErrUnknownVehicle, "unknown make",
			goerr.V("make", v.Make))
	}
	if !uc.catalog.InProduction(v.Make, v.Model, v.YearInt()) {
		return goerr.Wrap(types.ErrUnknownVehicle, "model unknown or year outside production range",
			goerr.V("make", v.Make),
			goerr.V("model", v.Model),
			goerr.V("year", v.Year))
	}

	return nil
}
