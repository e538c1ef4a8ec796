package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across layers. HTTP and CLI surfaces map these to
// user-facing outcomes, so the messages must distinguish "this vehicle/task
// is impossible" from "generation temporarily failed" from the paywall.
var (
	// ErrEmptyTask and ErrUnknownVehicle reject a request before any
	// external call is made
	ErrEmptyTask      = goerr.New("task must not be empty")
	ErrUnknownVehicle = goerr.New("unknown vehicle or year out of production range")

	// ErrGenerationFailed means the text backend exhausted its retry budget
	// or returned output violating the structural contract
	ErrGenerationFailed = goerr.New("guide generation temporarily failed, try again")

	// ErrQuotaExhausted is the paywall signal. It is an expected outcome,
	// not a failure: the request was valid but the free-tier quota is spent.
	ErrQuotaExhausted = goerr.New("free generation quota exhausted")

	// ErrGenerationInFlight means another caller holds the reservation for
	// the same fingerprint and its result did not commit within the wait
	// budget
	ErrGenerationInFlight = goerr.New("guide generation already in progress, try again shortly")

	// ErrAlreadyReserved is returned by GuideRepository.Reserve when a
	// pending or committed entry exists for the fingerprint
	ErrAlreadyReserved = goerr.New("guide already reserved")

	// ErrNotFound is returned by repositories for missing entries
	ErrNotFound = goerr.New("not found")
)
