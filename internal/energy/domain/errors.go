package domain

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrAmbiguousProject = errors.New("ambiguous project title")
	ErrShadingHasFloors = errors.New("shading mass has mass floors")
	ErrEnergyModel      = errors.New("energy model unavailable")
	ErrSunSettings      = errors.New("sun settings unavailable")
	ErrRunNotFound      = errors.New("analysis run not found")
	ErrBatchNotFound    = errors.New("analysis batch not found")
)
