package model

import (
	"fmt"

	"biomassopt/pkg/common"
)

// Interpolator answers point queries over the training surface. A
// fitted interpolator is read-only and safe for concurrent use.
type Interpolator interface {
	Predict(point [common.Dims]float64) (float64, error)
	Ready() bool
	Len() int
}

// unavailable is the explicit degraded state used when the training
// source is missing or the fit failed. The service keeps serving;
// every Predict fails fast with the recorded reason.
type unavailable struct {
	reason string
}

// Unavailable returns an Interpolator representing a model that could
// not be built.
func Unavailable(reason string) Interpolator {
	if reason == "" {
		reason = "interpolator not initialized"
	}
	return unavailable{reason: reason}
}

func (u unavailable) Predict([common.Dims]float64) (float64, error) {
	return 0, fmt.Errorf("interpolator not initialized: %s", u.reason)
}

func (u unavailable) Ready() bool { return false }

func (u unavailable) Len() int { return 0 }
