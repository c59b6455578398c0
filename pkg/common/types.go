package common

import (
	"fmt"
	"math"
)

// Dims is the fixed input dimensionality of the training table.
const Dims = 4

// InputVector holds the four facility variables in evaluation order.
type InputVector struct {
	FuelPrice     float64 `json:"fuel_price"`
	CommodityCost float64 `json:"commodity_cost"`
	EnergyPrice   float64 `json:"energy_price"`
	WeatherIndex  float64 `json:"weather_index"`
}

// Values returns the vector in the fixed column order used by the
// training table and the wire protocol.
func (v InputVector) Values() [Dims]float64 {
	return [Dims]float64{v.FuelPrice, v.CommodityCost, v.EnergyPrice, v.WeatherIndex}
}

// VectorOf builds an InputVector from fixed-order values.
func VectorOf(vals [Dims]float64) InputVector {
	return InputVector{
		FuelPrice:     vals[0],
		CommodityCost: vals[1],
		EnergyPrice:   vals[2],
		WeatherIndex:  vals[3],
	}
}

// CalcRecord is the basic unit stored and transferred for one
// completed calculation.
type CalcRecord struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	InputVector
	CalculatedOutput float64 `json:"calculated_output"`
}

// String is for debug printing.
func (r *CalcRecord) String() string {
	return fmt.Sprintf("CalcRecord{ID: %d, Output: %.2f}", r.ID, r.CalculatedOutput)
}

// Round2 rounds half away from zero to 2 decimal places. Every output
// passes through this before being reported or persisted.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
