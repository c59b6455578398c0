package model

import (
	"math"
	"testing"

	"biomassopt/pkg/common"
)

var trainPoints = [][common.Dims]float64{
	{0.5, 1.0, 0.5, 20},
	{1.0, 5.0, 1.0, 40},
	{2.0, 8.0, 1.5, 55},
	{3.0, 10.0, 2.0, 60},
	{4.0, 15.0, 2.5, 85},
	{5.0, 20.0, 3.5, 100},
	{1.5, 3.0, 0.8, 30},
	{2.5, 12.0, 1.2, 70},
	{3.5, 6.0, 2.8, 45},
	{4.5, 18.0, 3.0, 90},
}

var trainValues = []float64{35.2, 42.0, 48.5, 52.3, 61.0, 65.1, 39.4, 55.7, 50.2, 63.8}

func fitTestModel(t *testing.T) *RBF {
	t.Helper()
	r, err := Fit(trainPoints, trainValues)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return r
}

func TestFitExactAtTrainingPoints(t *testing.T) {
	r := fitTestModel(t)
	for i, p := range trainPoints {
		got, err := r.Predict(p)
		if err != nil {
			t.Fatalf("Predict point %d: %v", i, err)
		}
		if math.Abs(got-trainValues[i]) > 1e-6 {
			t.Errorf("point %d: got %v, want %v", i, got, trainValues[i])
		}
	}
}

func TestPredictDistinctInputsDiffer(t *testing.T) {
	r := fitTestModel(t)
	a, err := r.Predict([common.Dims]float64{1, 5, 1, 40})
	if err != nil {
		t.Fatalf("Predict a: %v", err)
	}
	b, err := r.Predict([common.Dims]float64{4, 15, 2.5, 85})
	if err != nil {
		t.Fatalf("Predict b: %v", err)
	}
	if a == b {
		t.Errorf("distinct inputs produced identical output %v", a)
	}
}

func TestPredictExtrapolatesFarOutsideHull(t *testing.T) {
	r := fitTestModel(t)
	got, err := r.Predict([common.Dims]float64{50, 50, 50, 500})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("extrapolation produced non-finite value %v", got)
	}

	// An extrapolating interpolant must not collapse to a constant
	// (mean) fallback outside the hull.
	var mean float64
	for _, v := range trainValues {
		mean += v
	}
	mean /= float64(len(trainValues))
	if math.Abs(got-mean) < 1e-9 {
		t.Errorf("extrapolation returned the training mean %v, looks like a constant fallback", mean)
	}

	other, err := r.Predict([common.Dims]float64{60, 70, 80, 600})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got == other {
		t.Errorf("two distinct out-of-hull points produced identical output %v", got)
	}
}

func TestFitTwoPoints(t *testing.T) {
	points := [][common.Dims]float64{
		{0.5, 1.0, 0.5, 20},
		{5.0, 20.0, 3.5, 100},
	}
	values := []float64{35.2, 65.1}
	r, err := Fit(points, values)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for i, p := range points {
		got, err := r.Predict(p)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if math.Abs(got-values[i]) > 1e-6 {
			t.Errorf("point %d: got %v, want %v", i, got, values[i])
		}
	}
}

func TestFitSinglePoint(t *testing.T) {
	r, err := Fit([][common.Dims]float64{{1, 2, 3, 4}}, []float64{7.5})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	got, err := r.Predict([common.Dims]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.Abs(got-7.5) > 1e-9 {
		t.Errorf("got %v, want 7.5", got)
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	if _, err := Fit(nil, nil); err == nil {
		t.Error("expected error for empty training set")
	}
	if _, err := Fit(trainPoints, trainValues[:3]); err == nil {
		t.Error("expected error for length mismatch")
	}
	dup := [][common.Dims]float64{{1, 1, 1, 1}, {1, 1, 1, 1}}
	if _, err := Fit(dup, []float64{1, 2}); err == nil {
		t.Error("expected error for duplicate points")
	}
}

func TestUnavailableFailsFast(t *testing.T) {
	m := Unavailable("sample_data.csv not found")
	if m.Ready() {
		t.Error("unavailable model reports Ready")
	}
	if m.Len() != 0 {
		t.Errorf("unavailable model Len: got %d", m.Len())
	}
	if _, err := m.Predict([common.Dims]float64{1, 2, 3, 4}); err == nil {
		t.Error("expected Predict to fail on unavailable model")
	}
}

func TestReadyAndLen(t *testing.T) {
	r := fitTestModel(t)
	if !r.Ready() {
		t.Error("fitted model not Ready")
	}
	if r.Len() != len(trainPoints) {
		t.Errorf("Len: got %d, want %d", r.Len(), len(trainPoints))
	}

	var zero RBF
	if zero.Ready() {
		t.Error("zero model reports Ready")
	}
	if _, err := zero.Predict([common.Dims]float64{}); err == nil {
		t.Error("expected Predict on unfitted model to fail")
	}
}
