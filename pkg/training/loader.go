package training

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"biomassopt/pkg/common"
)

// Column names the loader requires in the CSV header. Order in the
// file does not matter; samples are normalized to this order.
var inputColumns = [common.Dims]string{
	"fuel_price",
	"commodity_cost",
	"energy_price",
	"weather_index",
}

const outputColumn = "output_metric"

// Sample is one training point: a fixed-dimension input vector and the
// observed output. Immutable once loaded.
type Sample struct {
	Inputs [common.Dims]float64
	Output float64
}

// LoadCSV reads the training table from path. The first row must be a
// header naming the four input columns and output_metric. A missing
// file and an empty table both return errors; callers treat either as
// a recoverable condition (the model stays unavailable).
func LoadCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training csv: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses training samples from r in CSV form.
func Read(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("training csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read training csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	var idx [common.Dims]int
	for i, name := range inputColumns {
		pos, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("training csv missing column %q", name)
		}
		idx[i] = pos
	}
	outIdx, ok := cols[outputColumn]
	if !ok {
		return nil, fmt.Errorf("training csv missing column %q", outputColumn)
	}

	var samples []Sample
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read training csv row %d: %w", line, err)
		}

		var s Sample
		for i, pos := range idx {
			v, err := strconv.ParseFloat(row[pos], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", line, inputColumns[i], err)
			}
			s.Inputs[i] = v
		}
		out, err := strconv.ParseFloat(row[outIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", line, outputColumn, err)
		}
		s.Output = out
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("training csv has no data rows")
	}
	return samples, nil
}
