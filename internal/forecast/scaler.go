package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes feature columns to zero mean and unit variance.
// Statistics are fit on the training split only and reused unchanged for the
// test split and all later inference.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// Fit computes per-column mean and standard deviation.
func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("fit scaler: no rows")
	}
	p := len(rows[0])
	s.Mean = make([]float64, p)
	s.Std = make([]float64, p)
	col := make([]float64, len(rows))
	for j := 0; j < p; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		s.Mean[j] = mean
		// constant column: divide by 1 so scaling is a no-op
		if std == 0 || std != std {
			std = 1
		}
		s.Std[j] = std
	}
	return nil
}

// Transform returns standardized copies of the rows.
func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformRow standardizes a single row.
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("transform: row has %d features, scaler fitted on %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}
