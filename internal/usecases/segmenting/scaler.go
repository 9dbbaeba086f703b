package segmenting

import (
	"gonum.org/v1/gonum/stat"
)

// StandardScaler padroniza cada coluna para média zero e desvio padrão um.
// O desvio é populacional; colunas constantes mantêm escala 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func FitScaler(samples [][]float64) *StandardScaler {
	if len(samples) == 0 {
		return &StandardScaler{}
	}

	dims := len(samples[0])
	scaler := &StandardScaler{
		Mean:  make([]float64, dims),
		Scale: make([]float64, dims),
	}

	column := make([]float64, len(samples))
	for j := 0; j < dims; j++ {
		for i, sample := range samples {
			column[i] = sample[j]
		}

		mean, std := stat.PopMeanStdDev(column, nil)
		if std == 0 {
			std = 1
		}
		scaler.Mean[j] = mean
		scaler.Scale[j] = std
	}

	return scaler
}

func (s *StandardScaler) Transform(samples [][]float64) [][]float64 {
	scaled := make([][]float64, len(samples))
	for i, sample := range samples {
		row := make([]float64, len(sample))
		for j, v := range sample {
			row[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		scaled[i] = row
	}
	return scaled
}

// Inverse volta um ponto padronizado para as unidades originais
func (s *StandardScaler) Inverse(point []float64) []float64 {
	original := make([]float64, len(point))
	for j, v := range point {
		original[j] = v*s.Scale[j] + s.Mean[j]
	}
	return original
}
