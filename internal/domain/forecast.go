package domain

import "time"

// DailyPoint é o total de receita líquida em um dia
type DailyPoint struct {
	Date  time.Time
	Value float64
}

// ProductSeries é a série diária de um produto
type ProductSeries struct {
	ProductID   string
	ProductName string
	Points      []DailyPoint
}

type ForecastPoint struct {
	Date      time.Time `json:"ds"`
	Yhat      float64   `json:"yhat"`
	YhatLower float64   `json:"yhat_lower"`
	YhatUpper float64   `json:"yhat_upper"`
	Trend     float64   `json:"trend"`
	Actual    *float64  `json:"y,omitempty"` // Apenas para datas históricas
}

// ForecastSeries cobre o histórico mais o horizonte futuro
type ForecastSeries struct {
	HistoryLength int             `json:"history_length"`
	Horizon       int             `json:"horizon"`
	Points        []ForecastPoint `json:"points"`
}

// Future retorna apenas os pontos além do histórico
func (f *ForecastSeries) Future() []ForecastPoint {
	if f == nil || f.HistoryLength >= len(f.Points) {
		return nil
	}
	return f.Points[f.HistoryLength:]
}

// ProductForecast é a previsão de um produto elegível
type ProductForecast struct {
	ProductID   string          `json:"product_id"`   // Chave estável usada na seleção
	ProductName string          `json:"product_name"` // Nome exibido
	SheetName   string          `json:"sheet_name"`   // Nome seguro para aba de planilha, só para exportação
	Forecast    *ForecastSeries `json:"forecast"`
}
