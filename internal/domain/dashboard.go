package domain

import (
	"sort"
	"time"
)

// DashboardSnapshot é o resultado somente leitura de uma execução do pipeline
type DashboardSnapshot struct {
	RunID            string             `json:"run_id"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Segmentation     *Segmentation      `json:"segmentation"`
	TotalForecast    *ForecastSeries    `json:"total_forecast"`
	ProductForecasts []*ProductForecast `json:"product_forecasts"`

	productIndex map[string]*ProductForecast
}

// ProductOption é uma entrada do seletor de produtos
type ProductOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func NewDashboardSnapshot(
	runID string,
	generatedAt time.Time,
	segmentation *Segmentation,
	totalForecast *ForecastSeries,
	productForecasts []*ProductForecast,
) *DashboardSnapshot {
	index := make(map[string]*ProductForecast, len(productForecasts))
	for _, pf := range productForecasts {
		index[pf.ProductID] = pf
	}

	return &DashboardSnapshot{
		RunID:            runID,
		GeneratedAt:      generatedAt,
		Segmentation:     segmentation,
		TotalForecast:    totalForecast,
		ProductForecasts: productForecasts,
		productIndex:     index,
	}
}

// ProductForecast busca a previsão de um produto pela chave de seleção
func (s *DashboardSnapshot) ProductForecast(productID string) (*ProductForecast, bool) {
	pf, ok := s.productIndex[productID]
	return pf, ok
}

// ProductOptions lista os produtos elegíveis na ordem do seletor
func (s *DashboardSnapshot) ProductOptions() []ProductOption {
	options := make([]ProductOption, 0, len(s.ProductForecasts))
	for _, pf := range s.ProductForecasts {
		options = append(options, ProductOption{Key: pf.ProductID, Label: pf.ProductName})
	}
	return options
}

// TopCustomers retorna os n clientes de um rótulo com maior gasto total
func (s *DashboardSnapshot) TopCustomers(label string, n int) []CustomerSummary {
	if s.Segmentation == nil {
		return nil
	}

	filtered := make([]CustomerSummary, 0)
	for _, c := range s.Segmentation.Customers {
		if c.ClusterLabel == label {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].TotalSpent > filtered[j].TotalSpent
	})

	if n >= 0 && len(filtered) > n {
		filtered = filtered[:n]
	}

	return filtered
}
