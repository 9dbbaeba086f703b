package aggregating

import (
	"slices"
	"sort"
	"time"

	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/pkg/utils"
)

// SummarizeCustomers agrupa as vendas por cliente calculando gasto total, pedidos, média e última compra
func SummarizeCustomers(records []domain.EnrichedSale) []domain.CustomerSummary {
	byCustomer := make(map[string]*domain.CustomerSummary)

	for _, r := range records {
		summary, ok := byCustomer[r.CustomerID]
		if !ok {
			summary = &domain.CustomerSummary{CustomerID: r.CustomerID, Name: r.CustomerName, LastDate: r.Date}
			byCustomer[r.CustomerID] = summary
		}

		summary.TotalSpent += r.NetSpend
		summary.TotalOrders++
		if r.Date.After(summary.LastDate) {
			summary.LastDate = r.Date
		}
	}

	summaries := make([]domain.CustomerSummary, 0, len(byCustomer))
	for _, summary := range byCustomer {
		summary.AvgSpend = summary.TotalSpent / float64(summary.TotalOrders)
		summaries = append(summaries, *summary)
	}

	slices.SortFunc(summaries, func(a, b domain.CustomerSummary) int {
		return utils.CompareKeys(a.CustomerID, b.CustomerID)
	})

	return summaries
}

// DailySeries soma a receita líquida por dia do calendário, em ordem crescente
func DailySeries(records []domain.EnrichedSale) []domain.DailyPoint {
	totals := make(map[time.Time]float64)
	for _, r := range records {
		totals[utils.TruncateToDay(r.Date)] += r.NetSpend
	}

	return toPoints(totals)
}

// ProductSeries monta a série diária de cada produto, na ordem em que aparecem nos dados
func ProductSeries(records []domain.EnrichedSale) []domain.ProductSeries {
	type productTotals struct {
		name   string
		totals map[time.Time]float64
	}

	order := make([]string, 0)
	byProduct := make(map[string]*productTotals)

	for _, r := range records {
		p, ok := byProduct[r.ProductID]
		if !ok {
			p = &productTotals{name: r.ProductName, totals: make(map[time.Time]float64)}
			byProduct[r.ProductID] = p
			order = append(order, r.ProductID)
		}
		p.totals[utils.TruncateToDay(r.Date)] += r.NetSpend
	}

	series := make([]domain.ProductSeries, 0, len(order))
	for _, id := range order {
		p := byProduct[id]
		series = append(series, domain.ProductSeries{
			ProductID:   id,
			ProductName: p.name,
			Points:      toPoints(p.totals),
		})
	}

	return series
}

func toPoints(totals map[time.Time]float64) []domain.DailyPoint {
	points := make([]domain.DailyPoint, 0, len(totals))
	for date, value := range totals {
		points = append(points, domain.DailyPoint{Date: date, Value: value})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return points
}
