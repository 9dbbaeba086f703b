package aggregating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-intelligence/internal/domain"
)

func record(customerID, productID string, d int, netSpend float64) domain.EnrichedSale {
	return domain.EnrichedSale{
		Sale: domain.Sale{
			CustomerID: customerID,
			ProductID:  productID,
			Date:       time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
		},
		CustomerName: "Cliente " + customerID,
		ProductName:  "Produto " + productID,
		SupplierName: "Acme",
		NetSpend:     netSpend,
	}
}

func sampleRecords() []domain.EnrichedSale {
	return []domain.EnrichedSale{
		record("10", "P2", 3, 20),
		record("2", "P1", 1, 5),
		record("10", "P1", 1, 270),
		record("2", "P2", 5, 15),
		record("10", "P2", 2, 10),
	}
}

func TestSummarizeCustomers(t *testing.T) {
	records := sampleRecords()

	summaries := SummarizeCustomers(records)

	require.Len(t, summaries, 2)
	assert.Equal(t, "2", summaries[0].CustomerID, "IDs numéricos em ordem natural")
	assert.Equal(t, "10", summaries[1].CustomerID)

	assert.InDelta(t, 20, summaries[0].TotalSpent, 1e-9)
	assert.Equal(t, 2, summaries[0].TotalOrders)
	assert.InDelta(t, 10, summaries[0].AvgSpend, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), summaries[0].LastDate)

	assert.Equal(t, 3, summaries[1].TotalOrders)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), summaries[1].LastDate)

	var total, summarized float64
	orders := 0
	for _, r := range records {
		total += r.NetSpend
	}
	for _, s := range summaries {
		summarized += s.TotalSpent
		orders += s.TotalOrders
		assert.InDelta(t, s.TotalSpent/float64(s.TotalOrders), s.AvgSpend, 1e-9)
	}
	assert.InDelta(t, total, summarized, 1e-9)
	assert.Equal(t, len(records), orders)
}

func TestDailySeries(t *testing.T) {
	points := DailySeries(sampleRecords())

	require.Len(t, points, 4)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.InDelta(t, 275, points[0].Value, 1e-9)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i-1].Date.Before(points[i].Date))
	}
}

func TestProductSeries(t *testing.T) {
	series := ProductSeries(sampleRecords())

	require.Len(t, series, 2)
	assert.Equal(t, "P2", series[0].ProductID, "ordem da primeira aparição")
	assert.Equal(t, "Produto P2", series[0].ProductName)
	assert.Len(t, series[0].Points, 3)
	assert.Equal(t, "P1", series[1].ProductID)
	require.Len(t, series[1].Points, 1)
	assert.InDelta(t, 275, series[1].Points[0].Value, 1e-9)
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, SummarizeCustomers(nil))
	assert.Empty(t, DailySeries(nil))
	assert.Empty(t, ProductSeries(nil))
}
