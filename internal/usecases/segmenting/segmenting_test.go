package segmenting

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/domain"
)

func testConfig(strategy string) config.Segmentation {
	return config.Segmentation{
		Clusters:      3,
		Seed:          42,
		NInit:         10,
		MaxIterations: 300,
		LabelStrategy: strategy,
		Labels:        []string{"VIP Customer", "Mid-Level Customer", "Inactive Customer"},
		StaticLabels:  []string{"Mid-Level Customer", "VIP Customer", "Inactive Customer"},
	}
}

// três grupos bem separados: gasto alto, médio e baixo
func groupedCustomers() []domain.CustomerSummary {
	customers := make([]domain.CustomerSummary, 0, 30)
	groups := []struct {
		spent  float64
		orders int
	}{
		{spent: 10000, orders: 40},
		{spent: 2000, orders: 12},
		{spent: 100, orders: 1},
	}

	id := 1
	for _, g := range groups {
		for i := 0; i < 10; i++ {
			spent := g.spent + float64(i)*g.spent*0.01
			customers = append(customers, domain.CustomerSummary{
				CustomerID:  fmt.Sprint(id),
				TotalSpent:  spent,
				TotalOrders: g.orders,
				AvgSpend:    spent / float64(g.orders),
			})
			id++
		}
	}
	return customers
}

func TestStandardScaler(t *testing.T) {
	samples := [][]float64{{1, 5}, {3, 5}}

	scaler := FitScaler(samples)
	scaled := scaler.Transform(samples)

	assert.InDeltaSlice(t, []float64{2, 5}, scaler.Mean, 1e-9)
	assert.InDeltaSlice(t, []float64{1, 1}, scaler.Scale, 1e-9, "coluna constante mantém escala 1")
	assert.InDeltaSlice(t, []float64{-1, 0}, scaled[0], 1e-9)
	assert.InDeltaSlice(t, []float64{1, 5}, scaler.Inverse(scaled[0]), 1e-9)
}

func TestKMeans_NotEnoughSamples(t *testing.T) {
	_, err := KMeans{K: 3, Seed: 42}.Fit([][]float64{{1}, {2}})
	assert.ErrorIs(t, err, ErrNotEnoughSamples)
}

func TestKMeans_SeparatesGroups(t *testing.T) {
	samples := [][]float64{{0, 0}, {0.1, 0}, {0, 0.1}, {10, 10}, {10.1, 10}, {10, 10.1}}

	result, err := KMeans{K: 2, Seed: 7, NInit: 5}.Fit(samples)
	require.NoError(t, err)

	assert.Equal(t, result.Labels[0], result.Labels[1])
	assert.Equal(t, result.Labels[0], result.Labels[2])
	assert.Equal(t, result.Labels[3], result.Labels[4])
	assert.NotEqual(t, result.Labels[0], result.Labels[3])
	assert.Less(t, result.Inertia, 0.1)
}

func TestKMeans_DuplicatePoints(t *testing.T) {
	samples := [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}

	result, err := KMeans{K: 3, Seed: 42, NInit: 2}.Fit(samples)
	require.NoError(t, err)

	for _, label := range result.Labels {
		assert.GreaterOrEqual(t, label, 0)
		assert.Less(t, label, 3)
	}
	assert.Zero(t, result.Inertia)
}

func TestSegment_EveryCustomerHasOneCluster(t *testing.T) {
	customers := groupedCustomers()

	seg, err := NewService(testConfig(config.LabelStrategyRanked)).Segment(customers)
	require.NoError(t, err)

	require.Len(t, seg.Customers, len(customers))
	for i, c := range seg.Customers {
		assert.Equal(t, customers[i].CustomerID, c.CustomerID)
		assert.GreaterOrEqual(t, c.Cluster, 0)
		assert.Less(t, c.Cluster, 3)
		assert.Equal(t, seg.Centroids[c.Cluster].Label, c.ClusterLabel)
	}

	total := 0
	for _, count := range seg.Counts() {
		total += count.Count
	}
	assert.Equal(t, len(customers), total)
}

func TestSegment_RankedLabels(t *testing.T) {
	seg, err := NewService(testConfig(config.LabelStrategyRanked)).Segment(groupedCustomers())
	require.NoError(t, err)

	assert.Equal(t, "VIP Customer", seg.Customers[0].ClusterLabel)
	assert.Equal(t, "Mid-Level Customer", seg.Customers[10].ClusterLabel)
	assert.Equal(t, "Inactive Customer", seg.Customers[29].ClusterLabel)
}

func TestSegment_StaticLabelsArePositional(t *testing.T) {
	seg, err := NewService(testConfig(config.LabelStrategyStatic)).Segment(groupedCustomers())
	require.NoError(t, err)

	labels := testConfig(config.LabelStrategyStatic).StaticLabels
	for _, c := range seg.Customers {
		assert.Equal(t, labels[c.Cluster], c.ClusterLabel)
	}
}

func TestLabelsFor_StaticUsesDefaultPositionalTable(t *testing.T) {
	t.Setenv("SEGMENTATION_LABEL_STRATEGY", config.LabelStrategyStatic)

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	svc := &Service{cfg: cfg.Segmentation}
	labels := svc.labelsFor([]domain.ClusterCentroid{
		{TotalSpent: 10},
		{TotalSpent: 5000},
		{TotalSpent: 1},
	})

	assert.Equal(t, []string{"Mid-Level Customer", "VIP Customer", "Inactive Customer"}, labels)
}

func TestSegment_Deterministic(t *testing.T) {
	svc := NewService(testConfig(config.LabelStrategyRanked))

	first, err := svc.Segment(groupedCustomers())
	require.NoError(t, err)
	second, err := svc.Segment(groupedCustomers())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSegment_Errors(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.Segmentation
		customers []domain.CustomerSummary
		sentinel  error
	}{
		{
			name:      "menos clientes que clusters",
			cfg:       testConfig(config.LabelStrategyRanked),
			customers: groupedCustomers()[:2],
			sentinel:  ErrNotEnoughSamples,
		},
		{
			name: "quantidade de rótulos diferente de k",
			cfg: func() config.Segmentation {
				cfg := testConfig(config.LabelStrategyRanked)
				cfg.Labels = cfg.Labels[:2]
				return cfg
			}(),
			customers: groupedCustomers(),
		},
		{
			name: "tabela static com quantidade diferente de k",
			cfg: func() config.Segmentation {
				cfg := testConfig(config.LabelStrategyStatic)
				cfg.StaticLabels = cfg.StaticLabels[:1]
				return cfg
			}(),
			customers: groupedCustomers(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.cfg).Segment(tt.customers)
			require.Error(t, err)
			if tt.sentinel != nil {
				assert.True(t, errors.Is(err, tt.sentinel))
			}
		})
	}
}
