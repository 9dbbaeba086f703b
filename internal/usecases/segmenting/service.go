package segmenting

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/domain"
)

// Segmenter atribui um cluster e um rótulo a cada cliente
type Segmenter interface {
	Segment(customers []domain.CustomerSummary) (*domain.Segmentation, error)
}

type Service struct {
	cfg config.Segmentation
}

func NewService(cfg config.Segmentation) Segmenter {
	return &Service{cfg: cfg}
}

func (s *Service) Segment(customers []domain.CustomerSummary) (*domain.Segmentation, error) {
	if labels := s.labelTable(); len(labels) != s.cfg.Clusters {
		return nil, fmt.Errorf("segmenting: %d rótulos configurados para %d clusters", len(labels), s.cfg.Clusters)
	}

	if len(customers) < s.cfg.Clusters {
		return nil, fmt.Errorf("segmenting: %d clientes para %d clusters: %w", len(customers), s.cfg.Clusters, ErrNotEnoughSamples)
	}

	features := make([][]float64, len(customers))
	for i, c := range customers {
		features[i] = c.Features()
	}

	scaler := FitScaler(features)

	km := KMeans{
		K:             s.cfg.Clusters,
		Seed:          s.cfg.Seed,
		NInit:         s.cfg.NInit,
		MaxIterations: s.cfg.MaxIterations,
	}

	result, err := km.Fit(scaler.Transform(features))
	if err != nil {
		return nil, err
	}

	centroids := make([]domain.ClusterCentroid, len(result.Centroids))
	for c, center := range result.Centroids {
		original := scaler.Inverse(center)
		centroids[c] = domain.ClusterCentroid{
			Cluster:     c,
			TotalSpent:  original[0],
			TotalOrders: original[1],
			AvgSpend:    original[2],
		}
	}

	labels := s.labelsFor(centroids)
	for c := range centroids {
		centroids[c].Label = labels[c]
	}

	segmented := make([]domain.CustomerSummary, len(customers))
	for i, c := range customers {
		c.Cluster = result.Labels[i]
		c.ClusterLabel = labels[c.Cluster]
		segmented[i] = c
	}

	segmentation := &domain.Segmentation{
		Customers: segmented,
		Centroids: centroids,
		Inertia:   result.Inertia,
	}

	logrus.WithFields(logrus.Fields{
		"customers":  len(customers),
		"clusters":   s.cfg.Clusters,
		"strategy":   s.cfg.LabelStrategy,
		"inertia":    result.Inertia,
		"iterations": result.Iterations,
	}).Info("segmenting: clientes segmentados")

	return segmentation, nil
}

func (s *Service) labelTable() []string {
	if s.cfg.LabelStrategy == config.LabelStrategyStatic {
		return s.cfg.StaticLabels
	}
	return s.cfg.Labels
}

// labelsFor devolve o rótulo de cada cluster conforme a estratégia configurada
func (s *Service) labelsFor(centroids []domain.ClusterCentroid) []string {
	labels := make([]string, len(centroids))

	if s.cfg.LabelStrategy == config.LabelStrategyStatic {
		copy(labels, s.labelTable())
		return labels
	}

	// ranked: maior gasto médio do centróide recebe o primeiro rótulo
	order := make([]int, len(centroids))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return centroids[order[i]].TotalSpent > centroids[order[j]].TotalSpent
	})

	for rank, cluster := range order {
		labels[cluster] = s.cfg.Labels[rank]
	}

	return labels
}
