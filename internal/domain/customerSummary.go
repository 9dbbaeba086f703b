package domain

import "time"

type CustomerSummary struct {
	CustomerID   string    `json:"customer_id"`
	Name         string    `json:"name"`
	TotalSpent   float64   `json:"total_spent"`
	TotalOrders  int       `json:"total_orders"`
	AvgSpend     float64   `json:"avg_spend"`
	LastDate     time.Time `json:"last_date"`
	Cluster      int       `json:"cluster"`
	ClusterLabel string    `json:"cluster_label"`
}

// Features retorna as variáveis numéricas usadas na segmentação
func (c CustomerSummary) Features() []float64 {
	return []float64{c.TotalSpent, float64(c.TotalOrders), c.AvgSpend}
}

// SegmentCount é a quantidade de clientes em um rótulo de cluster
type SegmentCount struct {
	Cluster int    `json:"cluster"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
}

// ClusterCentroid guarda o centróide de um cluster nas unidades originais
type ClusterCentroid struct {
	Cluster     int     `json:"cluster"`
	Label       string  `json:"label"`
	TotalSpent  float64 `json:"total_spent"`
	TotalOrders float64 `json:"total_orders"`
	AvgSpend    float64 `json:"avg_spend"`
}

// Segmentation é o resultado da segmentação de clientes
type Segmentation struct {
	Customers []CustomerSummary `json:"customers"`
	Centroids []ClusterCentroid `json:"centroids"`
	Inertia   float64           `json:"inertia"`
}

// Counts conta clientes por rótulo, na ordem dos clusters
func (s *Segmentation) Counts() []SegmentCount {
	counts := make([]SegmentCount, len(s.Centroids))
	for i, c := range s.Centroids {
		counts[i] = SegmentCount{Cluster: c.Cluster, Label: c.Label}
	}

	for _, customer := range s.Customers {
		if customer.Cluster >= 0 && customer.Cluster < len(counts) {
			counts[customer.Cluster].Count++
		}
	}

	return counts
}
