package dashboarding

import (
	"context"

	"github.com/vfg2006/sales-intelligence/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces.go -package=mocks

// SalesSource carrega as quatro tabelas de origem (planilha ou banco)
type SalesSource interface {
	Load(ctx context.Context) (*domain.Workbook, error)
}

// Dashboarder entrega o resultado do pipeline para a camada HTTP
type Dashboarder interface {
	// Snapshot retorna o último resultado completo do pipeline
	Snapshot() (*domain.DashboardSnapshot, error)

	// ProductForecast busca a previsão de um produto elegível pela chave de seleção
	ProductForecast(productID string) (*domain.ProductForecast, error)

	// Refresh executa o pipeline e troca o resultado atual; em caso de erro o anterior é mantido
	Refresh(ctx context.Context) (*domain.DashboardSnapshot, error)
}
