package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-intelligence/pkg/apiErrors"
	"github.com/vfg2006/sales-intelligence/pkg/log"
)

// ProductChartPath é a rota do callback do seletor de produtos; a chave vai no parâmetro id
// porque Product_ID pode conter "/"
const ProductChartPath = "/v1/forecasts/product/chart"

//go:embed templates/dashboard.html
var templatesFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

type dashboardPage struct {
	Title           string
	RunID           string
	GeneratedAt     string
	SegmentPie      template.JS
	TopCustomers    template.JS
	TotalForecast   template.JS
	Products        []domain.ProductOption
	DefaultProduct  string
	ProductForecast template.JS
	ChartPath       string
}

// Dashboard renderiza a página com as abas de segmentação, previsão total e previsão por produto
func Dashboard(service dashboarding.Dashboarder, cfg config.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		snapshot, err := service.Snapshot()
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		page := dashboardPage{
			Title:         cfg.Title,
			RunID:         snapshot.RunID,
			GeneratedAt:   snapshot.GeneratedAt.Format(time.RFC3339),
			SegmentPie:    chartScript(segmentPie(snapshot.Segmentation)),
			TopCustomers:  chartScript(topCustomersBar(cfg.VIPLabel, snapshot.TopCustomers(cfg.VIPLabel, cfg.TopCustomers))),
			TotalForecast: chartScript(forecastLine(totalForecastTitle(horizonOf(snapshot.TotalForecast)), snapshot.TotalForecast)),
			Products:      snapshot.ProductOptions(),
			ChartPath:     ProductChartPath,
		}

		// O primeiro produto elegível é a seleção inicial
		if len(snapshot.ProductForecasts) > 0 {
			first := snapshot.ProductForecasts[0]
			page.DefaultProduct = first.ProductID
			page.ProductForecast = chartScript(forecastLine(productForecastTitle(first.ProductName), first.Forecast))
		}

		var buf bytes.Buffer
		if err := dashboardTemplate.Execute(&buf, page); err != nil {
			logger.WithError(err).Error("dashboard: erro ao renderizar página")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao renderizar dashboard", nil)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			logger.WithError(err).Warn("dashboard: erro ao enviar página")
		}
	}
}
