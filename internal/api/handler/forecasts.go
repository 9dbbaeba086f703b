package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/vfg2006/sales-intelligence/infrastructure/workbook"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-intelligence/pkg/apiErrors"
	"github.com/vfg2006/sales-intelligence/pkg/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetProductForecastChart é o callback do seletor de produtos: recebe a chave e devolve as opções do gráfico
func GetProductForecastChart(service dashboarding.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := productIDFrom(r)
		if productID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Produto não informado", nil)
			return
		}

		pf, err := service.ProductForecast(productID)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("product_id", productID).Warn("forecasts: produto não encontrado")
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, r, chartOption(forecastLine(productForecastTitle(pf.ProductName), pf.Forecast)))
	}
}

func productIDFrom(r *http.Request) string {
	return r.URL.Query().Get("id")
}

// ListProductForecasts retorna as opções do seletor de produtos
func ListProductForecasts(service dashboarding.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := service.Snapshot()
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, r, map[string]any{
			"run_id":   snapshot.RunID,
			"products": snapshot.ProductOptions(),
		})
	}
}

// GetProductForecast retorna a série prevista de um produto
func GetProductForecast(service dashboarding.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := productIDFrom(r)
		if productID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Produto não informado", nil)
			return
		}

		pf, err := service.ProductForecast(productID)
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, r, pf)
	}
}

// GetTotalForecast retorna a previsão da receita diária total
func GetTotalForecast(service dashboarding.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := service.Snapshot()
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		writeJSON(w, r, snapshot.TotalForecast)
	}
}

// ExportForecasts baixa uma planilha com a aba Total e uma aba por produto
func ExportForecasts(service dashboarding.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		snapshot, err := service.Snapshot()
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := workbook.WriteForecasts(&buf, snapshot.TotalForecast, snapshot.ProductForecasts); err != nil {
			logger.WithError(err).Error("forecasts: erro ao gerar exportação")
			apiErrors.WriteError(w, apiErrors.ErrExport, "Erro ao gerar planilha de previsões", nil)
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="forecasts-%s.xlsx"`, snapshot.RunID))
		if _, err := buf.WriteTo(w); err != nil {
			logger.WithError(err).Error("forecasts: erro ao enviar exportação")
			return
		}

		logger.WithFields(log.Fields{
			"run_id":   snapshot.RunID,
			"products": len(snapshot.ProductForecasts),
		}).Info("forecasts: exportação gerada")
	}
}
