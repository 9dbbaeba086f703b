package handler

import (
	"net/http"
	"strconv"

	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-intelligence/pkg/apiErrors"
)

// GetSegments retorna clientes segmentados, contagem por rótulo e centróides
func GetSegments(service dashboarding.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := service.Snapshot()
		if err != nil {
			writeDashboardError(w, r, err)
			return
		}

		if snapshot.Segmentation == nil {
			apiErrors.WriteError(w, apiErrors.ErrSegmentationNotFound, "Segmentação não disponível", nil)
			return
		}

		label := r.URL.Query().Get("label")
		customers := snapshot.Segmentation.Customers
		if label != "" {
			limit := -1
			if raw := r.URL.Query().Get("limit"); raw != "" {
				limit, err = strconv.Atoi(raw)
				if err != nil || limit < 0 {
					apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Parâmetro limit inválido", nil)
					return
				}
			}
			customers = snapshot.TopCustomers(label, limit)
		}

		writeJSON(w, r, map[string]any{
			"run_id":    snapshot.RunID,
			"counts":    snapshot.Segmentation.Counts(),
			"centroids": snapshot.Segmentation.Centroids,
			"customers": customers,
		})
	}
}
