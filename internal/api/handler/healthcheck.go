package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
)

// HealthcheckHandler responde 200 com o horário atual e o id da última execução do pipeline
func HealthcheckHandler(service dashboarding.Dashboarder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		}

		if snapshot, err := service.Snapshot(); err == nil {
			response["run_id"] = snapshot.RunID
			response["generated_at"] = snapshot.GeneratedAt.Format(time.RFC3339)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logrus.WithError(err).Warn("error responding to healthcheck")
		}
	})
}
