package handler

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-intelligence/pkg/apiErrors"
	"github.com/vfg2006/sales-intelligence/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	writeJSONStatus(w, r, http.StatusOK, payload)
}

func writeJSONStatus(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("handler: erro ao enviar resposta")
	}
}

// writeDashboardError traduz os erros do pipeline para os códigos da API
func writeDashboardError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dashboarding.ErrSnapshotUnavailable):
		apiErrors.WriteError(w, apiErrors.ErrSnapshotUnavailable, "Os dados do dashboard ainda não foram processados", nil)
	case errors.Is(err, dashboarding.ErrProductNotFound):
		apiErrors.WriteError(w, apiErrors.ErrProductNotFound, "Produto sem previsão disponível", nil)
	default:
		log.ForContext(r.Context()).WithError(err).Error("handler: erro inesperado")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno do servidor", nil)
	}
}
