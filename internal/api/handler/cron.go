package handler

import (
	"net/http"

	"github.com/vfg2006/sales-intelligence/pkg/apiErrors"
	"github.com/vfg2006/sales-intelligence/pkg/log"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypePipeline = "pipeline"
)

// ManualSyncer é implementado pelos agendadores que aceitam execução manual
type ManualSyncer interface {
	TriggerManualSync()
	GetStatus() map[string]any
}

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	PipelineRefreshService ManualSyncer
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices, cronType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		switch cronType {
		case CronJobTypePipeline:
			if services.PipelineRefreshService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de reprocessamento do pipeline não disponível", nil)
				return
			}
			services.PipelineRefreshService.TriggerManualSync()
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: pipeline", nil)
			return
		}

		logger.WithField("type", cronType).Info("cron: execução manual disparada")

		writeJSONStatus(w, r, http.StatusAccepted, map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		})
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.PipelineRefreshService != nil {
			status[CronJobTypePipeline] = services.PipelineRefreshService.GetStatus()
		}

		writeJSON(w, r, status)
	}
}
