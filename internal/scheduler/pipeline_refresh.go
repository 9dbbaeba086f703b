package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
)

// PipelineRefreshConfig representa a configuração do agendador de reprocessamento
type PipelineRefreshConfig struct {
	CronSchedule string
	SyncEnabled  bool
	Timeout      time.Duration
}

// PipelineRefreshService reexecuta o pipeline periodicamente e troca o resultado exibido no dashboard
type PipelineRefreshService struct {
	scheduler           *gocron.Scheduler
	config              PipelineRefreshConfig
	dashboard           dashboarding.Dashboarder
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastRunID           string
	lastError           string
}

func NewPipelineRefreshService(dashboard dashboarding.Dashboarder, appConfig *config.Config) *PipelineRefreshService {
	refreshConfig := PipelineRefreshConfig{
		CronSchedule: appConfig.PipelineRefresh.CronSchedule,
		SyncEnabled:  appConfig.PipelineRefresh.Enabled,
		Timeout:      30 * time.Minute,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": refreshConfig.CronSchedule,
		"sync_enabled":  refreshConfig.SyncEnabled,
	}).Info("Configuração do agendador de reprocessamento do pipeline carregada")

	return &PipelineRefreshService{
		scheduler: scheduler,
		config:    refreshConfig,
		dashboard: dashboard,
	}
}

// Start inicia o agendador
func (s *PipelineRefreshService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Reprocessamento agendado do pipeline desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de reprocessamento do pipeline")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar reprocessamento do pipeline: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de reprocessamento do pipeline")
		s.scheduler.Stop()
	}()

	return nil
}

// refresh executa o pipeline; só uma execução por vez
func (s *PipelineRefreshService) refresh(parent context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reprocessamento do pipeline já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	ctx, cancel := context.WithTimeout(parent, s.config.Timeout)
	defer cancel()

	snapshot, err := s.dashboard.Refresh(ctx)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if err != nil {
		s.lastError = err.Error()
		logrus.WithError(err).Error("Erro no reprocessamento do pipeline")
		return
	}

	s.lastError = ""
	s.lastRunID = snapshot.RunID
	s.lastSyncCompletedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"run_id":   snapshot.RunID,
		"duration": s.lastSyncCompletedAt.Sub(s.lastSyncStartedAt).String(),
	}).Info("Reprocessamento do pipeline concluído")
}

// TriggerManualSync dispara o reprocessamento fora do agendamento
func (s *PipelineRefreshService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reprocessamento do pipeline já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando reprocessamento manual do pipeline")
	go s.refresh(context.Background())
}

// GetStatus retorna o status atual do reprocessamento
func (s *PipelineRefreshService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_run_id":            s.lastRunID,
		"last_error":             s.lastError,
	}
}
