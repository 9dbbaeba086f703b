package dashboarding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/internal/usecases/aggregating"
	"github.com/vfg2006/sales-intelligence/internal/usecases/forecasting"
	"github.com/vfg2006/sales-intelligence/internal/usecases/ingesting"
	"github.com/vfg2006/sales-intelligence/internal/usecases/segmenting"
	"github.com/vfg2006/sales-intelligence/pkg/utils"
)

var (
	ErrSnapshotUnavailable = errors.New("pipeline has not produced a result yet")
	ErrProductNotFound     = errors.New("no forecast for product")
)

type Service struct {
	source     SalesSource
	ingester   ingesting.Ingester
	segmenter  segmenting.Segmenter
	forecaster forecasting.Forecaster
	now        func() time.Time

	snapshot atomic.Pointer[domain.DashboardSnapshot]
	runMu    sync.Mutex
}

func NewService(
	source SalesSource,
	ingester ingesting.Ingester,
	segmenter segmenting.Segmenter,
	forecaster forecasting.Forecaster,
) *Service {
	return &Service{
		source:     source,
		ingester:   ingester,
		segmenter:  segmenter,
		forecaster: forecaster,
		now:        time.Now,
	}
}

func (s *Service) Snapshot() (*domain.DashboardSnapshot, error) {
	snapshot := s.snapshot.Load()
	if snapshot == nil {
		return nil, ErrSnapshotUnavailable
	}
	return snapshot, nil
}

func (s *Service) ProductForecast(productID string) (*domain.ProductForecast, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	pf, ok := snapshot.ProductForecast(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return pf, nil
}

func (s *Service) Refresh(ctx context.Context) (*domain.DashboardSnapshot, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	startTime := s.now()

	snapshot, err := s.run(ctx)
	if err != nil {
		logrus.WithError(err).Error("dashboarding: falha ao executar pipeline, resultado anterior mantido")
		return nil, err
	}

	s.snapshot.Store(snapshot)

	logrus.WithFields(logrus.Fields{
		"run_id":            snapshot.RunID,
		"customers":         len(snapshot.Segmentation.Customers),
		"product_forecasts": len(snapshot.ProductForecasts),
		"duration":          s.now().Sub(startTime).String(),
	}).Info("dashboarding: pipeline concluído")

	return snapshot, nil
}

// run executa carga, cruzamento, agregação, segmentação e previsões
func (s *Service) run(ctx context.Context) (*domain.DashboardSnapshot, error) {
	wb, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboarding: erro ao carregar dados: %w", err)
	}

	records := s.ingester.Enrich(wb)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	customers := aggregating.SummarizeCustomers(records)
	daily := aggregating.DailySeries(records)
	products := aggregating.ProductSeries(records)

	var (
		segmentation     *domain.Segmentation
		total            *domain.ForecastSeries
		productForecasts []*domain.ProductForecast
		segErr, totalErr error
		productErr       error
	)

	wg := sync.WaitGroup{}
	wg.Add(3)

	go func() {
		defer wg.Done()
		segmentation, segErr = s.segmenter.Segment(customers)
	}()

	go func() {
		defer wg.Done()
		total, totalErr = s.forecaster.ForecastTotal(daily)
	}()

	go func() {
		defer wg.Done()
		productForecasts, productErr = s.forecaster.ForecastProducts(products)
	}()

	wg.Wait()

	if err := errors.Join(segErr, totalErr, productErr); err != nil {
		return nil, err
	}

	runID, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("dashboarding: erro ao gerar id da execução: %w", err)
	}

	return domain.NewDashboardSnapshot(runID, s.now(), segmentation, total, productForecasts), nil
}
