package forecasting

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/domain"
)

// Forecaster projeta a receita diária total e por produto
type Forecaster interface {
	ForecastTotal(points []domain.DailyPoint) (*domain.ForecastSeries, error)
	ForecastProducts(series []domain.ProductSeries) ([]*domain.ProductForecast, error)
}

type Service struct {
	cfg  config.Forecast
	opts Options
}

func NewService(cfg config.Forecast) Forecaster {
	opts := DefaultOptions()
	if cfg.IntervalWidth > 0 && cfg.IntervalWidth < 1 {
		opts.IntervalWidth = cfg.IntervalWidth
	}

	return &Service{cfg: cfg, opts: opts}
}

func (s *Service) ForecastTotal(points []domain.DailyPoint) (*domain.ForecastSeries, error) {
	model, err := Fit(points, s.opts)
	if err != nil {
		return nil, fmt.Errorf("forecasting: previsão total: %w", err)
	}

	series := model.Predict(s.cfg.HorizonDays)

	logrus.WithFields(logrus.Fields{
		"history": series.HistoryLength,
		"horizon": series.Horizon,
	}).Info("forecasting: previsão total gerada")

	return series, nil
}

// ForecastProducts gera uma previsão por produto com datas distintas suficientes, na ordem recebida
func (s *Service) ForecastProducts(series []domain.ProductSeries) ([]*domain.ProductForecast, error) {
	eligible := make([]domain.ProductSeries, 0, len(series))
	for _, ps := range series {
		if len(ps.Points) < s.cfg.MinDistinctDates {
			logrus.WithFields(logrus.Fields{
				"product_id":     ps.ProductID,
				"product_name":   ps.ProductName,
				"distinct_dates": len(ps.Points),
			}).Debug("forecasting: produto ignorado por histórico curto")
			continue
		}
		eligible = append(eligible, ps)
	}

	forecasts := make([]*domain.ProductForecast, len(eligible))
	errs := make([]error, len(eligible))

	wg := sync.WaitGroup{}
	sem := make(chan struct{}, runtime.NumCPU())

	for i, ps := range eligible {
		wg.Add(1)
		go func(i int, ps domain.ProductSeries) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			model, err := Fit(ps.Points, s.opts)
			if err != nil {
				errs[i] = fmt.Errorf("forecasting: produto %s: %w", ps.ProductID, err)
				return
			}

			forecasts[i] = &domain.ProductForecast{
				ProductID:   ps.ProductID,
				ProductName: ps.ProductName,
				Forecast:    model.Predict(s.cfg.HorizonDays),
			}
		}(i, ps)
	}
	wg.Wait()

	namer := domain.NewSheetNamer(domain.TotalSheetName)
	result := make([]*domain.ProductForecast, 0, len(forecasts))
	for i, pf := range forecasts {
		if errs[i] != nil {
			if errors.Is(errs[i], ErrNotEnoughHistory) {
				logrus.WithError(errs[i]).Warn("forecasting: produto sem histórico suficiente")
				continue
			}
			return nil, errs[i]
		}

		pf.SheetName = namer.Name(pf.ProductName)
		result = append(result, pf)
	}

	logrus.WithFields(logrus.Fields{
		"products": len(series),
		"eligible": len(result),
	}).Info("forecasting: previsões por produto geradas")

	return result, nil
}
