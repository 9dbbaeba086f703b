package forecasting

import (
	"errors"
	"math"
	"time"

	"github.com/vfg2006/sales-intelligence/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrNotEnoughHistory = errors.New("forecast needs at least two observations")

const (
	day = 24 * time.Hour

	weeklyPeriod = 7.0
	yearlyPeriod = 365.25
)

// Options controla o modelo aditivo de tendência mais sazonalidade
type Options struct {
	IntervalWidth         float64
	Changepoints          int
	ChangepointRange      float64
	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	WeeklyOrder           int
	YearlyOrder           int
}

func DefaultOptions() Options {
	return Options{
		IntervalWidth:         0.8,
		Changepoints:          25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		WeeklyOrder:           3,
		YearlyOrder:           10,
	}
}

// Model é uma tendência linear por partes com sazonalidade semanal e anual em séries de Fourier,
// ajustada por mínimos quadrados regularizados
type Model struct {
	opts Options

	history []domain.DailyPoint
	start   time.Time
	span    float64 // dias entre a primeira e a última observação
	yScale  float64

	changepoints []float64 // em tempo normalizado
	weekly       bool
	yearly       bool

	beta  []float64
	sigma float64 // desvio dos resíduos na escala normalizada
}

// Fit ajusta o modelo aos pontos diários, que devem estar em ordem crescente de data
func Fit(points []domain.DailyPoint, opts Options) (*Model, error) {
	if len(points) < 2 {
		return nil, ErrNotEnoughHistory
	}

	m := &Model{
		opts:    opts,
		history: points,
		start:   points[0].Date,
		span:    points[len(points)-1].Date.Sub(points[0].Date).Hours() / 24,
	}
	if m.span <= 0 {
		return nil, ErrNotEnoughHistory
	}

	y := make([]float64, len(points))
	for i, p := range points {
		y[i] = p.Value
		m.yScale = math.Max(m.yScale, math.Abs(p.Value))
	}
	if m.yScale == 0 {
		m.yScale = 1
	}
	floats.Scale(1/m.yScale, y)

	m.changepoints = m.placeChangepoints()
	m.weekly = m.span >= 14 && opts.WeeklyOrder > 0
	m.yearly = m.span >= 730 && opts.YearlyOrder > 0

	rows := make([][]float64, len(points))
	for i, p := range points {
		rows[i] = m.features(p.Date)
	}
	X := toDense(rows)
	Y := mat.NewVecDense(len(y), y)

	// Primeira passada com regularização fraca para estimar o ruído
	beta, err := ridge(X, Y, m.penalties(1e-3, 1e-3))
	if err != nil {
		return nil, err
	}

	noise := math.Max(residualVariance(X, Y, beta), 1e-6)
	cpPenalty := noise / (opts.ChangepointPriorScale * opts.ChangepointPriorScale)
	seasonalPenalty := noise / (opts.SeasonalityPriorScale * opts.SeasonalityPriorScale)

	beta, err = ridge(X, Y, m.penalties(cpPenalty, seasonalPenalty))
	if err != nil {
		return nil, err
	}

	m.beta = beta
	m.sigma = math.Sqrt(residualVariance(X, Y, beta))

	return m, nil
}

// placeChangepoints distribui os pontos de mudança uniformemente nas primeiras observações
func (m *Model) placeChangepoints() []float64 {
	histSize := int(math.Floor(float64(len(m.history)) * m.opts.ChangepointRange))
	n := min(m.opts.Changepoints, histSize-1)
	if n <= 0 {
		return nil
	}

	changepoints := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(n)))
		changepoints = append(changepoints, m.scaledTime(m.history[idx].Date))
	}
	return changepoints
}

func (m *Model) scaledTime(date time.Time) float64 {
	return date.Sub(m.start).Hours() / 24 / m.span
}

// features monta a linha de regressão: intercepto, inclinação, pontos de mudança e termos de Fourier
func (m *Model) features(date time.Time) []float64 {
	t := m.scaledTime(date)

	row := []float64{1, t}
	for _, s := range m.changepoints {
		row = append(row, math.Max(0, t-s))
	}

	days := float64(date.Unix()) / 86400
	if m.weekly {
		row = appendFourier(row, days, weeklyPeriod, m.opts.WeeklyOrder)
	}
	if m.yearly {
		row = appendFourier(row, days, yearlyPeriod, m.opts.YearlyOrder)
	}

	return row
}

func appendFourier(row []float64, days, period float64, order int) []float64 {
	for k := 1; k <= order; k++ {
		x := 2 * math.Pi * float64(k) * days / period
		row = append(row, math.Sin(x), math.Cos(x))
	}
	return row
}

// penalties devolve o peso da regularização de cada coluna
func (m *Model) penalties(changepoint, seasonal float64) []float64 {
	p := []float64{1e-8, 1e-6}
	for range m.changepoints {
		p = append(p, changepoint)
	}

	seasonalTerms := 0
	if m.weekly {
		seasonalTerms += 2 * m.opts.WeeklyOrder
	}
	if m.yearly {
		seasonalTerms += 2 * m.opts.YearlyOrder
	}
	for i := 0; i < seasonalTerms; i++ {
		p = append(p, seasonal)
	}

	return p
}

func (m *Model) trend(t float64) float64 {
	trend := m.beta[0] + m.beta[1]*t
	for j, s := range m.changepoints {
		trend += m.beta[2+j] * math.Max(0, t-s)
	}
	return trend
}

// Predict devolve o histórico ajustado seguido de horizon dias futuros
func (m *Model) Predict(horizon int) *domain.ForecastSeries {
	horizon = max(horizon, 0)
	z := distuv.UnitNormal.Quantile(0.5 + m.opts.IntervalWidth/2)
	last := m.history[len(m.history)-1].Date

	points := make([]domain.ForecastPoint, 0, len(m.history)+horizon)
	for _, p := range m.history {
		actual := p.Value
		point := m.point(p.Date, z, 0)
		point.Actual = &actual
		points = append(points, point)
	}

	for h := 1; h <= horizon; h++ {
		points = append(points, m.point(last.Add(time.Duration(h)*day), z, float64(h)))
	}

	return &domain.ForecastSeries{
		HistoryLength: len(m.history),
		Horizon:       horizon,
		Points:        points,
	}
}

// point calcula yhat e o intervalo; a incerteza cresce com a distância ao fim do histórico
func (m *Model) point(date time.Time, z, stepsAhead float64) domain.ForecastPoint {
	row := m.features(date)
	yhat := floats.Dot(row, m.beta) * m.yScale
	trend := m.trend(m.scaledTime(date)) * m.yScale

	halfWidth := z * m.sigma * m.yScale * math.Sqrt(1+stepsAhead/m.span)

	return domain.ForecastPoint{
		Date:      date,
		Yhat:      yhat,
		YhatLower: yhat - halfWidth,
		YhatUpper: yhat + halfWidth,
		Trend:     trend,
	}
}

func toDense(rows [][]float64) *mat.Dense {
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data)
}

// ridge resolve (XᵀX + diag(penalty)) β = Xᵀy
func ridge(X *mat.Dense, y *mat.VecDense, penalty []float64) ([]float64, error) {
	_, cols := X.Dims()

	var gram mat.Dense
	gram.Mul(X.T(), X)
	for j := 0; j < cols; j++ {
		gram.Set(j, j, gram.At(j, j)+penalty[j])
	}

	var rhs mat.VecDense
	rhs.MulVec(X.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, err
		}
	}

	return mat.Col(nil, 0, &beta), nil
}

func residualVariance(X *mat.Dense, y *mat.VecDense, beta []float64) float64 {
	var fitted mat.VecDense
	fitted.MulVec(X, mat.NewVecDense(len(beta), beta))

	var residual mat.VecDense
	residual.SubVec(y, &fitted)

	n := residual.Len()
	return mat.Dot(&residual, &residual) / float64(max(n-1, 1))
}
