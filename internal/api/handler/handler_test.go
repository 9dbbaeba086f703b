package handler

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-intelligence/internal/api/handler/router"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/internal/usecases/authenticating"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding/mocks"
	"github.com/vfg2006/sales-intelligence/pkg/apiErrors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
)

var dashboardConfig = config.Dashboard{Title: "Sales & Customer Dashboard", TopCustomers: 10, VIPLabel: "VIP Customer"}

func testSeries(days, horizon int) *domain.ForecastSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := &domain.ForecastSeries{HistoryLength: days, Horizon: horizon}
	for i := 0; i < days+horizon; i++ {
		p := domain.ForecastPoint{Date: start.AddDate(0, 0, i), Yhat: 100, YhatLower: 90, YhatUpper: 110, Trend: 100}
		if i < days {
			actual := 98.0
			p.Actual = &actual
		}
		series.Points = append(series.Points, p)
	}
	return series
}

func testSnapshot(products ...*domain.ProductForecast) *domain.DashboardSnapshot {
	seg := &domain.Segmentation{
		Customers: []domain.CustomerSummary{
			{CustomerID: "1", Name: "Ana", TotalSpent: 900, Cluster: 0, ClusterLabel: "VIP Customer"},
			{CustomerID: "2", Name: "Bruno", TotalSpent: 300, Cluster: 1, ClusterLabel: "Mid-Level Customer"},
			{CustomerID: "3", Name: "Carla", TotalSpent: 1200, Cluster: 0, ClusterLabel: "VIP Customer"},
			{CustomerID: "4", Name: "Davi", TotalSpent: 10, Cluster: 2, ClusterLabel: "Inactive Customer"},
		},
		Centroids: []domain.ClusterCentroid{
			{Cluster: 0, Label: "VIP Customer"},
			{Cluster: 1, Label: "Mid-Level Customer"},
			{Cluster: 2, Label: "Inactive Customer"},
		},
	}
	return domain.NewDashboardSnapshot("run42", time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC), seg, testSeries(20, 90), products)
}

func testProducts() []*domain.ProductForecast {
	return []*domain.ProductForecast{
		{ProductID: "P1", ProductName: "Caneca", SheetName: "Caneca", Forecast: testSeries(12, 90)},
		{ProductID: "P2", ProductName: "Cabo/USB", SheetName: "Cabo_USB", Forecast: testSeries(15, 90)},
	}
}

func serve(routes []router.Route, req *http.Request) *httptest.ResponseRecorder {
	rt := router.New(router.WithRoutes(routes...))
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, body io.Reader) apiErrors.APIError {
	t.Helper()
	var apiErr apiErrors.APIError
	require.NoError(t, json.NewDecoder(body).Decode(&apiErr))
	return apiErr
}

func TestDashboard(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(m *mocks.MockDashboarder)
		wantStatus int
		validate   func(t *testing.T, body string)
	}{
		{
			name: "Página com produtos - deve renderizar as três abas e o seletor",
			setup: func(m *mocks.MockDashboarder) {
				m.EXPECT().Snapshot().Return(testSnapshot(testProducts()...), nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, body string) {
				assert.Contains(t, body, "Customer Segmentation")
				assert.Contains(t, body, "Total Sales Forecast")
				assert.Contains(t, body, "Product Forecast")
				assert.Contains(t, body, `<option value="P1" selected>Caneca</option>`)
				assert.Contains(t, body, `<option value="P2">Cabo/USB</option>`)
				assert.Contains(t, body, "Top 2 VIP Customers")
				assert.Contains(t, body, "Forecast for Caneca")
			},
		},
		{
			name: "Página sem produtos elegíveis - deve exibir aviso no lugar do seletor",
			setup: func(m *mocks.MockDashboarder) {
				m.EXPECT().Snapshot().Return(testSnapshot(), nil)
			},
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, body string) {
				assert.Contains(t, body, "No product has enough sales history")
				assert.NotContains(t, body, "product-dropdown\"")
			},
		},
		{
			name: "Pipeline ainda não executado - deve responder 503",
			setup: func(m *mocks.MockDashboarder) {
				m.EXPECT().Snapshot().Return(nil, dashboarding.ErrSnapshotUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			validate: func(t *testing.T, body string) {
				assert.Contains(t, body, apiErrors.ErrSnapshotUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockDashboarder(ctrl)
			tt.setup(service)

			rec := serve(DashboardPage(service, dashboardConfig), httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			tt.validate(t, rec.Body.String())
		})
	}
}

func TestGetProductForecastChart(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)

	products := testProducts()
	service.EXPECT().ProductForecast("P2").Return(products[1], nil)
	service.EXPECT().ProductForecast("P9").Return(nil, dashboarding.ErrProductNotFound)

	rec := serve(Forecasts(service), httptest.NewRequest(http.MethodGet, "/v1/forecasts/product/chart?id=P2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var option map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&option))
	assert.Contains(t, option, "series")
	assert.Contains(t, option, "xAxis")
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = serve(Forecasts(service), httptest.NewRequest(http.MethodGet, "/v1/forecasts/product/chart?id=P9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiErrors.ErrProductNotFound, decodeError(t, rec.Body).Code)
}

func TestGetProductForecastChart_KeyWithSlash(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)

	pf := testProducts()[0]
	pf.ProductID = "SKU/1"
	service.EXPECT().ProductForecast("SKU/1").Return(pf, nil)

	path := ProductChartPath + "?id=" + url.QueryEscape("SKU/1")
	rec := serve(Forecasts(service), httptest.NewRequest(http.MethodGet, path, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "series")
}

func TestGetProductForecastChart_MissingKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)

	rec := serve(Forecasts(service), httptest.NewRequest(http.MethodGet, ProductChartPath, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrMissingRequiredData, decodeError(t, rec.Body).Code)
}

func TestGetProductForecast(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)

	pf := testProducts()[0]
	pf.ProductID = "A/B"
	service.EXPECT().ProductForecast("A/B").Return(pf, nil)

	rec := serve(Forecasts(service), httptest.NewRequest(http.MethodGet, "/v1/forecasts/product?id=A%2FB", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A/B")
}

func TestListProductForecasts(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)
	service.EXPECT().Snapshot().Return(testSnapshot(testProducts()...), nil)

	rec := serve(Forecasts(service), httptest.NewRequest(http.MethodGet, "/v1/forecasts/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID    string                 `json:"run_id"`
		Products []domain.ProductOption `json:"products"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "run42", body.RunID)
	assert.Equal(t, []domain.ProductOption{{Key: "P1", Label: "Caneca"}, {Key: "P2", Label: "Cabo/USB"}}, body.Products)
}

func TestGetTotalForecast(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)
	service.EXPECT().Snapshot().Return(testSnapshot(), nil)

	rec := serve(Forecasts(service), httptest.NewRequest(http.MethodGet, "/v1/forecasts/total", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var series domain.ForecastSeries
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&series))
	assert.Len(t, series.Points, 110)
	assert.Equal(t, 90, series.Horizon)
}

func TestExportForecasts(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)
	service.EXPECT().Snapshot().Return(testSnapshot(testProducts()...), nil)

	rec := serve(Forecasts(service), httptest.NewRequest(http.MethodGet, "/v1/forecasts/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "forecasts-run42.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Total", "Caneca", "Cabo_USB"}, f.GetSheetList())
}

func TestGetSegments(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)
	service.EXPECT().Snapshot().Return(testSnapshot(), nil).Times(2)

	rec := serve(Segments(service), httptest.NewRequest(http.MethodGet, "/v1/segments?label=VIP+Customer&limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Counts    []domain.SegmentCount    `json:"counts"`
		Customers []domain.CustomerSummary `json:"customers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Counts, 3)
	assert.Equal(t, 2, body.Counts[0].Count)
	require.Len(t, body.Customers, 1)
	assert.Equal(t, "3", body.Customers[0].CustomerID)

	rec = serve(Segments(service), httptest.NewRequest(http.MethodGet, "/v1/segments?label=VIP+Customer&limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeSyncer struct {
	triggered int
}

func (f *fakeSyncer) TriggerManualSync() { f.triggered++ }

func (f *fakeSyncer) GetStatus() map[string]any {
	return map[string]any{"sync_running": false}
}

func TestCronJobs(t *testing.T) {
	auth := authenticating.NewService(&config.Config{Auth: config.Auth{Secret: "segredo"}})
	adminToken, err := auth.GenerateToken("ops", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)
	viewerToken, err := auth.GenerateToken("viewer", "viewer", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name          string
		method        string
		path          string
		token         string
		wantStatus    int
		wantTriggered int
	}{
		{name: "sem token", method: http.MethodPost, path: "/v1/cron/pipeline/run", wantStatus: http.StatusUnauthorized},
		{name: "token sem papel de admin", method: http.MethodPost, path: "/v1/cron/pipeline/run", token: viewerToken, wantStatus: http.StatusForbidden},
		{name: "admin dispara o pipeline", method: http.MethodPost, path: "/v1/cron/pipeline/run", token: adminToken, wantStatus: http.StatusAccepted, wantTriggered: 1},
		{name: "admin consulta status", method: http.MethodGet, path: "/v1/cron/status", token: adminToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := &fakeSyncer{}
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			rec := serve(CronJobs(CronJobServices{PipelineRefreshService: syncer}, auth), req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantTriggered, syncer.triggered)
		})
	}
}

func TestHealthcheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockDashboarder(ctrl)
	service.EXPECT().Snapshot().Return(testSnapshot(), nil)

	rec := serve(Healthcheck(service), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"run_id":"run42"`))
}
