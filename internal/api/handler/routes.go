package handler

import (
	"net/http"

	"github.com/vfg2006/sales-intelligence/internal/api/handler/router"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/usecases/authenticating"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-intelligence/pkg/middleware"
)

func Healthcheck(service dashboarding.Dashboarder) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(service),
		},
	}
}

func DashboardPage(service dashboarding.Dashboarder, cfg config.Dashboard) []router.Route {
	return []router.Route{
		{
			Path:    "/",
			Method:  http.MethodGet,
			Handler: Dashboard(service, cfg),
		},
	}
}

func Forecasts(service dashboarding.Dashboarder) []router.Route {
	return []router.Route{
		{
			Path:    ProductChartPath,
			Method:  http.MethodGet,
			Handler: GetProductForecastChart(service),
		},
		{
			Path:    "/v1/forecasts/product",
			Method:  http.MethodGet,
			Handler: GetProductForecast(service),
		},
		{
			Path:    "/v1/forecasts/products",
			Method:  http.MethodGet,
			Handler: ListProductForecasts(service),
		},
		{
			Path:    "/v1/forecasts/total",
			Method:  http.MethodGet,
			Handler: GetTotalForecast(service),
		},
		{
			Path:    "/v1/forecasts/export",
			Method:  http.MethodGet,
			Handler: ExportForecasts(service),
		},
	}
}

func Segments(service dashboarding.Dashboarder) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/segments",
			Method:  http.MethodGet,
			Handler: GetSegments(service),
		},
	}
}

func CronJobs(services CronJobServices, authenticator authenticating.Authenticator) []router.Route {
	adminOnly := []func(http.Handler) http.Handler{
		middleware.AuthMiddleware(authenticator),
		middleware.AdminOnly(),
	}

	return []router.Route{
		{
			Path:        "/v1/cron/" + CronJobTypePipeline + "/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services, CronJobTypePipeline),
			Middlewares: adminOnly,
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: adminOnly,
		},
	}
}
