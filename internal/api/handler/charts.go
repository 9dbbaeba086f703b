package handler

import (
	"fmt"
	"html/template"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/pkg/utils"
)

// chart é o que os gráficos do go-echarts expõem para serialização
type chart interface {
	Validate()
	JSON() map[string]interface{}
	JSONNotEscaped() template.HTML
}

// chartOption valida o gráfico e devolve o objeto de opções do ECharts
func chartOption(c chart) map[string]interface{} {
	c.Validate()
	return c.JSON()
}

// chartScript devolve as opções do gráfico prontas para o bloco <script> da página
func chartScript(c chart) template.JS {
	c.Validate()
	return template.JS(c.JSONNotEscaped())
}

// segmentPie mostra a distribuição de clientes por rótulo de cluster
func segmentPie(seg *domain.Segmentation) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Customer Segments"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item", Formatter: "{b}: {c} ({d}%)"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "bottom"}),
	)

	data := make([]opts.PieData, 0)
	if seg != nil {
		for _, count := range seg.Counts() {
			data = append(data, opts.PieData{Name: count.Label, Value: count.Count})
		}
	}

	pie.AddSeries("Cluster_Label", data, charts.WithLabelOpts(opts.Label{Show: true, Formatter: "{b}"}))

	return pie
}

// topCustomersBar mostra os clientes de maior gasto total de um rótulo
func topCustomersBar(label string, customers []domain.CustomerSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Top %d %ss", len(customers), label)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Customer_ID", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Total_Spent"}),
	)

	ids := make([]string, 0, len(customers))
	data := make([]opts.BarData, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.CustomerID)
		data = append(data, opts.BarData{Name: c.Name, Value: utils.RoundWithTwoDecimalPlace(c.TotalSpent)})
	}

	bar.SetXAxis(ids).AddSeries("Total_Spent", data)

	return bar
}

// forecastLine desenha yhat com as bandas do intervalo e os valores observados
func forecastLine(title string, series *domain.ForecastSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "ds", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "yhat"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	if series == nil {
		return line
	}

	dates := make([]string, len(series.Points))
	yhat := make([]opts.LineData, len(series.Points))
	lower := make([]opts.LineData, len(series.Points))
	upper := make([]opts.LineData, len(series.Points))
	actual := make([]opts.LineData, len(series.Points))

	for i, p := range series.Points {
		dates[i] = p.Date.Format(time.DateOnly)
		yhat[i] = opts.LineData{Value: utils.RoundWithTwoDecimalPlace(p.Yhat)}
		lower[i] = opts.LineData{Value: utils.RoundWithTwoDecimalPlace(p.YhatLower)}
		upper[i] = opts.LineData{Value: utils.RoundWithTwoDecimalPlace(p.YhatUpper)}

		// "-" é o valor vazio do ECharts, usado nas datas futuras
		actual[i] = opts.LineData{Value: "-"}
		if p.Actual != nil {
			actual[i] = opts.LineData{Value: utils.RoundWithTwoDecimalPlace(*p.Actual)}
		}
	}

	line.SetXAxis(dates).
		AddSeries("yhat", yhat, charts.WithLineChartOpts(opts.LineChart{Smooth: true})).
		AddSeries("yhat_lower", lower, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})).
		AddSeries("yhat_upper", upper, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})).
		AddSeries("y", actual)

	return line
}

func totalForecastTitle(horizon int) string {
	return fmt.Sprintf("Total Sales Forecast (next %d days)", horizon)
}

func productForecastTitle(name string) string {
	return fmt.Sprintf("Forecast for %s", name)
}

func horizonOf(series *domain.ForecastSeries) int {
	if series == nil {
		return 0
	}
	return series.Horizon
}
