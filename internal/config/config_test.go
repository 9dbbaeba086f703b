package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, SourceWorkbook, cfg.Source.Kind)
	assert.Equal(t, "supplier", cfg.Source.SheetSuppliers)
	assert.Equal(t, "Sales", cfg.Source.SheetSales)
	assert.Equal(t, "Customers", cfg.Source.SheetCustomers)
	assert.Equal(t, "Product", cfg.Source.SheetProducts)
	assert.Equal(t, 3, cfg.Segmentation.Clusters)
	assert.Equal(t, int64(42), cfg.Segmentation.Seed)
	assert.Equal(t, []string{"VIP Customer", "Mid-Level Customer", "Inactive Customer"}, cfg.Segmentation.Labels)
	assert.Equal(t, []string{"Mid-Level Customer", "VIP Customer", "Inactive Customer"}, cfg.Segmentation.StaticLabels)
	assert.Equal(t, 90, cfg.Forecast.HorizonDays)
	assert.Equal(t, 10, cfg.Forecast.MinDistinctDates)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "localhost:8050", cfg.Server.Addr())
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SEGMENTATION_CLUSTERS", "2")
	t.Setenv("SEGMENTATION_LABELS", "Alto,Baixo")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local,http://b.local")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 2, cfg.Segmentation.Clusters)
	assert.Equal(t, []string{"Alto", "Baixo"}, cfg.Segmentation.Labels)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.AllowedOrigins)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Source: Source{Kind: SourceWorkbook, WorkbookPath: "pro.xlsx"},
			Segmentation: Segmentation{
				Clusters:      3,
				NInit:         10,
				LabelStrategy: LabelStrategyRanked,
				Labels:        []string{"a", "b", "c"},
			},
			Forecast: Forecast{HorizonDays: 90, MinDistinctDates: 10, IntervalWidth: 0.8},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "configuração válida", mutate: func(c *Config) {}},
		{name: "fonte postgres sem planilha", mutate: func(c *Config) {
			c.Source = Source{Kind: SourcePostgres}
		}},
		{name: "fonte desconhecida", mutate: func(c *Config) { c.Source.Kind = "csv" }, wantErr: true},
		{name: "planilha sem caminho", mutate: func(c *Config) { c.Source.WorkbookPath = "" }, wantErr: true},
		{name: "zero clusters", mutate: func(c *Config) { c.Segmentation.Clusters = 0 }, wantErr: true},
		{name: "rótulos não batem com k", mutate: func(c *Config) { c.Segmentation.Clusters = 4 }, wantErr: true},
		{name: "estratégia inválida", mutate: func(c *Config) { c.Segmentation.LabelStrategy = "auto" }, wantErr: true},
		{name: "estratégia static com rótulos posicionais", mutate: func(c *Config) {
			c.Segmentation.LabelStrategy = LabelStrategyStatic
			c.Segmentation.StaticLabels = []string{"x", "y", "z"}
		}},
		{name: "estratégia static sem rótulos posicionais", mutate: func(c *Config) {
			c.Segmentation.LabelStrategy = LabelStrategyStatic
		}, wantErr: true},
		{name: "mínimo de datas distintas abaixo de 2", mutate: func(c *Config) { c.Forecast.MinDistinctDates = 1 }, wantErr: true},
		{name: "mínimo de datas distintas igual a 2", mutate: func(c *Config) { c.Forecast.MinDistinctDates = 2 }},
		{name: "horizonte zero", mutate: func(c *Config) { c.Forecast.HorizonDays = 0 }, wantErr: true},
		{name: "intervalo fora de (0,1)", mutate: func(c *Config) { c.Forecast.IntervalWidth = 1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
