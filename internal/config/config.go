package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	SourceWorkbook = "workbook"
	SourcePostgres = "postgres"

	LabelStrategyRanked = "ranked"
	LabelStrategyStatic = "static"
)

type Config struct {
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Source          Source          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Segmentation    Segmentation    `mapstructure:",squash"`
	Forecast        Forecast        `mapstructure:",squash"`
	Dashboard       Dashboard       `mapstructure:",squash"`
	Auth            Auth            `mapstructure:",squash"`
	PipelineRefresh PipelineRefresh `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"server_shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"cors_allowed_origins"`
}

// Source define de onde as planilhas de vendas são lidas
type Source struct {
	Kind           string `mapstructure:"sales_source"`
	WorkbookPath   string `mapstructure:"workbook_path"`
	SheetSuppliers string `mapstructure:"sheet_suppliers"`
	SheetSales     string `mapstructure:"sheet_sales"`
	SheetCustomers string `mapstructure:"sheet_customers"`
	SheetProducts  string `mapstructure:"sheet_products"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Segmentation struct {
	Clusters      int      `mapstructure:"segmentation_clusters"`
	Seed          int64    `mapstructure:"segmentation_seed"`
	NInit         int      `mapstructure:"segmentation_n_init"`
	MaxIterations int      `mapstructure:"segmentation_max_iterations"`
	LabelStrategy string   `mapstructure:"segmentation_label_strategy"`
	Labels        []string `mapstructure:"segmentation_labels"`
	StaticLabels  []string `mapstructure:"segmentation_static_labels"` // Rótulo por índice de cluster na estratégia static
}

type Forecast struct {
	HorizonDays      int     `mapstructure:"forecast_horizon_days"`
	MinDistinctDates int     `mapstructure:"forecast_min_distinct_dates"`
	IntervalWidth    float64 `mapstructure:"forecast_interval_width"`
}

type Dashboard struct {
	Title        string `mapstructure:"dashboard_title"`
	TopCustomers int    `mapstructure:"dashboard_top_customers"`
	VIPLabel     string `mapstructure:"dashboard_vip_label"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type PipelineRefresh struct {
	CronSchedule string `mapstructure:"pipeline_refresh_cron"`
	Enabled      bool   `mapstructure:"pipeline_refresh_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8050)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("SALES_SOURCE", SourceWorkbook)
	viper.SetDefault("WORKBOOK_PATH", "data/pro.xlsx")
	viper.SetDefault("SHEET_SUPPLIERS", "supplier")
	viper.SetDefault("SHEET_SALES", "Sales")
	viper.SetDefault("SHEET_CUSTOMERS", "Customers")
	viper.SetDefault("SHEET_PRODUCTS", "Product")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/sales?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	// Segmentação de clientes (k-means)
	viper.SetDefault("SEGMENTATION_CLUSTERS", 3)
	viper.SetDefault("SEGMENTATION_SEED", 42)
	viper.SetDefault("SEGMENTATION_N_INIT", 10)
	viper.SetDefault("SEGMENTATION_MAX_ITERATIONS", 300)
	viper.SetDefault("SEGMENTATION_LABEL_STRATEGY", LabelStrategyRanked)
	viper.SetDefault("SEGMENTATION_LABELS", "VIP Customer,Mid-Level Customer,Inactive Customer")
	viper.SetDefault("SEGMENTATION_STATIC_LABELS", "Mid-Level Customer,VIP Customer,Inactive Customer")

	// Previsão de vendas
	viper.SetDefault("FORECAST_HORIZON_DAYS", 90)       // 3 meses à frente
	viper.SetDefault("FORECAST_MIN_DISTINCT_DATES", 10) // mínimo de datas distintas por produto
	viper.SetDefault("FORECAST_INTERVAL_WIDTH", 0.8)    // intervalo de incerteza de 80%

	viper.SetDefault("DASHBOARD_TITLE", "Sales & Customer Dashboard")
	viper.SetDefault("DASHBOARD_TOP_CUSTOMERS", 10)
	viper.SetDefault("DASHBOARD_VIP_LABEL", "VIP Customer")

	viper.SetDefault("AUTH_SECRET", "")

	viper.SetDefault("PIPELINE_REFRESH_CRON", "0 2 * * *") // Todos os dias às 2h da manhã
	viper.SetDefault("PIPELINE_REFRESH_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env): ", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica combinações de parâmetros que impediriam o pipeline de rodar
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceWorkbook:
		if c.Source.WorkbookPath == "" {
			return fmt.Errorf("config: WORKBOOK_PATH é obrigatório quando SALES_SOURCE=%s", SourceWorkbook)
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("config: SALES_SOURCE inválido: %q", c.Source.Kind)
	}

	if c.Segmentation.Clusters < 1 {
		return fmt.Errorf("config: SEGMENTATION_CLUSTERS deve ser maior que zero, recebido %d", c.Segmentation.Clusters)
	}

	if c.Segmentation.NInit < 1 {
		return fmt.Errorf("config: SEGMENTATION_N_INIT deve ser maior que zero, recebido %d", c.Segmentation.NInit)
	}

	switch c.Segmentation.LabelStrategy {
	case LabelStrategyRanked, LabelStrategyStatic:
	default:
		return fmt.Errorf("config: SEGMENTATION_LABEL_STRATEGY inválido: %q", c.Segmentation.LabelStrategy)
	}

	if len(c.Segmentation.Labels) != c.Segmentation.Clusters {
		return fmt.Errorf("config: SEGMENTATION_LABELS tem %d rótulos, esperado %d (um por cluster)",
			len(c.Segmentation.Labels), c.Segmentation.Clusters)
	}

	if c.Segmentation.LabelStrategy == LabelStrategyStatic && len(c.Segmentation.StaticLabels) != c.Segmentation.Clusters {
		return fmt.Errorf("config: SEGMENTATION_STATIC_LABELS tem %d rótulos, esperado %d (um por cluster)",
			len(c.Segmentation.StaticLabels), c.Segmentation.Clusters)
	}

	if c.Forecast.HorizonDays < 1 {
		return fmt.Errorf("config: FORECAST_HORIZON_DAYS deve ser maior que zero, recebido %d", c.Forecast.HorizonDays)
	}

	// Uma única data não sustenta o ajuste do modelo
	if c.Forecast.MinDistinctDates < 2 {
		return fmt.Errorf("config: FORECAST_MIN_DISTINCT_DATES deve ser pelo menos 2, recebido %d", c.Forecast.MinDistinctDates)
	}

	if c.Forecast.IntervalWidth <= 0 || c.Forecast.IntervalWidth >= 1 {
		return fmt.Errorf("config: FORECAST_INTERVAL_WIDTH deve estar entre 0 e 1, recebido %v", c.Forecast.IntervalWidth)
	}

	return nil
}

// Addr retorna o endereço de escuta do servidor HTTP
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de: ", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de: ", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
