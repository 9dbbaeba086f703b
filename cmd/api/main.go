package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/infrastructure/database/postgres"
	"github.com/vfg2006/sales-intelligence/infrastructure/repository"
	"github.com/vfg2006/sales-intelligence/infrastructure/workbook"
	"github.com/vfg2006/sales-intelligence/internal/api"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/scheduler"
	"github.com/vfg2006/sales-intelligence/internal/usecases/authenticating"
	"github.com/vfg2006/sales-intelligence/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-intelligence/internal/usecases/forecasting"
	"github.com/vfg2006/sales-intelligence/internal/usecases/ingesting"
	"github.com/vfg2006/sales-intelligence/internal/usecases/segmenting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var source dashboarding.SalesSource
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		pgConn := pgconn(ctx, cfg.Database)
		defer pgConn.Close()
		source = repository.NewSalesSourceRepository(pgConn)
	default:
		source = workbook.NewReader(cfg)
	}

	dashboardService := dashboarding.NewService(
		source,
		ingesting.NewService(),
		segmenting.NewService(cfg.Segmentation),
		forecasting.NewService(cfg.Forecast),
	)

	// Sem resultado inicial o dashboard não tem o que exibir
	if _, err := dashboardService.Refresh(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao executar o pipeline de vendas")
	}

	authenticator := authenticating.NewService(cfg)

	pipelineRefreshService := scheduler.NewPipelineRefreshService(dashboardService, cfg)
	if err := pipelineRefreshService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reprocessamento do pipeline")
	} else {
		logrus.Info("Agendador de reprocessamento do pipeline iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		dashboardService,
		authenticator,
		pipelineRefreshService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
