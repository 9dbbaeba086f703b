package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/sales-intelligence/infrastructure/database/postgres"
	"github.com/vfg2006/sales-intelligence/infrastructure/migration"
	"github.com/vfg2006/sales-intelligence/infrastructure/workbook"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/internal/sampledata"
	"github.com/vfg2006/sales-intelligence/internal/usecases/authenticating"
)

var (
	output    string
	startDate string
	opts      = sampledata.DefaultOptions()

	rootCmd = &cobra.Command{
		Use:   "sample-workbook",
		Short: "Gera uma planilha sintética de vendas no formato lido pelo dashboard",
		Long: `sample-workbook escreve um arquivo .xlsx com as abas supplier, Sales,
Customers e Product preenchidas com dados fictícios. A mesma semente
gera sempre a mesma planilha.

Exemplo:
  sample-workbook --out data/pro.xlsx --seed 7 --sales 10000`,
		RunE:          runGenerate,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	tokenSubject string
	tokenTTL     time.Duration

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Emite um token admin para as rotas /v1/cron/*, assinado com AUTH_SECRET",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}

	importCmd = &cobra.Command{
		Use:   "import [planilha]",
		Short: "Carrega uma planilha nas tabelas do Postgres usadas com SALES_SOURCE=postgres",
		Long: `Carrega uma planilha nas tabelas do Postgres. Sem argumento usa WORKBOOK_PATH;
com "-" lê a planilha da entrada padrão.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runImport,
	}
)

func init() {
	rootCmd.Flags().StringVar(&output, "out", "data/pro.xlsx", "arquivo de saída")
	rootCmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "semente do gerador")
	rootCmd.Flags().IntVar(&opts.Customers, "customers", opts.Customers, "quantidade de clientes")
	rootCmd.Flags().IntVar(&opts.Products, "products", opts.Products, "quantidade de produtos")
	rootCmd.Flags().IntVar(&opts.Suppliers, "suppliers", opts.Suppliers, "quantidade de fornecedores")
	rootCmd.Flags().IntVar(&opts.Sales, "sales", opts.Sales, "quantidade de vendas")
	rootCmd.Flags().IntVar(&opts.Days, "days", opts.Days, "dias cobertos pelas vendas")
	rootCmd.Flags().StringVar(&startDate, "start", opts.Start.Format("2006-01-02"), "primeiro dia das vendas (AAAA-MM-DD)")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "ops", "identificação de quem usará o token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "validade do token")

	rootCmd.AddCommand(importCmd, tokenCmd)
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return fmt.Errorf("data inicial inválida %q: %w", startDate, err)
	}
	opts.Start = start

	wb, err := sampledata.NewGenerator(opts).Generate()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("erro ao criar diretório %s: %w", dir, err)
		}
	}

	sheets := workbook.Sheets{
		Suppliers: "supplier",
		Sales:     "Sales",
		Customers: "Customers",
		Products:  "Product",
	}
	if err := workbook.WriteWorkbook(output, wb, sheets); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"path":  output,
		"seed":  opts.Seed,
		"sales": len(wb.Sales),
	}).Info("Planilha de exemplo gerada")

	return nil
}

// runImport usa a mesma configuração da API para achar a planilha e o banco
func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	wb, err := loadWorkbook(ctx, cfg, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
	}
	defer conn.Close()

	return migration.NewImporter(conn).Import(ctx, wb)
}

func loadWorkbook(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader) (*domain.Workbook, error) {
	if len(args) == 1 && args[0] == "-" {
		return workbook.ReadFrom(ctx, stdin, workbook.SheetsFromConfig(cfg.Source))
	}
	if len(args) == 1 {
		cfg.Source.WorkbookPath = args[0]
	}
	return workbook.NewReader(cfg).Load(ctx)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	return issueToken(authenticating.NewService(cfg), tokenSubject, tokenTTL, cmd.OutOrStdout())
}

func issueToken(authenticator authenticating.Authenticator, subject string, ttl time.Duration, out io.Writer) error {
	if ttl <= 0 {
		return fmt.Errorf("validade do token deve ser positiva, recebido %s", ttl)
	}

	token, err := authenticator.GenerateToken(subject, domain.RoleAdmin, ttl)
	if err != nil {
		return fmt.Errorf("erro ao emitir token (AUTH_SECRET configurado?): %w", err)
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
