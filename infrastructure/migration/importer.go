// Package migration cria as tabelas de vendas no Postgres e carrega nelas o conteúdo de uma planilha
package migration

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/infrastructure/database/postgres"
	"github.com/vfg2006/sales-intelligence/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BatchSize limita a quantidade de linhas por INSERT para ficar abaixo do limite de parâmetros do Postgres
const BatchSize = 500

// As chaves não são únicas: IDs repetidos multiplicam linhas no join, como na planilha
var schema = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
		supplier_id   TEXT NOT NULL,
		supplier_name TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id   TEXT NOT NULL,
		product_name TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT NOT NULL,
		name        TEXT,
		attributes  JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		sale_id     TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		product_id  TEXT NOT NULL,
		supplier_id TEXT NOT NULL,
		sale_date   DATE NOT NULL,
		quantity    NUMERIC NOT NULL,
		price       NUMERIC NOT NULL,
		discount    NUMERIC
	)`,
	`CREATE INDEX IF NOT EXISTS suppliers_supplier_id_idx ON suppliers (supplier_id)`,
	`CREATE INDEX IF NOT EXISTS products_product_id_idx ON products (product_id)`,
	`CREATE INDEX IF NOT EXISTS customers_customer_id_idx ON customers (customer_id)`,
	`CREATE INDEX IF NOT EXISTS sales_sale_date_idx ON sales (sale_date)`,
}

var truncate = `TRUNCATE TABLE sales, customers, products, suppliers`

type Importer struct {
	conn postgres.Conn
}

func NewImporter(conn postgres.Conn) *Importer {
	return &Importer{conn: conn}
}

// Import recria o conteúdo das quatro tabelas numa única transação
func (i *Importer) Import(ctx context.Context, wb *domain.Workbook) error {
	startTime := time.Now()

	err := i.conn.RunInTransaction(ctx, nil, func(tx *sql.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrap(err, "migration: erro ao criar schema")
			}
		}

		if _, err := tx.ExecContext(ctx, truncate); err != nil {
			return errors.Wrap(err, "migration: erro ao limpar tabelas")
		}

		inserts, err := InsertStatements(wb)
		if err != nil {
			return err
		}

		for _, insert := range inserts {
			query, args, err := insert.ToSql()
			if err != nil {
				return errors.Wrap(err, "migration: erro ao construir insert")
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrap(err, "migration: erro ao inserir linhas")
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"sales":     len(wb.Sales),
		"customers": len(wb.Customers),
		"products":  len(wb.Products),
		"suppliers": len(wb.Suppliers),
		"elapsed":   time.Since(startTime).String(),
	}).Info("migration: carga concluída")

	return nil
}

// InsertStatements monta os inserts em lotes de BatchSize linhas, tabela a tabela
func InsertStatements(wb *domain.Workbook) ([]squirrel.InsertBuilder, error) {
	var inserts []squirrel.InsertBuilder

	inserts = appendBatches(inserts, len(wb.Suppliers), func() squirrel.InsertBuilder {
		return insertInto("suppliers", "supplier_id", "supplier_name")
	}, func(b squirrel.InsertBuilder, idx int) squirrel.InsertBuilder {
		s := wb.Suppliers[idx]
		return b.Values(s.SupplierID, nullable(s.SupplierName))
	})

	inserts = appendBatches(inserts, len(wb.Products), func() squirrel.InsertBuilder {
		return insertInto("products", "product_id", "product_name")
	}, func(b squirrel.InsertBuilder, idx int) squirrel.InsertBuilder {
		p := wb.Products[idx]
		return b.Values(p.ProductID, nullable(p.ProductName))
	})

	attributes := make([][]byte, len(wb.Customers))
	for idx, c := range wb.Customers {
		if len(c.Attributes) == 0 {
			continue
		}
		raw, err := json.Marshal(c.Attributes)
		if err != nil {
			return nil, errors.Wrapf(err, "migration: erro ao serializar atributos do cliente %s", c.CustomerID)
		}
		attributes[idx] = raw
	}

	inserts = appendBatches(inserts, len(wb.Customers), func() squirrel.InsertBuilder {
		return insertInto("customers", "customer_id", "name", "attributes")
	}, func(b squirrel.InsertBuilder, idx int) squirrel.InsertBuilder {
		c := wb.Customers[idx]
		var attrs interface{}
		if attributes[idx] != nil {
			attrs = string(attributes[idx])
		}
		return b.Values(c.CustomerID, nullable(c.Name), attrs)
	})

	inserts = appendBatches(inserts, len(wb.Sales), func() squirrel.InsertBuilder {
		return insertInto("sales",
			"sale_id", "customer_id", "product_id", "supplier_id",
			"sale_date", "quantity", "price", "discount",
		)
	}, func(b squirrel.InsertBuilder, idx int) squirrel.InsertBuilder {
		s := wb.Sales[idx]
		return b.Values(
			s.SaleID, s.CustomerID, s.ProductID, s.SupplierID,
			s.Date.Format("2006-01-02"), s.Quantity, s.Price, s.Discount,
		)
	})

	return inserts, nil
}

func insertInto(table string, columns ...string) squirrel.InsertBuilder {
	return squirrel.
		Insert(table).
		Columns(columns...).
		PlaceholderFormat(squirrel.Dollar)
}

func appendBatches(
	inserts []squirrel.InsertBuilder,
	total int,
	newBuilder func() squirrel.InsertBuilder,
	addRow func(squirrel.InsertBuilder, int) squirrel.InsertBuilder,
) []squirrel.InsertBuilder {
	for start := 0; start < total; start += BatchSize {
		end := start + BatchSize
		if end > total {
			end = total
		}

		builder := newBuilder()
		for idx := start; idx < end; idx++ {
			builder = addRow(builder, idx)
		}
		inserts = append(inserts, builder)
	}

	return inserts
}

// Textos vazios viram NULL para o join tratá-los como ausentes
func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
