// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/infrastructure/database/postgres"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	salesTable     = "sales s"
	customersTable = "customers c"
	productsTable  = "products p"
	suppliersTable = "suppliers sp"
)

type SalesSourceRepository interface {
	Load(ctx context.Context) (*domain.Workbook, error)
}

type salesSourceRepository struct {
	conn postgres.Conn
}

// NewSalesSourceRepository lê as quatro tabelas do banco no lugar da planilha
func NewSalesSourceRepository(conn postgres.Conn) SalesSourceRepository {
	return &salesSourceRepository{
		conn: conn,
	}
}

// Load lê as tabelas dentro de uma transação somente leitura para obter uma visão consistente
func (r *salesSourceRepository) Load(ctx context.Context) (*domain.Workbook, error) {
	wb := &domain.Workbook{}

	err := r.conn.RunInTransaction(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
		var err error

		if wb.Sales, err = r.loadSales(ctx, tx); err != nil {
			return err
		}
		if wb.Customers, err = r.loadCustomers(ctx, tx); err != nil {
			return err
		}
		if wb.Products, err = r.loadProducts(ctx, tx); err != nil {
			return err
		}
		wb.Suppliers, err = r.loadSuppliers(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"sales":     len(wb.Sales),
		"customers": len(wb.Customers),
		"products":  len(wb.Products),
		"suppliers": len(wb.Suppliers),
	}).Info("repository: tabelas de vendas carregadas")

	return wb, nil
}

func salesQuery() squirrel.SelectBuilder {
	return squirrel.
		Select(
			"s.sale_id::text",
			"s.customer_id::text",
			"s.product_id::text",
			"s.supplier_id::text",
			"s.sale_date",
			"s.quantity",
			"s.price",
			"s.discount",
		).
		From(salesTable).
		OrderBy("s.sale_date ASC", "s.sale_id ASC").
		PlaceholderFormat(squirrel.Dollar)
}

func customersQuery() squirrel.SelectBuilder {
	return squirrel.
		Select("c.customer_id::text", "c.name", "c.attributes").
		From(customersTable).
		OrderBy("c.customer_id ASC").
		PlaceholderFormat(squirrel.Dollar)
}

func productsQuery() squirrel.SelectBuilder {
	return squirrel.
		Select("p.product_id::text", "p.product_name").
		From(productsTable).
		OrderBy("p.product_id ASC").
		PlaceholderFormat(squirrel.Dollar)
}

func suppliersQuery() squirrel.SelectBuilder {
	return squirrel.
		Select("sp.supplier_id::text", "sp.supplier_name").
		From(suppliersTable).
		OrderBy("sp.supplier_id ASC").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *salesSourceRepository) loadSales(ctx context.Context, q postgres.Queryer) ([]domain.Sale, error) {
	rows, err := query(ctx, q, salesQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		var (
			sale     domain.Sale
			discount sql.NullFloat64
		)

		if err := rows.Scan(
			&sale.SaleID,
			&sale.CustomerID,
			&sale.ProductID,
			&sale.SupplierID,
			&sale.Date,
			&sale.Quantity,
			&sale.Price,
			&discount,
		); err != nil {
			return nil, fmt.Errorf("erro ao ler venda: %w", err)
		}

		sale.Date = utils.TruncateToDay(sale.Date)
		sale.Discount = discount.Float64
		sales = append(sales, sale)
	}

	return sales, rows.Err()
}

func (r *salesSourceRepository) loadCustomers(ctx context.Context, q postgres.Queryer) ([]domain.Customer, error) {
	rows, err := query(ctx, q, customersQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var (
			customer   domain.Customer
			name       sql.NullString
			attributes []byte
		)
		if err := rows.Scan(&customer.CustomerID, &name, &attributes); err != nil {
			return nil, fmt.Errorf("erro ao ler cliente: %w", err)
		}
		customer.Name = name.String

		if len(attributes) > 0 {
			if err := json.Unmarshal(attributes, &customer.Attributes); err != nil {
				return nil, fmt.Errorf("erro ao ler atributos do cliente %s: %w", customer.CustomerID, err)
			}
		}
		customers = append(customers, customer)
	}

	return customers, rows.Err()
}

func (r *salesSourceRepository) loadProducts(ctx context.Context, q postgres.Queryer) ([]domain.Product, error) {
	rows, err := query(ctx, q, productsQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			product domain.Product
			name    sql.NullString
		)
		if err := rows.Scan(&product.ProductID, &name); err != nil {
			return nil, fmt.Errorf("erro ao ler produto: %w", err)
		}
		product.ProductName = name.String
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *salesSourceRepository) loadSuppliers(ctx context.Context, q postgres.Queryer) ([]domain.Supplier, error) {
	rows, err := query(ctx, q, suppliersQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0)
	for rows.Next() {
		var (
			supplier domain.Supplier
			name     sql.NullString
		)
		if err := rows.Scan(&supplier.SupplierID, &name); err != nil {
			return nil, fmt.Errorf("erro ao ler fornecedor: %w", err)
		}
		supplier.SupplierName = name.String
		suppliers = append(suppliers, supplier)
	}

	return suppliers, rows.Err()
}

func query(ctx context.Context, q postgres.Queryer, builder squirrel.SelectBuilder) (*sql.Rows, error) {
	sqlQuery, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}

	return rows, nil
}
