// Package workbook lê e escreve as planilhas de vendas com excelize
package workbook

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/internal/config"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// Colunas referenciadas pelo pipeline (nomes exatos, sensíveis a maiúsculas)
const (
	ColSaleID       = "Sale_ID"
	ColCustomerID   = "Customer_ID"
	ColProductID    = "Product_ID"
	ColSupplierID   = "Supplier_ID"
	ColDate         = "Date"
	ColQuantity     = "Quantity"
	ColPrice        = "Price"
	ColDiscount     = "Discount"
	ColName         = "Name"
	ColProductName  = "Product_Name"
	ColSupplierName = "Supplier_Name"
)

// Sheets são os nomes das quatro abas de origem
type Sheets struct {
	Suppliers string
	Sales     string
	Customers string
	Products  string
}

func SheetsFromConfig(cfg config.Source) Sheets {
	return Sheets{
		Suppliers: cfg.SheetSuppliers,
		Sales:     cfg.SheetSales,
		Customers: cfg.SheetCustomers,
		Products:  cfg.SheetProducts,
	}
}

type Reader struct {
	path   string
	sheets Sheets
}

func NewReader(cfg *config.Config) *Reader {
	return &Reader{
		path:   cfg.Source.WorkbookPath,
		sheets: SheetsFromConfig(cfg.Source),
	}
}

// Load abre o arquivo configurado e lê as quatro abas
func (r *Reader) Load(ctx context.Context) (*domain.Workbook, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, errors.Wrapf(err, "workbook: erro ao abrir %s", r.path)
	}
	defer f.Close()

	logrus.WithField("path", r.path).Info("workbook: planilha aberta")

	return ReadFile(ctx, f, r.sheets)
}

// ReadFrom lê uma planilha a partir de um io.Reader
func ReadFrom(ctx context.Context, reader io.Reader, sheets Sheets) (*domain.Workbook, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "workbook: erro ao ler planilha")
	}
	defer f.Close()

	return ReadFile(ctx, f, sheets)
}

func ReadFile(ctx context.Context, f *excelize.File, sheets Sheets) (*domain.Workbook, error) {
	suppliers, err := readSuppliers(f, sheets.Suppliers)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sales, err := readSales(f, sheets.Sales)
	if err != nil {
		return nil, err
	}

	customers, err := readCustomers(f, sheets.Customers)
	if err != nil {
		return nil, err
	}

	products, err := readProducts(f, sheets.Products)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"sales":     len(sales),
		"customers": len(customers),
		"products":  len(products),
		"suppliers": len(suppliers),
	}).Info("workbook: abas carregadas")

	return &domain.Workbook{
		Sales:     sales,
		Customers: customers,
		Products:  products,
		Suppliers: suppliers,
	}, nil
}

// table é uma aba com o cabeçalho indexado por nome de coluna
type table struct {
	sheet   string
	header  []string
	columns map[string]int
	rows    [][]string
}

func readTable(f *excelize.File, sheet string, required ...string) (*table, error) {
	index, err := f.GetSheetIndex(sheet)
	if err != nil || index == -1 {
		return nil, &SourceError{Err: ErrMissingSheet, Sheet: sheet}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "workbook: erro ao ler aba %s", sheet)
	}

	t := &table{sheet: sheet, columns: make(map[string]int)}
	if len(rows) > 0 {
		t.header = rows[0]
		for i, name := range rows[0] {
			name = strings.TrimSpace(name)
			if _, exists := t.columns[name]; !exists && name != "" {
				t.columns[name] = i
			}
		}
		t.rows = rows[1:]
	}

	for _, column := range required {
		if _, ok := t.columns[column]; !ok {
			return nil, &SourceError{Err: ErrMissingColumn, Sheet: sheet, Column: column}
		}
	}

	return t, nil
}

func (t *table) value(row []string, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// each percorre as linhas não vazias informando o número da linha na planilha
func (t *table) each(fn func(row []string, line int) error) error {
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}
		if err := fn(row, i+2); err != nil {
			return err
		}
	}
	return nil
}

func (t *table) float(row []string, line int, column string) (float64, error) {
	raw := t.value(row, column)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &SourceError{Err: ErrInvalidValue, Sheet: t.sheet, Column: column, Row: line, Value: raw}
	}
	return v, nil
}

func (t *table) date(row []string, line int, column string) (time.Time, error) {
	raw := t.value(row, column)

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		date, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return utils.TruncateToDay(date), nil
		}
	}

	date, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, &SourceError{Err: ErrInvalidValue, Sheet: t.sheet, Column: column, Row: line, Value: raw}
	}

	return utils.TruncateToDay(date), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readSales(f *excelize.File, sheet string) ([]domain.Sale, error) {
	t, err := readTable(f, sheet,
		ColSaleID, ColCustomerID, ColProductID, ColSupplierID,
		ColDate, ColQuantity, ColPrice, ColDiscount,
	)
	if err != nil {
		return nil, err
	}

	sales := make([]domain.Sale, 0, len(t.rows))
	err = t.each(func(row []string, line int) error {
		date, err := t.date(row, line, ColDate)
		if err != nil {
			return err
		}

		quantity, err := t.float(row, line, ColQuantity)
		if err != nil {
			return err
		}

		price, err := t.float(row, line, ColPrice)
		if err != nil {
			return err
		}

		// Desconto em branco equivale a nenhum desconto
		discount := 0.0
		if t.value(row, ColDiscount) != "" {
			discount, err = t.float(row, line, ColDiscount)
			if err != nil {
				return err
			}
		}

		sales = append(sales, domain.Sale{
			SaleID:     t.value(row, ColSaleID),
			CustomerID: t.value(row, ColCustomerID),
			ProductID:  t.value(row, ColProductID),
			SupplierID: t.value(row, ColSupplierID),
			Date:       date,
			Quantity:   quantity,
			Price:      price,
			Discount:   discount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sales, nil
}

func readCustomers(f *excelize.File, sheet string) ([]domain.Customer, error) {
	t, err := readTable(f, sheet, ColCustomerID, ColName)
	if err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(t.rows))
	err = t.each(func(row []string, line int) error {
		attributes := make(map[string]string)
		for i, column := range t.header {
			column = strings.TrimSpace(column)
			if column == "" || column == ColCustomerID || column == ColName || i >= len(row) {
				continue
			}
			attributes[column] = strings.TrimSpace(row[i])
		}

		customers = append(customers, domain.Customer{
			CustomerID: t.value(row, ColCustomerID),
			Name:       t.value(row, ColName),
			Attributes: attributes,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return customers, nil
}

func readProducts(f *excelize.File, sheet string) ([]domain.Product, error) {
	t, err := readTable(f, sheet, ColProductID, ColProductName)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(t.rows))
	err = t.each(func(row []string, line int) error {
		products = append(products, domain.Product{
			ProductID:   t.value(row, ColProductID),
			ProductName: t.value(row, ColProductName),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

func readSuppliers(f *excelize.File, sheet string) ([]domain.Supplier, error) {
	t, err := readTable(f, sheet, ColSupplierID, ColSupplierName)
	if err != nil {
		return nil, err
	}

	suppliers := make([]domain.Supplier, 0, len(t.rows))
	err = t.each(func(row []string, line int) error {
		suppliers = append(suppliers, domain.Supplier{
			SupplierID:   t.value(row, ColSupplierID),
			SupplierName: t.value(row, ColSupplierName),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return suppliers, nil
}
