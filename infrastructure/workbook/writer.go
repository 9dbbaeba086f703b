package workbook

import (
	"io"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	TotalSheetName = domain.TotalSheetName
	defaultSheet   = "Sheet1"
)

var forecastHeader = []interface{}{"ds", "yhat", "yhat_lower", "yhat_upper", "trend", "y", ColProductName}

// WriteForecasts grava uma aba "Total" e uma aba por produto, usando o SheetName de cada previsão
func WriteForecasts(w io.Writer, total *domain.ForecastSeries, products []*domain.ProductForecast) error {
	f := excelize.NewFile()
	defer f.Close()
	sw := &sheetWriter{f: f}

	if total != nil {
		if err := sw.forecast(TotalSheetName, "", total); err != nil {
			return err
		}
	}

	for _, pf := range products {
		if err := sw.forecast(pf.SheetName, pf.ProductName, pf.Forecast); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "workbook: erro ao gravar exportação")
	}

	return nil
}

func (sw *sheetWriter) forecast(sheet, productName string, series *domain.ForecastSeries) error {
	rows := [][]interface{}{forecastHeader}
	if series != nil {
		for _, p := range series.Points {
			var actual interface{}
			if p.Actual != nil {
				actual = *p.Actual
			}
			rows = append(rows, []interface{}{p.Date, p.Yhat, p.YhatLower, p.YhatUpper, p.Trend, actual, productName})
		}
	}

	return sw.write(sheet, rows)
}

// WriteWorkbook grava as quatro abas de origem em um arquivo .xlsx
func WriteWorkbook(path string, wb *domain.Workbook, sheets Sheets) error {
	f := excelize.NewFile()
	defer f.Close()
	sw := &sheetWriter{f: f}

	sales := [][]interface{}{{ColSaleID, ColCustomerID, ColProductID, ColSupplierID, ColDate, ColQuantity, ColPrice, ColDiscount}}
	for _, s := range wb.Sales {
		sales = append(sales, []interface{}{s.SaleID, s.CustomerID, s.ProductID, s.SupplierID, s.Date, s.Quantity, s.Price, s.Discount})
	}

	customers := [][]interface{}{{ColCustomerID, ColName, "Email", "City"}}
	for _, c := range wb.Customers {
		customers = append(customers, []interface{}{c.CustomerID, c.Name, c.Attributes["Email"], c.Attributes["City"]})
	}

	products := [][]interface{}{{ColProductID, ColProductName}}
	for _, p := range wb.Products {
		products = append(products, []interface{}{p.ProductID, p.ProductName})
	}

	suppliers := [][]interface{}{{ColSupplierID, ColSupplierName}}
	for _, s := range wb.Suppliers {
		suppliers = append(suppliers, []interface{}{s.SupplierID, s.SupplierName})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{sheets.Suppliers, suppliers},
		{sheets.Sales, sales},
		{sheets.Customers, customers},
		{sheets.Products, products},
	} {
		if err := sw.write(sheet.name, sheet.rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "workbook: erro ao salvar %s", path)
	}

	return nil
}

// sheetWriter reaproveita a aba padrão do excelize como primeira aba gravada
type sheetWriter struct {
	f       *excelize.File
	written int
}

func (sw *sheetWriter) write(sheet string, rows [][]interface{}) error {
	if sw.written == 0 {
		if err := sw.f.SetSheetName(defaultSheet, sheet); err != nil {
			return errors.Wrapf(err, "workbook: erro ao criar aba %s", sheet)
		}
	} else if _, err := sw.f.NewSheet(sheet); err != nil {
		return errors.Wrapf(err, "workbook: erro ao criar aba %s", sheet)
	}
	sw.written++

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := sw.f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "workbook: erro ao gravar linha %d da aba %s", i+1, sheet)
		}
	}
	return nil
}
