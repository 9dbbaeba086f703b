package ingesting

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-intelligence/internal/domain"
)

// Ingester cruza as vendas com clientes, produtos e fornecedores
type Ingester interface {
	// Enrich faz os três LEFT joins e descarta linhas sem nome de cliente, produto ou fornecedor
	Enrich(wb *domain.Workbook) []domain.EnrichedSale
}

type Service struct{}

func NewService() Ingester {
	return &Service{}
}

// Report resume as contagens de uma execução do cruzamento
type Report struct {
	Raw     int
	Joined  int
	Dropped int
	Kept    int
}

func (s *Service) Enrich(wb *domain.Workbook) []domain.EnrichedSale {
	records, report := Enrich(wb)

	logrus.WithFields(logrus.Fields{
		"raw":     report.Raw,
		"joined":  report.Joined,
		"dropped": report.Dropped,
		"kept":    report.Kept,
	}).Info("ingesting: vendas cruzadas")

	return records
}

// Enrich aplica os joins em sequência: venda → cliente → produto → fornecedor.
// Chaves repetidas do lado direito multiplicam as linhas.
func Enrich(wb *domain.Workbook) ([]domain.EnrichedSale, Report) {
	report := Report{Raw: len(wb.Sales)}

	customers := make(map[string][]string, len(wb.Customers))
	for _, c := range wb.Customers {
		customers[c.CustomerID] = append(customers[c.CustomerID], c.Name)
	}

	products := make(map[string][]string, len(wb.Products))
	for _, p := range wb.Products {
		products[p.ProductID] = append(products[p.ProductID], p.ProductName)
	}

	suppliers := make(map[string][]string, len(wb.Suppliers))
	for _, s := range wb.Suppliers {
		suppliers[s.SupplierID] = append(suppliers[s.SupplierID], s.SupplierName)
	}

	records := make([]domain.EnrichedSale, 0, len(wb.Sales))
	for _, sale := range wb.Sales {
		for _, customerName := range leftMatches(customers, sale.CustomerID) {
			for _, productName := range leftMatches(products, sale.ProductID) {
				for _, supplierName := range leftMatches(suppliers, sale.SupplierID) {
					report.Joined++

					if isMissing(customerName) || isMissing(productName) || isMissing(supplierName) {
						report.Dropped++
						continue
					}

					records = append(records, domain.EnrichedSale{
						Sale:         sale,
						CustomerName: customerName,
						ProductName:  productName,
						SupplierName: supplierName,
						NetSpend:     domain.NetSpend(sale.Quantity, sale.Price, sale.Discount),
					})
				}
			}
		}
	}

	report.Kept = len(records)
	return records, report
}

// leftMatches retorna um valor vazio quando a chave não existe, como num LEFT join
func leftMatches(index map[string][]string, key string) []string {
	if matches, ok := index[key]; ok {
		return matches
	}
	return []string{""}
}

func isMissing(value string) bool {
	return strings.TrimSpace(value) == ""
}
