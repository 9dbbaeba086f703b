package domain

import "time"

// Sale é uma linha da aba de vendas, imutável durante a execução do pipeline
type Sale struct {
	SaleID     string
	CustomerID string
	ProductID  string
	SupplierID string
	Date       time.Time
	Quantity   float64
	Price      float64
	Discount   float64
}

type Customer struct {
	CustomerID string
	Name       string
	Attributes map[string]string // Demais colunas descritivas da aba de clientes
}

type Product struct {
	ProductID   string
	ProductName string
}

type Supplier struct {
	SupplierID   string
	SupplierName string
}

// Workbook agrupa as quatro tabelas de origem
type Workbook struct {
	Sales     []Sale
	Customers []Customer
	Products  []Product
	Suppliers []Supplier
}

// EnrichedSale é uma venda já cruzada com cliente, produto e fornecedor
type EnrichedSale struct {
	Sale
	CustomerName string
	ProductName  string
	SupplierName string
	NetSpend     float64
}

// NetSpend calcula a receita líquida de uma venda após o desconto
func NetSpend(quantity, price, discount float64) float64 {
	return quantity * price * (1 - discount)
}
