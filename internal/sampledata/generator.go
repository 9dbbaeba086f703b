// Package sampledata gera planilhas sintéticas de vendas para rodar o dashboard sem dados reais
package sampledata

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/vfg2006/sales-intelligence/internal/domain"
	"github.com/vfg2006/sales-intelligence/pkg/utils"
)

type Options struct {
	Seed      uint64
	Customers int
	Products  int
	Suppliers int
	Sales     int
	Start     time.Time
	Days      int
}

func DefaultOptions() Options {
	return Options{
		Seed:      42,
		Customers: 200,
		Products:  25,
		Suppliers: 8,
		Sales:     5000,
		Start:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:      730,
	}
}

func (o Options) Validate() error {
	if o.Customers < 1 || o.Products < 1 || o.Suppliers < 1 {
		return fmt.Errorf("sampledata: clientes, produtos e fornecedores devem ser maiores que zero")
	}
	if o.Sales < 0 || o.Days < 1 {
		return fmt.Errorf("sampledata: vendas não pode ser negativo e dias deve ser maior que zero")
	}
	return nil
}

// Generator produz sempre o mesmo workbook para a mesma semente
type Generator struct {
	faker *gofakeit.Faker
	opts  Options
}

func NewGenerator(opts Options) *Generator {
	return &Generator{
		faker: gofakeit.New(opts.Seed),
		opts:  opts,
	}
}

func (g *Generator) Generate() (*domain.Workbook, error) {
	if err := g.opts.Validate(); err != nil {
		return nil, err
	}

	wb := &domain.Workbook{
		Suppliers: g.suppliers(),
		Products:  g.products(),
		Customers: g.customers(),
	}

	prices := make(map[string]float64, len(wb.Products))
	for _, p := range wb.Products {
		prices[p.ProductID] = g.faker.Price(5, 500)
	}

	// Poucos clientes concentram a maior parte das compras
	weights := make([]float64, len(wb.Customers))
	total := 0.0
	for i := range weights {
		weights[i] = math.Pow(g.faker.Float64Range(0.05, 1), 3)
		total += weights[i]
	}

	end := g.opts.Start.AddDate(0, 0, g.opts.Days-1)
	wb.Sales = make([]domain.Sale, 0, g.opts.Sales)
	for i := 0; i < g.opts.Sales; i++ {
		customer := wb.Customers[pick(weights, total, g.faker.Float64())]
		product := wb.Products[g.faker.IntRange(0, len(wb.Products)-1)]
		supplier := wb.Suppliers[g.faker.IntRange(0, len(wb.Suppliers)-1)]

		date := g.saleDate(end)

		wb.Sales = append(wb.Sales, domain.Sale{
			SaleID:     fmt.Sprint(i + 1),
			CustomerID: customer.CustomerID,
			ProductID:  product.ProductID,
			SupplierID: supplier.SupplierID,
			Date:       date,
			Quantity:   float64(g.faker.IntRange(1, 10)),
			Price:      prices[product.ProductID],
			Discount:   g.discount(),
		})
	}

	return wb, nil
}

// saleDate favorece fins de semana para dar sazonalidade semanal às séries
func (g *Generator) saleDate(end time.Time) time.Time {
	for {
		date := g.faker.DateRange(g.opts.Start, end.Add(24*time.Hour-time.Second)).UTC()
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
		if weekend || g.faker.Float64() < 0.6 {
			return date
		}
	}
}

func (g *Generator) discount() float64 {
	if g.faker.Float64() < 0.7 {
		return 0
	}
	return utils.RoundTo(g.faker.Float64Range(0.05, 0.3), 2)
}

func (g *Generator) customers() []domain.Customer {
	customers := make([]domain.Customer, g.opts.Customers)
	for i := range customers {
		customers[i] = domain.Customer{
			CustomerID: fmt.Sprint(i + 1),
			Name:       g.faker.Name(),
			Attributes: map[string]string{
				"Email": g.faker.Email(),
				"City":  g.faker.City(),
			},
		}
	}
	return customers
}

func (g *Generator) products() []domain.Product {
	products := make([]domain.Product, g.opts.Products)
	for i := range products {
		products[i] = domain.Product{
			ProductID:   fmt.Sprintf("P%03d", i+1),
			ProductName: g.faker.ProductName(),
		}
	}
	return products
}

func (g *Generator) suppliers() []domain.Supplier {
	suppliers := make([]domain.Supplier, g.opts.Suppliers)
	for i := range suppliers {
		suppliers[i] = domain.Supplier{
			SupplierID:   fmt.Sprintf("S%02d", i+1),
			SupplierName: g.faker.Company(),
		}
	}
	return suppliers
}

func pick(weights []float64, total, r float64) int {
	target := r * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if acc >= target {
			return i
		}
	}
	return len(weights) - 1
}
