package migration

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-intelligence/internal/domain"
)

func TestInsertStatements(t *testing.T) {
	wb := &domain.Workbook{
		Suppliers: []domain.Supplier{{SupplierID: "S1", SupplierName: "Acme"}},
		Products:  []domain.Product{{ProductID: "P1", ProductName: ""}},
		Customers: []domain.Customer{
			{CustomerID: "1", Name: "Ana", Attributes: map[string]string{"City": "Recife"}},
			{CustomerID: "2", Name: "Bruno"},
		},
		Sales: []domain.Sale{{
			SaleID: "10", CustomerID: "1", ProductID: "P1", SupplierID: "S1",
			Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Quantity: 2, Price: 10, Discount: 0.1,
		}},
	}

	inserts, err := InsertStatements(wb)
	require.NoError(t, err)
	require.Len(t, inserts, 4)

	query, args, err := inserts[0].ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO suppliers (supplier_id,supplier_name) VALUES ($1,$2)", query)
	assert.Equal(t, []interface{}{"S1", "Acme"}, args)

	_, args, err = inserts[1].ToSql()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"P1", nil}, args)

	query, args, err = inserts[2].ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO customers (customer_id,name,attributes) VALUES ($1,$2,$3),($4,$5,$6)", query)
	assert.Equal(t, []interface{}{"1", "Ana", `{"City":"Recife"}`, "2", "Bruno", nil}, args)

	_, args, err = inserts[3].ToSql()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"10", "1", "P1", "S1", "2024-03-05", 2.0, 10.0, 0.1}, args)
}

func TestInsertStatements_Batches(t *testing.T) {
	wb := &domain.Workbook{}
	for i := 0; i < BatchSize*2+1; i++ {
		wb.Products = append(wb.Products, domain.Product{ProductID: fmt.Sprint(i), ProductName: "x"})
	}

	inserts, err := InsertStatements(wb)
	require.NoError(t, err)
	require.Len(t, inserts, 3)

	_, args, err := inserts[2].ToSql()
	require.NoError(t, err)
	assert.Len(t, args, 2)
}

func TestInsertStatements_Empty(t *testing.T) {
	inserts, err := InsertStatements(&domain.Workbook{})
	require.NoError(t, err)
	assert.Empty(t, inserts)
}

func TestInsertStatements_DuplicateKeysAreKept(t *testing.T) {
	wb := &domain.Workbook{
		Customers: []domain.Customer{
			{CustomerID: "7", Name: "Ana"},
			{CustomerID: "7", Name: "Ana Maria"},
		},
		Products: []domain.Product{
			{ProductID: "P1", ProductName: "Caneca"},
			{ProductID: "P1", ProductName: "Caneca Azul"},
		},
	}

	inserts, err := InsertStatements(wb)
	require.NoError(t, err)
	require.Len(t, inserts, 2)

	_, args, err := inserts[0].ToSql()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"P1", "Caneca", "P1", "Caneca Azul"}, args)

	_, args, err = inserts[1].ToSql()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"7", "Ana", nil, "7", "Ana Maria", nil}, args)
}

func TestSchema_AllowsRepeatedKeys(t *testing.T) {
	for _, stmt := range schema {
		upper := strings.ToUpper(stmt)
		assert.NotContains(t, upper, "PRIMARY KEY")
		assert.NotContains(t, upper, "UNIQUE")
	}
}
