package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/infrastructure/catalog"
	"github.com/jhoicas/lotes-api/internal/infrastructure/memory"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSONYApply(t *testing.T) {
	path := writeFile(t, "catalog.json", `{
		"products": [{"id": "p1", "company_id": "c1", "sku": "YOG-1", "name": "Yogurt"}],
		"warehouses": [{"id": "w1", "company_id": "c1", "name": "Principal"}]
	}`)

	f, err := catalog.Load(path)
	require.NoError(t, err)
	require.Len(t, f.Products, 1)
	assert.Equal(t, "YOG-1", f.Products[0].SKU)

	store := memory.NewStore()
	f.Apply(store)
	p, err := store.Products().GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "c1", p.CompanyID)
	w, err := store.Warehouses().GetByID(context.Background(), "w1")
	require.NoError(t, err)
	require.NotNil(t, w)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
products:
  - id: p1
    company_id: c1
    name: Queso
warehouses:
  - id: w1
    company_id: c1
    name: Norte
`)
	f, err := catalog.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Queso", f.Products[0].Name)
	assert.Equal(t, "Norte", f.Warehouses[0].Name)
}

func TestLoad_SinCompany_Falla(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"products": [{"id": "p1", "name": "X"}]}`)
	_, err := catalog.Load(path)
	assert.Error(t, err)
}

func TestSQL_EscapaComillas(t *testing.T) {
	f := &catalog.File{Products: []catalog.Product{{ID: "p1", CompanyID: "c1", Name: "D'Oro"}}}
	sql := f.SQL()
	assert.Contains(t, sql, "'D''Oro'")
	assert.Contains(t, sql, "ON CONFLICT (id) DO NOTHING")
}
