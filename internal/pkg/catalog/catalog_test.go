package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Order(t *testing.T) {
	c := Default()
	assert.Equal(t, domain.AllCategories(), c.Categories())
}

func TestResolve(t *testing.T) {
	c := Default()

	tests := []struct {
		input    string
		expected domain.Category
	}{
		{"M", domain.CategoryM},
		{"m", domain.CategoryM},
		{"mPlaka", domain.CategoryM},
		{"T", domain.CategoryJ},
		{"t plaka", domain.CategoryJ},
		{"jPlaka", domain.CategoryJ},
		{"d4", domain.CategoryD4},
		{"D4S", domain.CategoryD4S},
		{" d4sPlaka ", domain.CategoryD4S},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := c.Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.Code)
		})
	}

	_, err := c.Resolve("X")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestEntry_SeatNotApplicableForJ(t *testing.T) {
	c := Default()

	j := c.MustGet(domain.CategoryJ)
	assert.False(t, j.Applies(domain.DocumentSeatInsurance))
	assert.False(t, j.Requires(domain.DocumentSRC))
	assert.Equal(t, "J_Plaka", j.SheetName())

	m := c.MustGet(domain.CategoryM)
	assert.True(t, m.Requires(domain.DocumentSeatInsurance))
	assert.True(t, m.Applies(domain.DocumentSRC))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "пустая таблица", data: ``},
		{name: "неизвестный документ", data: `
[[category]]
code = "M"
storage_key = "mPlaka"
documents = ["license", "passport"]
required = ["license"]`},
		{name: "обязательный вне списка", data: `
[[category]]
code = "M"
storage_key = "mPlaka"
documents = ["license"]
required = ["license", "seat"]`},
		{name: "лицензия не обязательна", data: `
[[category]]
code = "M"
storage_key = "mPlaka"
documents = ["license"]
required = []`},
		{name: "дублирующийся ключ", data: `
[[category]]
code = "M"
storage_key = "mPlaka"
documents = ["license"]
required = ["license"]

[[category]]
code = "S"
storage_key = "MPLAKA"
documents = ["license"]
required = ["license"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cats.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[category]]
code = "M"
storage_key = "mPlaka"
documents = ["license", "health"]
required = ["license"]`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{domain.CategoryM}, c.Categories())
	assert.Equal(t, "M Plaka", c.MustGet(domain.CategoryM).Label)
}
