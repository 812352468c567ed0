// Package catalog описывает категории номерных знаков и применимые к ним
// типы документов. Таблица встроена в бинарник и может быть заменена файлом.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/frontandrew/plakatakip/internal/domain"
)

//go:embed categories.toml
var defaultTable []byte

// Entry - описание одной категории
type Entry struct {
	Code       domain.Category       `toml:"code" json:"code"`
	Label      string                `toml:"label" json:"label"`
	StorageKey string                `toml:"storage_key" json:"storageKey"`
	Aliases    []string              `toml:"aliases" json:"aliases,omitempty"`
	Documents  []domain.DocumentType `toml:"documents" json:"documents"`
	Required   []domain.DocumentType `toml:"required" json:"required"`
}

// Applies проверяет, применим ли тип документа к категории
func (e Entry) Applies(doc domain.DocumentType) bool {
	return containsDoc(e.Documents, doc)
}

// Requires проверяет, обязателен ли тип документа
func (e Entry) Requires(doc domain.DocumentType) bool {
	return containsDoc(e.Required, doc)
}

// SheetName - имя листа и префикс файлов экспорта
func (e Entry) SheetName() string {
	return string(e.Code) + "_Plaka"
}

type table struct {
	Category []Entry `toml:"category"`
}

// Catalog - неизменяемая таблица категорий
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// Default возвращает встроенную таблицу
func Default() *Catalog {
	c, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded table is invalid: %v", err))
	}
	return c
}

// Load читает таблицу из файла; пустой путь - встроенная таблица
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse разбирает TOML таблицу и проверяет ее согласованность
func Parse(data []byte) (*Catalog, error) {
	var t table
	if _, err := toml.Decode(string(data), &t); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(t.Category) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}

	c := &Catalog{index: make(map[string]int)}
	for i, e := range t.Category {
		if e.Code == "" || e.StorageKey == "" {
			return nil, fmt.Errorf("category #%d: code and storage_key are required", i)
		}
		for _, d := range e.Documents {
			if !d.IsValid() {
				return nil, fmt.Errorf("category %s: %w %q", e.Code, domain.ErrInvalidDocumentType, d)
			}
		}
		for _, d := range e.Required {
			if !e.Applies(d) {
				return nil, fmt.Errorf("category %s: required %q is not in documents", e.Code, d)
			}
		}
		if !e.Requires(domain.DocumentLicense) {
			return nil, fmt.Errorf("category %s: license period must be required", e.Code)
		}
		if e.Label == "" {
			e.Label = string(e.Code) + " Plaka"
		}

		keys := append([]string{string(e.Code), e.StorageKey}, e.Aliases...)
		for _, k := range keys {
			k = normalizeKey(k)
			if _, dup := c.index[k]; dup {
				return nil, fmt.Errorf("category key %q is ambiguous", k)
			}
			c.index[k] = len(c.entries)
		}
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Entries возвращает все категории в порядке таблицы
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Categories возвращает коды категорий в порядке таблицы
func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Code)
	}
	return out
}

// Get возвращает описание категории по каноническому коду
func (c *Catalog) Get(code domain.Category) (Entry, bool) {
	i, ok := c.index[normalizeKey(string(code))]
	if !ok || c.entries[i].Code != code {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Resolve находит категорию по коду, псевдониму или ключу хранилища
// без учета регистра ("m", "T", "jPlaka", "d4s").
func (c *Catalog) Resolve(s string) (Entry, error) {
	i, ok := c.index[normalizeKey(s)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, s)
	}
	return c.entries[i], nil
}

// MustGet - как Get, но для кодов, полученных из самого каталога
func (c *Catalog) MustGet(code domain.Category) Entry {
	e, ok := c.Get(code)
	if !ok {
		panic("catalog: unknown category " + string(code))
	}
	return e
}

func normalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func containsDoc(list []domain.DocumentType, doc domain.DocumentType) bool {
	for _, d := range list {
		if d == doc {
			return true
		}
	}
	return false
}
