package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("STORE_SEED_SAMPLE", "true")
	t.Setenv("DOCUMENTS_BACKEND", "fs")
	t.Setenv("DOCUMENTS_DIR", t.TempDir())
	t.Setenv("AUTH_USERS", "admin:secret:admin")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExportCommand(t *testing.T) {
	setMemoryEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		args   []string
		file   string
		sheets int
	}{
		{name: "одна категория по алиасу", args: []string{"export", "--category", "T", "--format", "xlsx", "--out", filepath.Join(dir, "t.xlsx")},
			file: "t.xlsx", sheets: 1},
		{name: "все категории", args: []string{"export", "--category", "all", "--format", "xlsx", "--out", filepath.Join(dir, "all.xlsx")},
			file: "all.xlsx", sheets: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err, out)
			assert.Contains(t, out, tt.file)

			f, err := excelize.OpenFile(filepath.Join(dir, tt.file))
			require.NoError(t, err)
			defer f.Close()
			assert.Len(t, f.GetSheetList(), tt.sheets)
		})
	}

	t.Run("word", func(t *testing.T) {
		path := filepath.Join(dir, "m.doc")
		out, err := run(t, "export", "--category", "M", "--format", "doc", "--out", path)
		require.NoError(t, err, out)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "M Plaka Kayıtları")
	})
}

func TestExportCommand_Errors(t *testing.T) {
	setMemoryEnv(t)

	_, err := run(t, "export", "--category", "all", "--format", "doc", "--out", filepath.Join(t.TempDir(), "x.doc"))
	assert.Error(t, err)

	_, err = run(t, "export", "--category", "M", "--format", "csv")
	assert.Error(t, err)
}
