package catalogsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/hsa-claims-engine/internal/core/catalog"
	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
)

var xlsxColumns = []string{
	"name",
	"category",
	"irs_qualified",
	"requires_prescription",
	"requires_letter_of_necessity",
	"description",
}

// Load returns the built-in catalog when path is empty, otherwise the file's
// catalog chosen by extension (.yaml, .yml or .xlsx).
func Load(path string) (*catalog.Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return catalog.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var entries []domain.CatalogEntry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		entries, err = ParseYAML(bytes.NewReader(data))
	case ".xlsx":
		entries, err = ParseXLSX(bytes.NewReader(data))
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "load catalog", fmt.Errorf("unsupported catalog format %q", ext))
	}
	if err != nil {
		return nil, err
	}
	return catalog.New(entries)
}

type yamlDocument struct {
	Services []domain.CatalogEntry `yaml:"services"`
}

// ParseYAML accepts either a bare list of entries or a document with a
// top-level services list.
func ParseYAML(r io.Reader) ([]domain.CatalogEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml catalog: %w", err)
	}

	var list []domain.CatalogEntry
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse yaml catalog", err)
	}
	return doc.Services, nil
}

// ParseXLSX reads the first sheet. Row one is a header naming the columns;
// column order is free but name is required.
func ParseXLSX(r io.Reader) ([]domain.CatalogEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open xlsx catalog", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse xlsx catalog", errors.New("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse xlsx catalog", errors.New("sheet is empty"))
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse xlsx catalog",
			fmt.Errorf("header must include name; known columns: %s", strings.Join(xlsxColumns, ", ")))
	}

	cell := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	entries := make([]domain.CatalogEntry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		entry := domain.CatalogEntry{
			Name:        cell(row, "name"),
			Category:    cell(row, "category"),
			Description: cell(row, "description"),
		}
		flags := []struct {
			column string
			dst    *bool
		}{
			{"irs_qualified", &entry.IRSQualified},
			{"requires_prescription", &entry.RequiresPrescription},
			{"requires_letter_of_necessity", &entry.RequiresLetterOfNecessity},
		}
		for _, flag := range flags {
			v, err := parseFlag(cell(row, flag.column))
			if err != nil {
				return nil, domain.WrapError(domain.ErrInvalidInput, "parse xlsx catalog",
					fmt.Errorf("row %d column %s: %w", n+2, flag.column, err))
			}
			*flag.dst = v
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "", "no", "n":
		return false, nil
	case "yes", "y", "x":
		return true, nil
	}
	return strconv.ParseBool(raw)
}
