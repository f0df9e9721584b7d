package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "github.com/rencanakan/ahsmatch/internal/errors"
)

// Dot-separated thousands groups without a decimal comma ("45.000",
// "1.234.567"). A lone dot followed by one or two digits is a decimal
// point, not a separator.
var thousandsPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// Column aliases accepted in CSV headers, per field. Exported datasets
// come from several systems and none agree on header names.
var headerAliases = map[string][]string{
	"id":    {"id", "no"},
	"code":  {"code", "kode", "kode_ahs"},
	"name":  {"name", "nama", "uraian", "uraian_pekerjaan", "description"},
	"unit":  {"unit", "satuan"},
	"price": {"price", "harga", "harga_satuan", "unit_price"},
}

// LoadCSVFile reads one catalog CSV into candidates. The first row must
// be a header naming at least the code, name, and unit columns. Rows
// with an unparsable price fail the load with a ParseError.
func LoadCSVFile(path string) ([]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewCatalogError("open", err).WithSource(path)
	}
	defer f.Close()

	entries, err := readCSV(f, path)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadCSVGlobs loads every file matched by the given doublestar globs,
// concatenated in glob order then path order. At least one file must
// match.
func LoadCSVGlobs(globs []string) ([]Candidate, error) {
	paths, err := ExpandGlobs(globs)
	if err != nil {
		return nil, err
	}

	var entries []Candidate
	for _, path := range paths {
		loaded, err := LoadCSVFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, loaded...)
	}
	return entries, nil
}

// ExpandGlobs resolves doublestar globs to concrete file paths. At
// least one file must match.
func ExpandGlobs(globs []string) ([]string, error) {
	var paths []string
	for _, glob := range globs {
		matches, err := doublestar.FilepathGlob(glob)
		if err != nil {
			return nil, apperrors.NewCatalogError("glob", err).WithSource(glob)
		}
		paths = append(paths, matches...)
	}

	if len(paths) == 0 {
		return nil, apperrors.NewCatalogError("glob",
			fmt.Errorf("no catalog files matched %v", globs))
	}
	return paths, nil
}

func readCSV(r io.Reader, path string) ([]Candidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewCatalogError("read header", err).WithSource(path)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, apperrors.NewCatalogError("read header", err).WithSource(path)
	}

	var entries []Candidate
	line := 1
	nextID := int64(1)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewParseError(path, line, "row", err)
		}

		c := Candidate{Source: SourceAHS, ID: nextID}

		if idx, ok := cols["id"]; ok && idx < len(record) && strings.TrimSpace(record[idx]) != "" {
			id, err := strconv.ParseInt(strings.TrimSpace(record[idx]), 10, 64)
			if err != nil {
				return nil, apperrors.NewParseError(path, line, "id", err)
			}
			c.ID = id
		}
		nextID = c.ID + 1

		c.Code = strings.TrimSpace(field(record, cols, "code"))
		c.Name = strings.TrimSpace(field(record, cols, "name"))
		c.Unit = strings.TrimSpace(field(record, cols, "unit"))

		if c.Name == "" {
			continue // blank filler rows are common in exports
		}

		if raw := strings.TrimSpace(field(record, cols, "price")); raw != "" {
			price, err := parsePrice(raw)
			if err != nil {
				return nil, apperrors.NewParseError(path, line, "price", err)
			}
			c.UnitPrice = price
		}

		entries = append(entries, c)
	}

	return entries, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for field, aliases := range headerAliases {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					cols[field] = i
				}
			}
		}
	}

	for _, required := range []string{"code", "name", "unit"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// parsePrice accepts Indonesian-formatted prices: dots as thousands
// separators, comma as the decimal mark ("1.234.567,89"), as well as
// plain decimal notation.
func parsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimPrefix(s, "rp")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}

	return strconv.ParseFloat(s, 64)
}
