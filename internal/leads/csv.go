package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source identifies the column-naming convention of a lead export.
type Source string

const (
	// SourceGeneric is the default convention (first_name, company_name, ...).
	SourceGeneric Source = "generic"
	// SourceApollo matches Apollo CSV exports (company, website_url, ...).
	SourceApollo Source = "apollo"
)

// fieldVariations lists known header spellings per internal field, checked in
// order. Covers generic exports, Apollo exports, and common hand-edited files.
var fieldVariations = map[string][]string{
	"first_name":   {"first_name", "first name", "firstname", "fname", "given_name"},
	"last_name":    {"last_name", "last name", "lastname", "lname", "family_name", "surname"},
	"email":        {"email", "email_address", "email address", "e_mail", "mail"},
	"company_name": {"company_name", "company name", "company", "organization", "org"},
	"industry":     {"industry", "sector", "vertical", "business_type"},
	"website":      {"website", "website_url", "web_site", "url", "domain", "company_url"},
	"title":        {"title", "job_title", "position", "role", "job title"},
	"linkedin":     {"linkedin", "linkedin_url", "linkedin profile", "li_profile"},
}

// sourceMapping returns the configured fallback mapping for a source. It fills
// fields the auto-detector could not find in the header.
func sourceMapping(source Source) map[string]string {
	m := map[string]string{
		"first_name":   "first_name",
		"last_name":    "last_name",
		"email":        "email",
		"company_name": "company_name",
		"industry":     "industry",
		"website":      "website",
		"title":        "title",
		"linkedin":     "linkedin",
	}
	if source == SourceApollo {
		m["company_name"] = "company"
		m["website"] = "website_url"
	}
	return m
}

// DetectColumns maps internal field names to header columns by matching known
// variations case-insensitively. Fields with no matching column are absent.
func DetectColumns(header []string) map[string]string {
	index := make(map[string]bool, len(header))
	for _, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = true
	}

	detected := make(map[string]string)
	for field, variations := range fieldVariations {
		for _, v := range variations {
			if index[v] {
				detected[field] = v
				break
			}
		}
	}
	return detected
}

// ImportStats reports the outcome of a CSV import.
type ImportStats struct {
	Rows    int
	Valid   int
	Skipped int
	Mapping map[string]string
}

// ReadCSV parses leads from r, auto-detecting column names and falling back to
// the source convention per field. Invalid rows are skipped and counted; they
// never fail the import. Zero valid leads is an error.
func ReadCSV(r io.Reader, source Source) ([]Lead, ImportStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, ImportStats{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	mapping := sourceMapping(source)
	for field, col := range DetectColumns(header) {
		mapping[field] = col
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}

	stats := ImportStats{Mapping: mapping}
	var out []Lead
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row skips, not aborts.
			stats.Rows++
			stats.Skipped++
			continue
		}
		stats.Rows++

		get := func(field string) string {
			col, ok := mapping[field]
			if !ok {
				return ""
			}
			i, ok := colIndex[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return cleanCell(rec[i])
		}

		lead := Lead{
			FirstName: get("first_name"),
			LastName:  get("last_name"),
			Email:     get("email"),
			Company:   get("company_name"),
			Industry:  get("industry"),
			Website:   get("website"),
			Title:     get("title"),
			LinkedIn:  get("linkedin"),
		}

		if err := lead.Validate(); err != nil {
			stats.Skipped++
			continue
		}
		stats.Valid++
		out = append(out, lead)
	}

	if len(out) == 0 {
		return nil, stats, fmt.Errorf("no valid leads found in input (%d rows, %d skipped)", stats.Rows, stats.Skipped)
	}
	return out, stats, nil
}

// LoadCSV reads leads from a file path.
func LoadCSV(path string, source Source) ([]Lead, ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ImportStats{}, fmt.Errorf("failed to open CSV %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f, source)
}

// cleanCell trims whitespace and normalizes spreadsheet null spellings.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}
