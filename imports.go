package main

import (
	"encoding/json"
	"strconv"
	"strings"
)

// BookRow is one candidate record of an import batch. Rows originate
// from spreadsheet parsing on the dashboard side, so field names arrive
// either as canonical json keys or as the sheet headers (`Corner name`,
// `QTY`, ...) and quantities may be numbers or numeric strings. The
// custom decoding normalizes all of that. HasQuantity distinguishes a
// usable quantity from a missing or unparseable one: a merge without
// quantity adds 0 copies while a brand-new book defaults to 1.
type BookRow struct {
	ISBN         string
	Title        string
	Subject      string
	Level        string
	Language     string
	CornerName   string
	CornerNumber string
	Quantity     int
	HasQuantity  bool
}

// UnmarshalJSON decodes a row with case- and space-insensitive keys.
func (row *BookRow) UnmarshalJSON(data []byte) error {
	fields := map[string]interface{}{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, value := range fields {
		switch normalizeHeader(key) {
		case "isbn":
			row.ISBN = stringValue(value)
		case "title":
			row.Title = stringValue(value)
		case "subject":
			row.Subject = stringValue(value)
		case "level":
			row.Level = stringValue(value)
		case "language":
			row.Language = stringValue(value)
		case "cornername":
			row.CornerName = stringValue(value)
		case "cornernumber":
			row.CornerNumber = stringValue(value)
		case "qty", "quantity", "totalcopies":
			row.Quantity, row.HasQuantity = quantityValue(value)
		}
	}
	return nil
}

// AdditionalCopies tells how many copies this row merges into an
// already cataloged book.
func (row BookRow) AdditionalCopies() int {
	if !row.HasQuantity || row.Quantity < 0 {
		return 0
	}
	return row.Quantity
}

// NewBook builds the catalog record created for a first-seen isbn.
func (row BookRow) NewBook() Book {
	total := 1
	if row.HasQuantity && row.Quantity >= 0 {
		total = row.Quantity
	}
	return Book{
		ISBN:         row.ISBN,
		Title:        row.Title,
		Subject:      row.Subject,
		Level:        row.Level,
		Language:     row.Language,
		CornerName:   row.CornerName,
		CornerNumber: row.CornerNumber,
		TotalCopies:  total,
		LoanedCopies: 0,
	}
}

// normalizeHeader lowers a field name and drops separators so that
// `Corner name`, `corner_name` and `cornerName` all collapse to the
// same key.
func normalizeHeader(key string) string {
	key = strings.ToLower(key)
	for _, sep := range []string{" ", "_", "-"} {
		key = strings.ReplaceAll(key, sep, "")
	}
	return key
}

// stringValue renders a decoded json value as a trimmed string. Sheet
// parsers hand over numeric cells (isbn included) as numbers.
func stringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// quantityValue parses a quantity cell. The second result reports
// whether a usable number was found.
func quantityValue(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
