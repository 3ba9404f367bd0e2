// Package goodreads parses the CSV library export produced by the Goodreads
// cataloging service into canonical records for import.
package goodreads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"librarium/internal/entities"
	"librarium/internal/isbn"
)

// ParsedBook is one validated row of the export. Immutable once parsed.
type ParsedBook struct {
	ExternalID    string
	Title         string
	Author        string
	ISBN          string
	Rating        float64
	Review        string
	ReadingStatus entities.ReadingStatus
	TotalPages    int
	Publisher     string
	DateAdded     time.Time
	DateFinished  *time.Time
	Shelves       []string
	Genre         string
}

// RowError is one rejected row of the export, keeping the originating row
// number and book (when known) so clients can point the user at the line.
type RowError struct {
	Row   int    `json:"row"`
	Book  string `json:"book"`
	Error string `json:"error"`
}

func (e RowError) String() string {
	if e.Book == "" {
		return fmt.Sprintf("Row %d: %s", e.Row, e.Error)
	}
	return fmt.Sprintf("Row %d (%s): %s", e.Row, e.Book, e.Error)
}

// ParseResult carries the parsed rows plus non-fatal row diagnostics.
type ParseResult struct {
	Books    []ParsedBook
	Errors   []RowError
	Warnings []string
}

// The three exclusive shelf names Goodreads uses for reading status. Any
// other shelf becomes a collection candidate.
var exclusiveShelves = map[string]entities.ReadingStatus{
	"read":              entities.ReadingStatusFinished,
	"currently-reading": entities.ReadingStatusCurrentlyReading,
	"to-read":           entities.ReadingStatusWantToRead,
}

// ParseExport parses a full export. It only fails outright when the file is
// unreadable; individual bad rows land in Errors and are skipped.
func ParseExport(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Columns vary across export vintages

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, required := range []string{"title", "author"} {
		if _, ok := headerIndex[required]; !ok {
			return nil, fmt.Errorf("missing required header: %s", required)
		}
	}

	result := &ParseResult{}
	lineNum := 1 // header already consumed

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: lineNum, Error: err.Error()})
			continue
		}

		book, rowErr, rowWarnings := parseRow(record, headerIndex, lineNum)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		result.Warnings = append(result.Warnings, rowWarnings...)
		result.Books = append(result.Books, book)
	}

	return result, nil
}

func parseRow(record []string, headerIndex map[string]int, lineNum int) (ParsedBook, *RowError, []string) {
	get := func(name string) string {
		if idx, ok := headerIndex[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	title := get("title")
	author := get("author")
	if title == "" || author == "" {
		return ParsedBook{}, &RowError{Row: lineNum, Book: title, Error: "missing title or author"}, nil
	}

	book := ParsedBook{
		ExternalID: get("book id"),
		Title:      title,
		Author:     author,
		Review:     get("my review"),
		Publisher:  get("publisher"),
	}

	var warnings []string

	// Goodreads wraps ISBNs in ="..." so spreadsheets keep leading zeros;
	// prefer the 13-digit identifier when both are present.
	isbn13 := isbn.Normalize(stripExcelEscape(get("isbn13")))
	isbn10 := isbn.Normalize(stripExcelEscape(get("isbn")))
	switch {
	case isbn13 != "":
		book.ISBN = isbn13
	case isbn10 != "":
		book.ISBN = isbn10
	default:
		warnings = append(warnings, fmt.Sprintf("Row %d (%s): no ISBN, enrichment confidence will be lower", lineNum, title))
	}

	if rating, err := strconv.ParseFloat(get("my rating"), 64); err == nil && rating >= 0 && rating <= 5 {
		book.Rating = rating
	}
	if pages, err := strconv.Atoi(stripExcelEscape(get("number of pages"))); err == nil && pages > 0 {
		book.TotalPages = pages
	}

	book.ReadingStatus = parseExclusiveShelf(get("exclusive shelf"))

	if t, ok := parseDate(get("date added")); ok {
		book.DateAdded = t
	}
	// Date Read only means finished when the exclusive shelf says so.
	if book.ReadingStatus == entities.ReadingStatusFinished {
		if t, ok := parseDate(get("date read")); ok {
			book.DateFinished = &t
		}
	}

	book.Shelves = parseShelves(get("bookshelves"))

	return book, nil, warnings
}

// stripExcelEscape unwraps the ="0439554934" convention spreadsheet tools
// use to keep numeric-looking text fields intact.
func stripExcelEscape(s string) string {
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		return s[2 : len(s)-1]
	}
	return s
}

func parseExclusiveShelf(shelf string) entities.ReadingStatus {
	if status, ok := exclusiveShelves[strings.ToLower(shelf)]; ok {
		return status
	}
	return entities.ReadingStatusWantToRead
}

// parseShelves splits the comma-separated shelf list, dropping the exclusive
// shelf names. What remains are the user's own groupings.
func parseShelves(raw string) []string {
	if raw == "" {
		return nil
	}

	var shelves []string
	seen := make(map[string]struct{})
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, exclusive := exclusiveShelves[strings.ToLower(s)]; exclusive {
			continue
		}
		if _, dup := seen[strings.ToLower(s)]; dup {
			continue
		}
		seen[strings.ToLower(s)] = struct{}{}
		shelves = append(shelves, s)
	}
	return shelves
}

// parseDate is defensive: unparsable or empty dates are absent, never an
// error.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	formats := []string{
		"2006/01/02",
		"2006-01-02",
		"01/02/2006",
		"Jan 02, 2006",
		"January 2, 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
