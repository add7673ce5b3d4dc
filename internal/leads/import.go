package leads

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseDelimitedText parses pasted lines of "firstName,lastName,email,phoneNumber".
// The first line is treated as a header when it mentions first, name or email.
// A line is accepted only with a first name, last name and phone number.
func ParseDelimitedText(text string) (ImportReport, error) {
	var rep ImportReport
	lines := strings.Split(strings.TrimSpace(text), "\n")

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if i == 0 && looksLikeHeader(line) {
			continue
		}
		if line == "" {
			continue
		}

		f := strings.Split(line, ",")
		l := normalize(Lead{
			FirstName:   field(f, 0),
			LastName:    field(f, 1),
			Email:       field(f, 2),
			PhoneNumber: field(f, 3),
		})
		switch {
		case l.FirstName == "" || l.LastName == "":
			rep.Skipped = append(rep.Skipped, SkippedRow{Line: i + 1, Reason: "missing name"})
		case l.PhoneNumber == "":
			rep.Skipped = append(rep.Skipped, SkippedRow{Line: i + 1, Reason: "missing phone number"})
		default:
			rep.Added = append(rep.Added, l)
		}
	}
	return rep, nil
}

func looksLikeHeader(line string) bool {
	l := strings.ToLower(line)
	return strings.Contains(l, "first") || strings.Contains(l, "name") || strings.Contains(l, "email")
}

func field(f []string, i int) string {
	if i < len(f) {
		return strings.TrimSpace(f[i])
	}
	return ""
}

// columns holds header indices; -1 means absent.
type columns struct {
	first, last, name, email, phone int
}

func mapColumns(header []string) columns {
	c := columns{first: -1, last: -1, name: -1, email: -1, phone: -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if c.first < 0 && ((strings.Contains(h, "first") && strings.Contains(h, "name")) || h == "firstname") {
			c.first = i
		}
		if c.last < 0 && ((strings.Contains(h, "last") && strings.Contains(h, "name")) || h == "lastname") {
			c.last = i
		}
		if c.name < 0 && h == "name" {
			c.name = i
		}
		if c.email < 0 && strings.Contains(h, "email") {
			c.email = i
		}
		if c.phone < 0 && (strings.Contains(h, "phone") || strings.Contains(h, "mobile") || strings.Contains(h, "number")) {
			c.phone = i
		}
	}
	if c.first >= 0 {
		c.name = -1
	}
	return c
}

// ParseTable maps a header row plus data rows to leads.
// Name columns: first/last name, or a single "name" split on its first space.
// Rows with fewer cells than the header are skipped.
func ParseTable(rows [][]string) (ImportReport, error) {
	var rep ImportReport
	if len(rows) < 2 {
		return rep, fmt.Errorf("%w: file must contain a header and at least one data row", ErrValidation)
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	c := mapColumns(header)
	if (c.first < 0 && c.name < 0) || c.phone < 0 {
		return rep, fmt.Errorf("%w: file must contain name (or first/last name) and phone columns", ErrValidation)
	}

	for i, row := range rows[1:] {
		line := i + 2
		if len(row) < len(header) {
			rep.Skipped = append(rep.Skipped, SkippedRow{Line: line, Reason: "fewer cells than header"})
			continue
		}

		var l Lead
		if c.first >= 0 {
			l.FirstName = cell(row, c.first)
			l.LastName = cell(row, c.last)
		} else {
			parts := strings.SplitN(cell(row, c.name), " ", 2)
			l.FirstName = parts[0]
			if len(parts) == 2 {
				l.LastName = parts[1]
			}
		}
		l.Email = cell(row, c.email)
		l.PhoneNumber = cell(row, c.phone)
		l = normalize(l)

		switch {
		case l.FirstName == "":
			rep.Skipped = append(rep.Skipped, SkippedRow{Line: line, Reason: "missing name"})
		case l.PhoneNumber == "":
			rep.Skipped = append(rep.Skipped, SkippedRow{Line: line, Reason: "missing phone number"})
		default:
			rep.Added = append(rep.Added, l)
		}
	}
	return rep, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readCSV(src io.Reader) ([][]string, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed csv: %v", ErrValidation, err)
		}
		rows = append(rows, rec)
	}
}
