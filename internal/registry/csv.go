package registry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"room-access-control/internal/storage"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column headers accepted in import files, matched case-insensitively.
// Export always writes this exact set in this order.
var csvColumns = []string{"uuid", "user_id", "first_name", "last_name", "email", "role"}

// ImportResult summarizes one import run.
type ImportResult struct {
	Imported int
	Skipped  int // duplicates and invalid rows
}

// newCSVReader wraps f in a csv.Reader, decoding UTF-16 when the file starts
// with a BOM. Spreadsheet tools commonly export UTF-16 with BOM.
func newCSVReader(f *os.File) (*csv.Reader, error) {
	bom := make([]byte, 2)
	n, err := f.Read(bom)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read BOM: %w", err)
	}

	var reader *csv.Reader
	if n == 2 && (bom[0] == 0xFE && bom[1] == 0xFF || bom[0] == 0xFF && bom[1] == 0xFE) {
		utf16bom := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		utf16Reader := transform.NewReader(io.MultiReader(
			// Prepend BOM bytes back to stream
			strings.NewReader(string(bom)),
			f,
		), utf16bom)
		reader = csv.NewReader(utf16Reader)
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek file: %w", err)
		}
		reader = csv.NewReader(f)
	}

	reader.LazyQuotes = true
	reader.FieldsPerRecord = 0
	return reader, nil
}

// ImportCSV loads user records from a CSV file. Rows that fail validation or
// collide with an existing record are skipped, not fatal; the import carries
// on and the result reports both counts.
func (s *Service) ImportCSV(ctx context.Context, path string) (ImportResult, error) {
	var result ImportResult

	f, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader, err := newCSVReader(f)
	if err != nil {
		return result, err
	}

	headers, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		colIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"uuid", "user_id", "first_name", "last_name", "email"} {
		if _, ok := colIndex[col]; !ok {
			return result, fmt.Errorf("CSV file missing required column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := colIndex[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("error reading CSV: %w", err)
		}

		u := storage.User{
			UUID:      field(record, "uuid"),
			UserID:    field(record, "user_id"),
			FirstName: field(record, "first_name"),
			LastName:  field(record, "last_name"),
			Email:     field(record, "email"),
			Role:      field(record, "role"),
		}

		if _, err := s.Add(ctx, u); err != nil {
			if errors.Is(err, ErrDuplicateUser) || errors.Is(err, ErrInvalidUser) {
				s.logger.Warn("Skipping CSV row", "user_id", u.UserID, "error", err)
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Imported++
	}

	slog.Info("CSV import finished", "file", path, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// ExportCSV writes every active user to w in the import column order.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	users, err := s.List(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return err
	}
	for _, u := range users {
		row := []string{u.UUID, u.UserID, u.FirstName, u.LastName, u.Email, u.Role}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
