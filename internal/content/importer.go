package content

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/versebot/pkg/models"
)

// ChapterStore is where imported chapter metadata and boundary marks land
type ChapterStore interface {
	Upsert(ctx context.Context, c *models.Chapter) error
	ReplaceMarks(ctx context.Context, chapter int, kind models.MarkKind, verses []int) error
}

// ImportConfig defines the import configuration. One row describes one
// chapter: its number, name, verse count, and the verses that begin each
// section and page.
type ImportConfig struct {
	FilePath      string
	SheetName     string
	StartRow      int // 1-based first data row; headers come before it
	NumberField   int // 0-based field/column indices
	NameField     int
	CountField    int
	SectionsField int
	PagesField    int
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:      path,
		SheetName:     "Sheet1",
		StartRow:      2, // skip the header row
		NumberField:   0,
		NameField:     1,
		CountField:    2,
		SectionsField: 3,
		PagesField:    4,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Errors         []string
}

// Importer loads chapter metadata from spreadsheet or CSV files
type Importer struct {
	chapters ChapterStore
}

// NewImporter creates an importer writing into the given store
func NewImporter(chapters ChapterStore) *Importer {
	return &Importer{chapters: chapters}
}

// ImportFile imports chapters from an Excel or CSV file, picking the format
// by extension
func (im *Importer) ImportFile(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return im.importFromCSV(ctx, config)
	}
	return im.importFromExcel(ctx, config)
}

func (im *Importer) importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := im.processRow(ctx, row, config); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (im *Importer) importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // allow ragged rows

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++
		if err := im.processRow(ctx, row, config); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (im *Importer) processRow(ctx context.Context, row []string, config ImportConfig) error {
	number, err := strconv.Atoi(strings.TrimSpace(field(row, config.NumberField)))
	if err != nil {
		return fmt.Errorf("bad chapter number %q", field(row, config.NumberField))
	}
	count, err := strconv.Atoi(strings.TrimSpace(field(row, config.CountField)))
	if err != nil || count < 1 {
		return fmt.Errorf("bad verse count %q", field(row, config.CountField))
	}

	chapter := models.Chapter{
		Number:     number,
		Name:       strings.TrimSpace(field(row, config.NameField)),
		VerseCount: count,
	}
	if err := im.chapters.Upsert(ctx, &chapter); err != nil {
		return err
	}

	sections, err := parseVerseList(field(row, config.SectionsField), count)
	if err != nil {
		return fmt.Errorf("section marks: %w", err)
	}
	if len(sections) > 0 {
		if err := im.chapters.ReplaceMarks(ctx, number, models.MarkSection, sections); err != nil {
			return err
		}
	}

	pages, err := parseVerseList(field(row, config.PagesField), count)
	if err != nil {
		return fmt.Errorf("page marks: %w", err)
	}
	if len(pages) > 0 {
		if err := im.chapters.ReplaceMarks(ctx, number, models.MarkPage, pages); err != nil {
			return err
		}
	}
	return nil
}

// parseVerseList parses a semicolon- or comma-separated list of verse numbers
// and validates them against the chapter size
func parseVerseList(raw string, verseCount int) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	raw = strings.ReplaceAll(raw, ";", ",")

	var out []int
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		v, err := strconv.Atoi(piece)
		if err != nil {
			return nil, fmt.Errorf("bad verse number %q", piece)
		}
		if v < 1 || v > verseCount {
			return nil, fmt.Errorf("verse %d out of range 1..%d", v, verseCount)
		}
		out = append(out, v)
	}
	return out, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
