package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hamrosewa/internal/catalog"
	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Catalog"

var columns = []string{"Title", "Category", "Location", "Price", "Rating", "Featured", "Popular", "Provider", "Verified"}

// CatalogExporter writes filtered catalog snapshots as xlsx sheets.
type CatalogExporter struct {
	source domain.CatalogSource
	dir    string
	logger *zerolog.Logger
	now    func() time.Time
}

func NewCatalogExporter(source domain.CatalogSource, dir string, logger *zerolog.Logger) *CatalogExporter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CatalogExporter{source: source, dir: dir, logger: logger, now: time.Now}
}

// Export fetches the active catalog, filters and sorts it like the listing
// page does and saves the result. It returns the file path and row count.
func (e *CatalogExporter) Export(ctx context.Context, filter catalog.Filter) (string, int, error) {
	services, err := e.source.ListServices(ctx, domain.ServiceQuery{Status: models.StatusActive})
	if err != nil {
		return "", 0, fmt.Errorf("list services: %w", err)
	}
	categories, err := e.source.AllCategories(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("list categories: %w", err)
	}

	results := catalog.Apply(services, categories, filter)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := WriteSheet(f, filter, results); err != nil {
		return "", 0, err
	}

	path := filepath.Join(e.dir, fmt.Sprintf("catalog_%s.xlsx", e.now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", 0, fmt.Errorf("save %s: %w", path, err)
	}

	e.logger.Info().Str("file_path", path).Int("rows", len(results)).Msg("catalog exported")
	return path, len(results), nil
}

// WriteSheet replaces the default sheet with the catalog sheet: a filter
// summary in row 1, headers in row 2 and one service per row after that.
func WriteSheet(f *excelize.File, filter catalog.Filter, services []models.Service) error {
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(sheetName, "A1", describe(filter))
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, name)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, svc := range services {
		row := i + 3
		entry := models.NewCatalogEntry(svc)
		var rating any
		if svc.IsRated() {
			rating = svc.Rating
		}
		values := []any{
			svc.Title,
			entry.CategoryName,
			svc.Location,
			svc.Price,
			rating,
			yesNo(svc.Featured),
			yesNo(svc.Popular),
			svc.Provider.Name,
			yesNo(svc.Provider.Verified),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 30)
	_ = f.SetColWidth(sheetName, "B", lastCol, 15)
	return nil
}

func describe(filter catalog.Filter) string {
	parts := []string{"sort: " + string(filter.Sort)}
	if q := strings.TrimSpace(filter.Query); q != "" {
		parts = append(parts, "search: "+q)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		parts = append(parts, "location: "+loc)
	}
	if cat := strings.TrimSpace(filter.CategoryID); cat != "" {
		parts = append(parts, "category: "+cat)
	}
	return "Hamro Sewa catalog (" + strings.Join(parts, ", ") + ")"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
