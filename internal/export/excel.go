package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tempatku/internal/domain"
	"tempatku/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter renders booking reports as xlsx files in the configured
// export directory.
type Exporter struct {
	store  domain.Store
	path   string
	logger *zerolog.Logger
}

func NewExporter(store domain.Store, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{store: store, path: path, logger: logger}
}

// BookingsByDateRange writes all bookings between start and end (inclusive,
// YYYY-MM-DD) to a spreadsheet and returns the file path.
func (e *Exporter) BookingsByDateRange(ctx context.Context, start, end string) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := e.store.ListBookingsByDateRange(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	places, err := e.store.ListPlaces(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting places: %w", err)
	}
	placeNames := make(map[string]string, len(places))
	for _, place := range places {
		placeNames[place.ID] = place.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Periode: %s - %s", start, end))
	_ = f.MergeCell(sheetName, "A1", "I1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"ID", "Tempat", "Pemesan", "Email", "Jumlah Orang", "Tanggal", "Jam", "Status", "Dibuat"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 3
		placeName := placeNames[booking.PlaceID]
		if placeName == "" {
			placeName = booking.PlaceID
		}
		values := []interface{}{
			booking.ID,
			placeName,
			booking.CustomerName,
			booking.CustomerEmail,
			booking.PartySize,
			booking.Date,
			booking.Time,
			booking.Status,
			booking.CreatedAt.Format("02.01.2006 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}

		if styleID, err := e.statusStyle(f, booking.Status); err == nil {
			statusCell, _ := excelize.CoordinatesToCellName(8, row)
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, styleID)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "D", 25)
	_ = f.SetColWidth(sheetName, "E", "H", 14)
	_ = f.SetColWidth(sheetName, "I", "I", 20)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s_%s.xlsx", start, end, time.Now().Format("150405"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("excel export created")
	return filePath, nil
}

func (e *Exporter) statusStyle(f *excelize.File, status string) (int, error) {
	var color string
	switch status {
	case models.StatusApproved:
		color = "#C6EFCE"
	case models.StatusPending:
		color = "#FFEB9C"
	case models.StatusRejected:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}
