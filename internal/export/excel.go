// Package export renders the appointment ledger for admins: XLSX files
// and a Google Sheets sync.
package export

import (
	"fmt"
	"io"

	"fotobook/internal/catalog"
	"fotobook/internal/models"

	"github.com/xuri/excelize/v2"
)

var excelColumns = []string{"ID", "Дата", "Время", "Фотограф", "Клиент", "Статус", "Создано"}

// WriteAppointmentsXLSX writes all appointments as a single-sheet
// workbook to w.
func WriteAppointmentsXLSX(w io.Writer, appts []models.Appointment) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Записи"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range excelColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(excelColumns), 1)
		_ = f.SetCellStyle(sheet, start, end, style)
	}

	for rowIdx, a := range appts {
		values := []interface{}{
			a.ID,
			a.DateText(),
			catalog.SlotLabel(a.TimeSlot),
			a.PhotographerName,
			a.UserName,
			string(a.Status),
			a.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
