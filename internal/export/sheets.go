package export

import (
	"context"
	"fmt"
	"os"

	"fotobook/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsExporter mirrors the appointment ledger into a Google Sheet so
// the studio can see it outside Telegram.
type SheetsExporter struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
}

// NewSheetsExporter builds an exporter from a service-account credentials
// file.
func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsExporter, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		writeRange:    "A1",
	}, nil
}

// Sync replaces the sheet contents with the current active appointments.
// Cancelled records are filtered out; the sheet is a working view, not an
// archive.
func (e *SheetsExporter) Sync(ctx context.Context, appts []models.Appointment) error {
	values := [][]interface{}{
		{"ID", "Date", "Time", "Photographer", "Client", "Status", "Created"},
	}
	for _, a := range filterActive(appts) {
		values = append(values, appointmentRow(&a))
	}

	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, e.writeRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}
	_, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, e.writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}
	return nil
}

func filterActive(appts []models.Appointment) []models.Appointment {
	out := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.Status != models.StatusCancelled {
			out = append(out, a)
		}
	}
	return out
}

func appointmentRow(a *models.Appointment) []interface{} {
	return []interface{}{
		a.ID,
		a.DateText(),
		a.TimeSlot,
		a.PhotographerName,
		a.UserName,
		string(a.Status),
		a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
