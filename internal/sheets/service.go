// Package sheets talks to the Google Sheets and Drive APIs: reading the
// configuration spreadsheet, provisioning monthly spreadsheets from
// templates, and publishing aggregated rows.
package sheets

import (
	"context"
	"fmt"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// API is the narrow spreadsheet surface the pipeline needs; the concrete
// Google-backed Service implements it, tests use in-memory fakes.
type API interface {
	// ReadTable scans a whole named tab, header row included.
	ReadTable(ctx context.Context, spreadsheetID, tab string) ([][]string, error)
	// AppendRow appends one row to the bottom of a named tab.
	AppendRow(ctx context.Context, spreadsheetID, tab string, row []string) error
	// UpdateColumn writes a single-column range (e.g. "15!A2:A42").
	UpdateColumn(ctx context.Context, spreadsheetID, rangeA1 string, values []string) error
	// CopySpreadsheet clones a spreadsheet and returns the new file id.
	CopySpreadsheet(ctx context.Context, templateID, name string) (string, error)
}

// Service is the Google-backed implementation of API.
type Service struct {
	sheets *sheetsv4.Service
	drive  *drive.Service
}

// NewService builds Sheets and Drive clients from a service-account
// credentials file.
func NewService(ctx context.Context, credentialsFile string) (*Service, error) {
	sheetsSrv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	driveSrv, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &Service{sheets: sheetsSrv, drive: driveSrv}, nil
}

func (s *Service) ReadTable(ctx context.Context, spreadsheetID, tab string) ([][]string, error) {
	resp, err := s.sheets.Spreadsheets.Values.Get(spreadsheetID, tab).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", tab, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) AppendRow(ctx context.Context, spreadsheetID, tab string, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{values}}
	_, err := s.sheets.Spreadsheets.Values.Append(spreadsheetID, tab, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", tab, err)
	}
	return nil
}

func (s *Service) UpdateColumn(ctx context.Context, spreadsheetID, rangeA1 string, values []string) error {
	rows := make([][]interface{}, len(values))
	for i, v := range values {
		rows[i] = []interface{}{v}
	}
	vr := &sheetsv4.ValueRange{Range: rangeA1, Values: rows}
	_, err := s.sheets.Spreadsheets.Values.Update(spreadsheetID, rangeA1, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update range %s: %w", rangeA1, err)
	}
	return nil
}

func (s *Service) CopySpreadsheet(ctx context.Context, templateID, name string) (string, error) {
	file, err := s.drive.Files.Copy(templateID, &drive.File{Name: name}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("copy spreadsheet %s: %w", templateID, err)
	}
	return file.Id, nil
}
