package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/andresuchdata/fba-weekly-summary/internal/reference"
)

// Service wraps the Sheets API with service-account auth.
type Service struct {
	srv *sheetsapi.Service
}

// NewService builds a read-only Sheets client from service account JSON.
func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		sheetsapi.SpreadsheetsReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	client := config.Client(ctx)
	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to build sheets client: %w", err)
	}

	return &Service{srv: srv}, nil
}

// ReadRange fetches a value range and converts it to header-keyed rows.
func (s *Service) ReadRange(ctx context.Context, spreadsheetID, rangeName string) ([]Row, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(spreadsheetID, rangeName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", rangeName, err)
	}
	return ValuesToRows(resp.Values)
}

// MappingSheetSource feeds the mapping/price reference rows from the
// gross-and-net sheet.
type MappingSheetSource struct {
	service       *Service
	spreadsheetID string
	rangeName     string
}

// NewMappingSheetSource creates the mapping feed over a spreadsheet range.
func NewMappingSheetSource(service *Service, spreadsheetID, rangeName string) *MappingSheetSource {
	return &MappingSheetSource{service: service, spreadsheetID: spreadsheetID, rangeName: rangeName}
}

// Fetch returns one MappingRow per sheet row that carries a SKU. Rows without
// a SKU cannot join anything and are skipped.
func (s *MappingSheetSource) Fetch(ctx context.Context) ([]reference.MappingRow, error) {
	rows, err := s.service.ReadRange(ctx, s.spreadsheetID, s.rangeName)
	if err != nil {
		return nil, err
	}

	out := make([]reference.MappingRow, 0, len(rows))
	for _, row := range rows {
		sku := row["SKU"]
		if sku == "" {
			continue
		}
		out = append(out, reference.MappingRow{
			SKU:     sku,
			ASIN:    row["ASIN"],
			MiniSKU: row["Mini SKU"],
			Price:   row.Money("Selling Price"),
		})
	}
	return out, nil
}

// CartonSheetSource feeds the master carton reference rows.
type CartonSheetSource struct {
	service       *Service
	spreadsheetID string
	rangeName     string
}

// NewCartonSheetSource creates the carton feed over a spreadsheet range.
func NewCartonSheetSource(service *Service, spreadsheetID, rangeName string) *CartonSheetSource {
	return &CartonSheetSource{service: service, spreadsheetID: spreadsheetID, rangeName: rangeName}
}

// Fetch returns one CartonRow per sheet row with a Mini SKU and a numeric
// carton quantity. Non-numeric quantities are dropped rather than treated as
// zero, so downstream sees a gap instead of a fabricated value.
func (s *CartonSheetSource) Fetch(ctx context.Context) ([]reference.CartonRow, error) {
	rows, err := s.service.ReadRange(ctx, s.spreadsheetID, s.rangeName)
	if err != nil {
		return nil, err
	}

	out := make([]reference.CartonRow, 0, len(rows))
	for _, row := range rows {
		mini := row["Mini SKU"]
		if mini == "" {
			continue
		}
		qty, ok := row.Int("Qty per Master")
		if !ok {
			continue
		}
		out = append(out, reference.CartonRow{MiniSKU: mini, QtyPerCarton: qty})
	}
	return out, nil
}
