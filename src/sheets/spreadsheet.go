package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// SpreadsheetAPI is the subset of the Sheets API used by Workbook.
type SpreadsheetAPI interface {
	Get(ctx context.Context, spreadsheetId string, sheetRange string) ([][]interface{}, error)
	Update(ctx context.Context, spreadsheetId string, sheetRange string, values [][]interface{}) error
	Append(ctx context.Context, spreadsheetId string, sheetName string, values [][]interface{}) error
	Clear(ctx context.Context, spreadsheetId string, sheetRange string) error
	EnsureSheet(ctx context.Context, spreadsheetId string, sheetName string) error
	DeleteSheetsExcept(ctx context.Context, spreadsheetId string, keep ...string) error
}

type sheetsAPI struct {
	srv *sheets.Service
}

func NewSpreadsheetAPI(srv *sheets.Service) SpreadsheetAPI {
	return &sheetsAPI{srv: srv}
}

func (a *sheetsAPI) Get(ctx context.Context, spreadsheetId string, sheetRange string) ([][]interface{}, error) {
	response, err := a.srv.Spreadsheets.Values.Get(spreadsheetId, sheetRange).ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet: %v", err)
	}

	if response.HTTPStatusCode != 200 {
		return nil, fmt.Errorf("invalid http status code: %v", response.HTTPStatusCode)
	}

	return response.Values, nil
}

func (a *sheetsAPI) Update(ctx context.Context, spreadsheetId string, sheetRange string, values [][]interface{}) error {
	row := &sheets.ValueRange{
		Values: values,
	}

	_, err := a.srv.Spreadsheets.Values.Update(spreadsheetId, sheetRange, row).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (a *sheetsAPI) Append(ctx context.Context, spreadsheetId string, sheetName string, values [][]interface{}) error {
	row := &sheets.ValueRange{
		Values: values,
	}

	response, err := a.srv.Spreadsheets.Values.Append(spreadsheetId, sheetName, row).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return err
	}

	if response.HTTPStatusCode != 200 {
		return fmt.Errorf("invalid http status code: %v", response.HTTPStatusCode)
	}

	return nil
}

func (a *sheetsAPI) Clear(ctx context.Context, spreadsheetId string, sheetRange string) error {
	_, err := a.srv.Spreadsheets.Values.Clear(spreadsheetId, sheetRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (a *sheetsAPI) EnsureSheet(ctx context.Context, spreadsheetId string, sheetName string) error {
	spreadsheet, err := a.srv.Spreadsheets.Get(spreadsheetId).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %v", err)
	}

	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == sheetName {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheetName}}},
		},
	}

	if _, err := a.srv.Spreadsheets.BatchUpdate(spreadsheetId, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet %s: %v", sheetName, err)
	}

	return nil
}

// DeleteSheetsExcept removes every sheet whose title is not in keep.
func (a *sheetsAPI) DeleteSheetsExcept(ctx context.Context, spreadsheetId string, keep ...string) error {
	spreadsheet, err := a.srv.Spreadsheets.Get(spreadsheetId).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %v", err)
	}

	kept := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		kept[name] = struct{}{}
	}

	var requests []*sheets.Request
	for _, s := range spreadsheet.Sheets {
		if s.Properties == nil {
			continue
		}

		if _, found := kept[s.Properties.Title]; found {
			continue
		}

		requests = append(requests, &sheets.Request{
			DeleteSheet: &sheets.DeleteSheetRequest{SheetId: s.Properties.SheetId},
		})
	}

	if len(requests) == 0 {
		return nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	if _, err := a.srv.Spreadsheets.BatchUpdate(spreadsheetId, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete %d sheets: %v", len(requests), err)
	}

	return nil
}
