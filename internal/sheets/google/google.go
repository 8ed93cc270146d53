// Package google exports budget snapshots to Google Sheets with a
// service account. Each export rewrites one year-named tab of the
// configured spreadsheet, the successor of the old household workbook.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"ordenate/internal/budget"
	"ordenate/internal/core"
	ports "ordenate/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ ports.DatasetExporter = (*Client)(nil)

// NewClient builds a Sheets client from service account credentials,
// inline JSON taking precedence over a file path.
func NewClient(ctx context.Context, spreadsheetID, credentialsFile, credentialsJSON string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var credentials []byte
	switch {
	case credentialsJSON != "":
		credentials = []byte(credentialsJSON)
	case credentialsFile != "":
		var err error
		credentials, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// ExportSnapshot rewrites the tab named after the year with the annual
// summary followed by the expense and income tables.
func (c *Client) ExportSnapshot(ctx context.Context, username string, ds *core.Dataset, year int) error {
	if err := c.ensureSheet(ctx, strconv.Itoa(year)); err != nil {
		return fmt.Errorf("ensure sheet: %w", err)
	}

	values := buildSnapshotValues(username, ds, year)

	writeRange := fmt.Sprintf("%d!A1", year)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange,
		&gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Exported dataset snapshot",
		"user", username,
		"year", year,
		"rows", len(values),
		"spreadsheet_id", c.spreadsheetID)
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	spreadsheet, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return nil
		}
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	return nil
}

// buildSnapshotValues lays out the exported tab: a header block with
// the annual summary, then one table per item side.
func buildSnapshotValues(username string, ds *core.Dataset, year int) [][]interface{} {
	var values [][]interface{}

	values = append(values,
		[]interface{}{fmt.Sprintf("Presupuesto %d", year), username},
		[]interface{}{},
		[]interface{}{"Mes", "Ingresos", "Presupuesto", "Pagado", "Balance"})

	for _, row := range budget.AnnualSummary(ds, year) {
		values = append(values, []interface{}{
			row.Label,
			row.Income.Format(),
			row.Budgeted.Format(),
			row.Actual.Format(),
			row.Balance.Format(),
		})
	}

	values = append(values, itemTable("Gastos", ds.Expenses, ds.ExpenseOverrides, year)...)
	values = append(values, itemTable("Ingresos", ds.Incomes, ds.IncomeOverrides, year)...)

	return values
}

func itemTable(title string, items []core.Item, overrides []core.Override, year int) [][]interface{} {
	header := []interface{}{title, "Categoría"}
	for m := 1; m <= 12; m++ {
		header = append(header, core.MonthLabel(m))
	}
	header = append(header, "Total")

	out := [][]interface{}{{}, header}
	for _, row := range budget.BuildYearTable(items, overrides, year).Rows {
		cells := []interface{}{row.Name, row.Category}
		for _, amount := range row.Amounts {
			cells = append(cells, amount.Format())
		}
		cells = append(cells, row.Total.Format())
		out = append(out, cells)
	}
	return out
}
