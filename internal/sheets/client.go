package sheets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/hkaya/meallogger/internal/apperrors"
	"github.com/hkaya/meallogger/internal/auth"
	"github.com/hkaya/meallogger/internal/logging"
	"github.com/hkaya/meallogger/internal/models"
)

// Client talks to the Google Sheets and Drive APIs for one selected
// spreadsheet. It does not retry; retry policy belongs to the caller of the
// sync engine.
type Client struct {
	sheetsSvc     *sheets.Service
	driveSvc      *drive.Service
	spreadsheetID string
}

// NewClient builds a client from the bearer credential the auth provider
// supplies. spreadsheetID may be empty until a remote target is selected or
// created.
func NewClient(ctx context.Context, provider auth.TokenProvider, spreadsheetID string) (*Client, error) {
	ts, err := auth.TokenSource(provider)
	if err != nil {
		return nil, err
	}

	sheetsSvc, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to create sheets service", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to create drive service", err)
	}

	return &Client{
		sheetsSvc:     sheetsSvc,
		driveSvc:      driveSvc,
		spreadsheetID: spreadsheetID,
	}, nil
}

// SetSpreadsheet retargets the client at another spreadsheet.
func (c *Client) SetSpreadsheet(id string) {
	c.spreadsheetID = id
}

// FetchRows reads the bounded data range of the Meals sheet. Blank padding
// rows (no name) are filtered out.
func (c *Client) FetchRows(ctx context.Context) ([]models.RemoteRow, error) {
	resp, err := c.sheetsSvc.Spreadsheets.Values.Get(c.spreadsheetID, mealsDataRange).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to fetch meal rows", err)
	}

	rows := make([]models.RemoteRow, 0, len(resp.Values))
	for _, vals := range resp.Values {
		if row, ok := valuesToRow(vals); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ReplaceRows rewrites the header, clears the data region and writes rows in
// one batch. Any failure surfaces as RemoteUnavailable; the caller must
// treat the round as errored, never as a partial success.
func (c *Client) ReplaceRows(ctx context.Context, rows []models.RemoteRow) error {
	header := &sheets.ValueRange{Values: [][]interface{}{mealHeader}}
	_, err := c.sheetsSvc.Spreadsheets.Values.Update(c.spreadsheetID, mealsHeaderRange, header).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to write header row", err)
	}

	_, err = c.sheetsSvc.Spreadsheets.Values.Clear(c.spreadsheetID, mealsDataRange, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to clear data region", err)
	}

	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, rowToValues(row))
	}
	_, err = c.sheetsSvc.Spreadsheets.Values.Update(c.spreadsheetID, mealsWriteOrigin, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to write meal rows", err)
	}

	logging.Debug("replaced remote rows", map[string]interface{}{
		"spreadsheet_id": c.spreadsheetID,
		"rows":           len(rows),
	})
	return nil
}

// EnsureSettingsSheet creates the Settings sheet and its header if missing.
// Safe to call repeatedly; an existing sheet is left untouched.
func (c *Client) EnsureSettingsSheet(ctx context.Context) error {
	meta, err := c.sheetsSvc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to inspect spreadsheet", err)
	}

	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == SettingsSheetTitle {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: SettingsSheetTitle},
			},
		}},
	}
	if _, err := c.sheetsSvc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to add settings sheet", err)
	}

	header := &sheets.ValueRange{Values: [][]interface{}{settingsHeader}}
	_, err = c.sheetsSvc.Spreadsheets.Values.Update(c.spreadsheetID, settingsHeaderRange, header).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to write settings header", err)
	}
	return nil
}

// ReadSettings reads the key/value pairs of the settings region.
func (c *Client) ReadSettings(ctx context.Context) (map[string]int, error) {
	resp, err := c.sheetsSvc.Spreadsheets.Values.Get(c.spreadsheetID, settingsDataRange).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to read settings", err)
	}

	out := make(map[string]int)
	for _, vals := range resp.Values {
		key := cellString(vals, 0)
		if key == "" {
			continue
		}
		out[key] = cellInt(vals, 1)
	}
	return out, nil
}

// WriteSettings rewrites the settings region with the given pairs.
func (c *Client) WriteSettings(ctx context.Context, pairs map[string]int) error {
	_, err := c.sheetsSvc.Spreadsheets.Values.Clear(c.spreadsheetID, settingsDataRange, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to clear settings region", err)
	}

	if len(pairs) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(pairs))
	for _, key := range sortedKeys(pairs) {
		values = append(values, []interface{}{key, strconv.Itoa(pairs[key])})
	}
	_, err = c.sheetsSvc.Spreadsheets.Values.Update(c.spreadsheetID, settingsWriteOrigin, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to write settings", err)
	}
	return nil
}

// CreateSpreadsheet creates a new remote target with a Meals sheet and its
// header row, and retargets the client at it.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (string, string, error) {
	if title == "" {
		title = fmt.Sprintf("Meal Logger - %s", time.Now().Format("1/2/2006"))
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{{
			Properties: &sheets.SheetProperties{Title: MealsSheetTitle},
		}},
	}
	resp, err := c.sheetsSvc.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to create spreadsheet", err)
	}

	c.spreadsheetID = resp.SpreadsheetId

	header := &sheets.ValueRange{Values: [][]interface{}{mealHeader}}
	_, err = c.sheetsSvc.Spreadsheets.Values.Update(resp.SpreadsheetId, mealsHeaderRange, header).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to write header row", err)
	}

	name := title
	if resp.Properties != nil && resp.Properties.Title != "" {
		name = resp.Properties.Title
	}
	logging.Info("created remote spreadsheet", map[string]interface{}{
		"spreadsheet_id": resp.SpreadsheetId,
		"title":          name,
	})
	return resp.SpreadsheetId, name, nil
}

// SpreadsheetRef identifies a user spreadsheet for target selection.
type SpreadsheetRef struct {
	ID   string
	Name string
}

// ListSpreadsheets lists the user's spreadsheets for target selection.
func (c *Client) ListSpreadsheets(ctx context.Context) ([]SpreadsheetRef, error) {
	resp, err := c.driveSvc.Files.List().
		Q("mimeType='application/vnd.google-apps.spreadsheet'").
		Fields("files(id, name)").
		PageSize(50).
		Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemoteUnavailable, "failed to list spreadsheets", err)
	}

	refs := make([]SpreadsheetRef, 0, len(resp.Files))
	for _, f := range resp.Files {
		refs = append(refs, SpreadsheetRef{ID: f.Id, Name: f.Name})
	}
	return refs, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
