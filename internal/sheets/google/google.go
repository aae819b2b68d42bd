package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "cashflow/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var (
	ErrMissingSpreadsheetID = errors.New("missing spreadsheet id")
	ErrMissingCredentials   = errors.New("missing service account credentials")
)

// Config selects the target sheet and the service account used to reach it.
// ServiceAccountJSON wins over ServiceAccountFile.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.ProjectionWriter = (*Client)(nil)

// New creates a Sheets client authenticated as a service account.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ErrMissingSpreadsheetID
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		cfg.SheetName = "Projection"
	}

	svc, err := newSheetsService(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetName: cfg.SheetName}, nil
}

// newSheetsService builds the service from inline JSON or a credentials
// file. Extra options (an endpoint in tests) are appended last.
func newSheetsService(ctx context.Context, cfg Config, extra ...goption.ClientOption) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", cfg.ServiceAccountFile)
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	case len(extra) > 0:
		// caller supplies its own authentication
	default:
		return nil, ErrMissingCredentials
	}

	opts := make([]goption.ClientOption, 0, len(extra)+2)
	if credentialsJSON != nil {
		opts = append(opts,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	opts = append(opts, extra...)

	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteProjection clears the projection sheet and writes the export from A1.
func (c *Client) WriteProjection(ctx context.Context, export ports.Export) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rows := ports.Rows(export)

	clearRange := fmt.Sprintf("%s!A:C", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	ref := fmt.Sprintf("%s!A1:C%d", c.sheetName, len(rows))
	vr := &gsheet.ValueRange{Values: rows}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", ref, err)
	}

	slog.InfoContext(ctx, "Projection written to Google Sheets",
		"range", ref,
		"updated_rows", resp.UpdatedRows,
		"anchor", export.Anchor.String(),
		"points", len(export.Points))

	return ref, nil
}
