package sheets

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/iitkqc/confession-bot-go/internal/constants"
	"github.com/iitkqc/confession-bot-go/internal/domain"
)

// Statuses written to the status column after a run.
const (
	StatusPosted  = 1
	StatusSkipped = 0
)

// Service reads submissions from the intake spreadsheet and writes run
// outcomes back. The sheet doubles as tiny shared state: the public post
// counter lives in one cell and the Instagram access token in another.
type Service struct {
	api     *sheets.Service
	sheetID string
	logger  *zap.Logger
}

// NewService authenticates with the base64-encoded service account JSON.
// The account must have edit access to the sheet.
func NewService(ctx context.Context, sheetID, credentialsB64 string, logger *zap.Logger) (*Service, error) {
	credentials, err := base64.StdEncoding.DecodeString(credentialsB64)
	if err != nil {
		return nil, fmt.Errorf("decode sheets credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	api, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &Service{
		api:     api,
		sheetID: sheetID,
		logger:  logger,
	}, nil
}

// FetchNew returns the unprocessed submissions, oldest first. The scan runs
// bottom-up and stops at the first row whose status cell is set: everything
// above it was settled by an earlier run.
func (s *Service) FetchNew(ctx context.Context) ([]domain.Confession, error) {
	resp, err := s.api.Spreadsheets.Values.Get(s.sheetID, constants.SheetLayout.ReadRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet values: %w", err)
	}
	confessions := scanUnprocessed(resp.Values)
	s.logger.Info("Fetched unprocessed confessions", zap.Int("count", len(confessions)))
	return confessions, nil
}

// scanUnprocessed walks the value grid bottom-up until it hits a settled row
// and returns the tail in submission order. Row 1 is the header; the grid is
// 0-indexed so sheet row = i+1.
func scanUnprocessed(values [][]any) []domain.Confession {
	if len(values) <= 1 {
		return nil
	}

	statusIdx := constants.SheetLayout.StatusColumn - 1

	var confessions []domain.Confession
	for i := len(values) - 1; i >= 1; i-- {
		row := values[i]
		if cellAt(row, statusIdx) != "" {
			break
		}
		confessions = append(confessions, domain.Confession{
			RowNum:    i + 1,
			Timestamp: cellAt(row, 0),
			Text:      cellAt(row, 1),
		})
	}

	for l, r := 0, len(confessions)-1; l < r; l, r = l+1, r-1 {
		confessions[l], confessions[r] = confessions[r], confessions[l]
	}
	return confessions
}

// MarkProcessed writes the run outcome into the row's status cell.
func (s *Service) MarkProcessed(ctx context.Context, rowNum, status int) error {
	cell := fmt.Sprintf("%s%d", columnLetter(constants.SheetLayout.StatusColumn), rowNum)
	if err := s.writeCell(ctx, cell, status); err != nil {
		return fmt.Errorf("mark row %d: %w", rowNum, err)
	}
	s.logger.Info("Marked confession", zap.Int("row", rowNum), zap.Int("status", status))
	return nil
}

// Count reads the running public confession counter.
func (s *Service) Count(ctx context.Context) (int, error) {
	raw, err := s.readCell(ctx, constants.SheetLayout.CounterCell)
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("counter cell holds %q: %w", raw, err)
	}
	return count, nil
}

// IncrementCount bumps the counter after a successful publish. Runs are
// serial, so read-then-write is safe here.
func (s *Service) IncrementCount(ctx context.Context) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if err := s.writeCell(ctx, constants.SheetLayout.CounterCell, count+1); err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}
	s.logger.Info("Confession counter updated", zap.Int("count", count+1))
	return nil
}

// AccessToken reads the stored Instagram access token.
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	token, err := s.readCell(ctx, constants.SheetLayout.TokenCell)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	return strings.TrimSpace(token), nil
}

// SetAccessToken stores a freshly exchanged token.
func (s *Service) SetAccessToken(ctx context.Context, token string) error {
	if err := s.writeCell(ctx, constants.SheetLayout.TokenCell, token); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	s.logger.Info("Instagram access token updated")
	return nil
}

func (s *Service) readCell(ctx context.Context, cell string) (string, error) {
	resp, err := s.api.Spreadsheets.Values.Get(s.sheetID, cell).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return fmt.Sprint(resp.Values[0][0]), nil
}

func (s *Service) writeCell(ctx context.Context, cell string, value any) error {
	payload := &sheets.ValueRange{Values: [][]any{{value}}}
	_, err := s.api.Spreadsheets.Values.Update(s.sheetID, cell, payload).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func cellAt(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

// columnLetter maps a 1-based column index to its A1 letter. The sheet only
// uses single-letter columns.
func columnLetter(col int) string {
	return string(rune('A' + col - 1))
}
