package sheetsclient

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

const (
	shiftColumn    = "Shift"
	positionColumn = "Position"
)

// TabTitle names the tab a schedule is published to, e.g. "Grand - Sun Jun 01 2025"
func TabTitle(doc *model.ResultDocument) (string, error) {
	start, err := time.Parse(model.DateFormat, doc.RelevantWeekStartDate)
	if err != nil {
		return "", fmt.Errorf("invalid week start date: %w", err)
	}
	return fmt.Sprintf("%s - %s", doc.HotelName, start.Format("Mon Jan 02 2006")), nil
}

// BuildScheduleGrid lays a schedule out as rows: one row per seat of each
// shift and position, one column per day. Unfilled seats read UNFILLED and the
// unfilled notes are listed below the grid.
func BuildScheduleGrid(doc *model.ResultDocument) [][]interface{} {
	header := []interface{}{shiftColumn, positionColumn}
	for _, day := range model.Days {
		header = append(header, string(day))
	}

	rows := [][]interface{}{
		{fmt.Sprintf("%s, week of %s (%s)", doc.HotelName, doc.RelevantWeekStartDate, doc.Status)},
		{},
		header,
	}

	for _, shift := range model.ShiftPeriods {
		for _, position := range positionsOn(doc.Schedule, shift) {
			// Seats of a position can differ per day; the tallest day sets the row count
			cells := make([][]string, len(model.Days))
			height := 0
			for i, day := range model.Days {
				for _, entry := range doc.Schedule[day][shift] {
					if entry.Position == position {
						cells[i] = append(cells[i], doc.EntryLabel(entry))
					}
				}
				height = max(height, len(cells[i]))
			}

			for seat := 0; seat < height; seat++ {
				row := []interface{}{string(shift), position}
				for i := range model.Days {
					value := ""
					if seat < len(cells[i]) {
						value = cells[i][seat]
					}
					row = append(row, value)
				}
				rows = append(rows, row)
			}
		}
	}

	if len(doc.Notes) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Unfilled"})
		for _, note := range doc.Notes {
			weapon := ""
			if note.Weapon {
				weapon = "weapon"
			}
			rows = append(rows, []interface{}{note.Shift, note.Position, weapon})
		}
	}

	return rows
}

// positionsOn returns the positions scheduled on a shift on any day, sorted
func positionsOn(schedule model.ScheduleByDay, shift model.ShiftPeriod) []string {
	seen := map[string]bool{}
	var positions []string
	for _, day := range model.Days {
		for _, entry := range schedule[day][shift] {
			if !seen[entry.Position] {
				seen[entry.Position] = true
				positions = append(positions, entry.Position)
			}
		}
	}
	sort.Strings(positions)
	return positions
}

// PublishSchedule writes a schedule to its own tab. A missing tab is created;
// an existing one is cleared and rewritten.
func (c *Client) PublishSchedule(ctx context.Context, spreadsheetID string, doc *model.ResultDocument) (string, error) {
	tabTitle, err := TabTitle(doc)
	if err != nil {
		return "", err
	}

	exists, err := c.SheetExists(ctx, spreadsheetID, tabTitle)
	if err != nil {
		return "", err
	}

	if exists {
		if err := c.ClearSheet(ctx, spreadsheetID, tabTitle); err != nil {
			return "", err
		}
	} else if _, err := c.CreateSheet(ctx, spreadsheetID, tabTitle); err != nil {
		return "", fmt.Errorf("failed to create tab: %w", err)
	}

	if err := c.WriteRows(ctx, spreadsheetID, tabTitle, BuildScheduleGrid(doc)); err != nil {
		return "", err
	}
	return tabTitle, nil
}

// Publisher publishes every saved schedule to a spreadsheet
type Publisher struct {
	client        *Client
	spreadsheetID string
	logger        *zap.Logger
}

// NewPublisher wraps a client as a result hook
func NewPublisher(client *Client, spreadsheetID string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, spreadsheetID: spreadsheetID, logger: logger}
}

func (p *Publisher) Name() string { return "sheets" }

func (p *Publisher) HandleResult(ctx context.Context, _ *model.Manager, doc *model.ResultDocument) error {
	tab, err := p.client.PublishSchedule(ctx, p.spreadsheetID, doc)
	if err != nil {
		return fmt.Errorf("failed to publish schedule: %w", err)
	}
	p.logger.Info("Published schedule to sheets", zap.String("hotel", doc.HotelName), zap.String("tab", tab))
	return nil
}
