package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"invoice-dashboard-backend/internal/clock"
	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/services/intake"
	"invoice-dashboard-backend/internal/services/invoicing"

	"go.uber.org/zap"
)

var ErrInvalidFile = errors.New("invalid_file")

// Column aliases accepted in the header row.
var headerAliases = map[string]string{
	"customerid":  intake.FieldCustomerID,
	"customer_id": intake.FieldCustomerID,
	"amount":      intake.FieldAmount,
	"status":      intake.FieldStatus,
}

type Creator interface {
	Create(ctx context.Context, draft intake.Draft) (invoicing.Result, error)
}

// Importer feeds every CSV row through the single-invoice pipeline.
type Importer struct {
	creator Creator
	clock   clock.Clock
	log     *zap.Logger
}

func New(creator Creator, clk clock.Clock, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Importer{creator: creator, clock: clk, log: log.Named("importer")}
}

// Import reads a comma or tab separated file with a header row. Rows are
// independent: a bad row is reported and the rest still go through.
func (im *Importer) Import(ctx context.Context, filename string, src io.Reader) (*models.ImportReport, error) {
	report := &models.ImportReport{
		Filename:  filename,
		StartedAt: im.clock.Now().UTC(),
		Errors:    []models.RowError{},
	}

	buffered := bufio.NewReader(src)
	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if sample, _ := buffered.Peek(1024); !bytes.ContainsRune(sample, ',') && bytes.ContainsRune(sample, '\t') {
		reader.Comma = '\t'
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read header: %v", ErrInvalidFile, err)
	}
	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.TotalRows++
			report.Rejected++
			report.Errors = append(report.Errors, models.RowError{Row: errorLine(err), Message: "malformed row"})
			continue
		}
		if strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}

		// Rows are reported by the file line they start on, which differs from
		// the record count once a quoted field spans lines.
		line, _ := reader.FieldPos(0)
		report.TotalRows++
		im.importRow(ctx, report, line, draftFromRecord(record, columns))
	}

	report.CompletedAt = im.clock.Now().UTC()
	report.Status = statusOf(report)

	im.log.Info("invoice import finished",
		zap.String("filename", filename),
		zap.Int("total_rows", report.TotalRows),
		zap.Int("created", report.Created),
		zap.Int("rejected", report.Rejected),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (im *Importer) importRow(ctx context.Context, report *models.ImportReport, rowNum int, draft intake.Draft) {
	_, err := im.creator.Create(ctx, draft)
	switch invoicing.OutcomeOf(err) {
	case invoicing.OutcomeOK:
		report.Created++
	case invoicing.OutcomeValidationFailed:
		report.Rejected++
		var verr *intake.ValidationError
		errors.As(err, &verr)
		issues := make([]models.FieldIssue, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			issues = append(issues, models.FieldIssue{Field: f.Field, Code: f.Code, Message: f.Message})
		}
		report.Errors = append(report.Errors, models.RowError{Row: rowNum, Message: "invalid fields", Fields: issues})
	default:
		report.Failed++
		report.Errors = append(report.Errors, models.RowError{Row: rowNum, Message: "could not create invoice"})
	}
}

func errorLine(err error) int {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return perr.StartLine
	}
	return 0
}

func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(headerAliases))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := headerAliases[key]; ok {
			columns[field] = i
		}
	}
	for _, field := range []string{intake.FieldCustomerID, intake.FieldAmount, intake.FieldStatus} {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrInvalidFile, field)
		}
	}
	return columns, nil
}

// draftFromRecord leaves a field out when the row is too short, so the
// validator reports it as missing.
func draftFromRecord(record []string, columns map[string]int) intake.Draft {
	draft := make(intake.Draft, len(columns))
	for field, idx := range columns {
		if idx < len(record) {
			draft[field] = record[idx]
		}
	}
	return draft
}

func statusOf(report *models.ImportReport) string {
	switch {
	case report.Created == report.TotalRows:
		return models.ImportStatusCompleted
	case report.Created == 0:
		return models.ImportStatusFailed
	default:
		return models.ImportStatusPartial
	}
}
