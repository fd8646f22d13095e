package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"invoice-dashboard-backend/internal/clock"
	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/services/intake"
	"invoice-dashboard-backend/internal/services/invoicing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCreator validates for real and fails the store for customer "broken".
type fakeCreator struct {
	validator *intake.Validator
	created   []intake.Draft
}

func (f *fakeCreator) Create(_ context.Context, draft intake.Draft) (invoicing.Result, error) {
	if _, err := f.validator.Validate(draft); err != nil {
		return invoicing.Result{}, err
	}
	if draft[intake.FieldCustomerID] == "broken" {
		return invoicing.Result{}, invoicing.ErrCreateFailed
	}
	f.created = append(f.created, draft)
	return invoicing.Result{RedirectTo: invoicing.InvoicesPath}, nil
}

func newTestImporter() (*Importer, *fakeCreator) {
	creator := &fakeCreator{validator: intake.NewValidator(nil)}
	return New(creator, clock.NewFakeClock(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)), nil), creator
}

func TestImport_AllRowsCreated(t *testing.T) {
	im, creator := newTestImporter()
	csv := "customerId,amount,status\nc-1,250.00,pending\nc-2,99,paid\n"

	report, err := im.Import(context.Background(), "invoices.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "invoices.csv", report.Filename)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, models.ImportStatusCompleted, report.Status)
	assert.Empty(t, report.Errors)
	require.Len(t, creator.created, 2)
	assert.Equal(t, "c-2", creator.created[1][intake.FieldCustomerID])
}

func TestImport_MixedRows(t *testing.T) {
	im, _ := newTestImporter()
	csv := strings.Join([]string{
		"customer_id,status,amount,notes",
		"c-1,pending,10,first",
		"c-2,overdue,abc,bad",
		"",
		"broken,paid,5,store down",
		"c-3",
	}, "\n")

	report, err := im.Import(context.Background(), "mixed.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 2, report.Rejected)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, models.ImportStatusPartial, report.Status)

	require.Len(t, report.Errors, 3)
	assert.Equal(t, 3, report.Errors[0].Row)
	require.Len(t, report.Errors[0].Fields, 2)
	assert.Equal(t, "amount", report.Errors[0].Fields[0].Field)
	assert.Equal(t, "status", report.Errors[0].Fields[1].Field)
	assert.Equal(t, "could not create invoice", report.Errors[1].Message)
	assert.Len(t, report.Errors[2].Fields, 2, "short row misses amount and status")
}

func TestImport_RowsReportFileLines(t *testing.T) {
	im, _ := newTestImporter()
	csv := "customerId,amount,status,notes\n" +
		"c-1,10,pending,\"first line\nsecond line\"\n" +
		"c-2,abc,paid,short\n"

	report, err := im.Import(context.Background(), "multiline.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 4, report.Errors[0].Row)
}

func TestImport_MalformedRowUsesStartLine(t *testing.T) {
	im, _ := newTestImporter()
	csv := "customerId,amount,status\n" +
		"c-1,10,pending\n" +
		"c-2,\"10\"x,paid\n"

	report, err := im.Import(context.Background(), "broken.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Row)
	assert.Equal(t, "malformed row", report.Errors[0].Message)
}

func TestImport_TabSeparated(t *testing.T) {
	im, creator := newTestImporter()
	tsv := "customerId\tamount\tstatus\nc-1\t12.5\tpaid\n"

	report, err := im.Import(context.Background(), "invoices.tsv", strings.NewReader(tsv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	require.Len(t, creator.created, 1)
	assert.Equal(t, "12.5", creator.created[0][intake.FieldAmount])
}

func TestImport_InvalidHeader(t *testing.T) {
	im, _ := newTestImporter()

	_, err := im.Import(context.Background(), "bad.csv", strings.NewReader("name,amount\nLee,10\n"))
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = im.Import(context.Background(), "empty.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestImport_NothingCreated(t *testing.T) {
	im, _ := newTestImporter()

	report, err := im.Import(context.Background(), "bad.csv", strings.NewReader("customerId,amount,status\nc-1,,overdue\n"))
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusFailed, report.Status)
	assert.Equal(t, 1, report.Rejected)
}
