package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// mockDBTX implements DBTX using testify mocks. Shared by all repository
// tests in this package.
type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// mockRow implements pgx.Row.
type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// obligationMockRows implements pgx.Rows for ListDue queries.
type obligationMockRows struct {
	data    []obligationRowData
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

type obligationRowData struct {
	id             string
	userID         string
	obligationType string
	city           string
	dueDate        time.Time
	completed      bool
	createdAt      time.Time
}

func newObligationMockRows(data []obligationRowData) *obligationMockRows {
	return &obligationMockRows{data: data, idx: -1}
}

func (r *obligationMockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *obligationMockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx]
	*dest[0].(*string) = row.id
	*dest[1].(*string) = row.userID
	*dest[2].(*string) = row.obligationType
	*dest[3].(*string) = row.city
	*dest[4].(*time.Time) = row.dueDate
	*dest[5].(*bool) = row.completed
	*dest[6].(*time.Time) = row.createdAt
	return nil
}

func (r *obligationMockRows) Close()                                       { r.closed = true }
func (r *obligationMockRows) Err() error                                   { return r.errVal }
func (r *obligationMockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *obligationMockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *obligationMockRows) RawValues() [][]byte                          { return nil }
func (r *obligationMockRows) Values() ([]any, error)                       { return nil, nil }
func (r *obligationMockRows) Conn() *pgx.Conn                              { return nil }

// preferenceMockRows implements pgx.Rows for GetBatch queries.
type preferenceMockRows struct {
	data    []preferenceRowData
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

type preferenceRowData struct {
	userID       string
	emailEnabled bool
	smsEnabled   bool
	voiceEnabled bool
	offsets      []int32
	email        *string
	phone        *string
}

func newPreferenceMockRows(data []preferenceRowData) *preferenceMockRows {
	return &preferenceMockRows{data: data, idx: -1}
}

func (r *preferenceMockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *preferenceMockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx]
	*dest[0].(*string) = row.userID
	*dest[1].(*bool) = row.emailEnabled
	*dest[2].(*bool) = row.smsEnabled
	*dest[3].(*bool) = row.voiceEnabled
	*dest[4].(*[]int32) = row.offsets
	*dest[5].(**string) = row.email
	*dest[6].(**string) = row.phone
	return nil
}

func (r *preferenceMockRows) Close()                                       { r.closed = true }
func (r *preferenceMockRows) Err() error                                   { return r.errVal }
func (r *preferenceMockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *preferenceMockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *preferenceMockRows) RawValues() [][]byte                          { return nil }
func (r *preferenceMockRows) Values() ([]any, error)                       { return nil, nil }
func (r *preferenceMockRows) Conn() *pgx.Conn                              { return nil }

func strPtr(s string) *string { return &s }
