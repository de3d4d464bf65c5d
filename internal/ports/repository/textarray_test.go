package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/model"
)

func TestTextArrayScan(t *testing.T) {
	cases := []struct {
		name string
		src  any
		want []string
	}{
		{"plain", "{NY,en}", []string{"NY", "en"}},
		{"bytes", []byte("{NY,en}"), []string{"NY", "en"}},
		{"quoted with comma", `{"New York, NY",Boston}`, []string{"New York, NY", "Boston"}},
		{"escaped quote", `{"say \"hi\""}`, []string{`say "hi"`}},
		{"empty", "{}", []string{}},
		{"null element", "{NULL,en}", []string{"", "en"}},
		{"quoted NULL stays literal", `{"NULL"}`, []string{"NULL"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var a textArray
			require.NoError(t, a.Scan(tc.src))
			require.Equal(t, tc.want, []string(a))
		})
	}
}

func TestTextArrayScanNilAndMalformed(t *testing.T) {
	var a textArray
	require.NoError(t, a.Scan(nil))
	require.Nil(t, []string(a))

	require.Error(t, a.Scan("NY,en"))
	require.Error(t, a.Scan(42))
}

func TestTextArrayValueRoundTrip(t *testing.T) {
	for _, in := range [][]string{
		nil,
		{"NY", "en"},
		{"New York, NY", `say "hi"`, `back\slash`},
	} {
		v, err := textArray(in).Value()
		require.NoError(t, err)

		var out textArray
		require.NoError(t, out.Scan(v))
		if len(in) == 0 {
			require.Empty(t, []string(out))
		} else {
			require.Equal(t, in, []string(out))
		}
	}
}

// The pgx stdlib driver surfaces text[] columns as the raw array literal and
// rejects []string arguments, so the repositories must translate on both
// sides. This drives a repository through database/sql against a stub driver
// behaving like that.

type stubRows struct {
	cols []string
	vals [][]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.vals) {
		return io.EOF
	}
	copy(dest, r.vals[r.pos])
	r.pos++
	return nil
}

type stubConn struct {
	rows     *stubRows
	execArgs []driver.NamedValue
}

func (c *stubConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return c.rows, nil
}

func (c *stubConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execArgs = args
	return driver.RowsAffected(1), nil
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return nil, errors.New("begin not supported") }

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("use the connector") }

func TestEmployeeRepoDecodesArrayColumns(t *testing.T) {
	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	conn := &stubConn{rows: &stubRows{
		cols: []string{"id", "code", "first_name", "last_name", "email", "locations", "languages",
			"status", "is_online", "active_tab_count", "last_seen", "last_tab_closed_at", "created_at"},
		vals: [][]driver.Value{{
			"e1", "EMP-3F9A21", "Ada", "Lovelace", "ada@example.com",
			"{NY,en}", `{en,"fr"}`,
			"active", true, int64(0), nil, nil, created,
		}},
	}}
	db := sql.OpenDB(stubConnector{conn: conn})
	defer db.Close()

	repo := &EmployeeRepo{DB: db}
	emp, err := repo.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	require.Equal(t, []string{"NY", "en"}, emp.Locations)
	require.Equal(t, []string{"en", "fr"}, emp.Languages)
}

func TestEmployeeRepoEncodesArrayArguments(t *testing.T) {
	conn := &stubConn{}
	db := sql.OpenDB(stubConnector{conn: conn})
	defer db.Close()

	repo := &EmployeeRepo{DB: db}
	err := repo.Update(context.Background(), &model.Employee{
		ID:        "e1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Locations: []string{"NY", "LA"},
		Languages: []string{"en"},
		Status:    model.EmployeeActive,
	})
	require.NoError(t, err)

	require.Len(t, conn.execArgs, 7)
	require.Equal(t, `{"NY","LA"}`, conn.execArgs[3].Value)
	require.Equal(t, `{"en"}`, conn.execArgs[4].Value)
}
