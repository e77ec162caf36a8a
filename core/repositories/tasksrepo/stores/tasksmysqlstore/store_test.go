package tasksmysqlstore_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo/stores/tasksmysqlstore"
	"github.com/jrazmi/minimaltodo/infrastructure/mysqldb"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// fakeMySQL is an in-memory database/sql connector that reports rows
// changed on UPDATE the way MySQL does: an UPDATE that writes the values a
// row already holds affects zero rows.
type fakeMySQL struct {
	mu   sync.Mutex
	rows map[string][]driver.Value // task_id -> title, is_completed, updated_at
}

func newFakeMySQL() *fakeMySQL {
	return &fakeMySQL{rows: map[string][]driver.Value{}}
}

func (f *fakeMySQL) Open(name string) (driver.Conn, error)            { return &fakeConn{db: f}, nil }
func (f *fakeMySQL) Connect(ctx context.Context) (driver.Conn, error) { return &fakeConn{db: f}, nil }
func (f *fakeMySQL) Driver() driver.Driver                            { return f }

type fakeConn struct{ db *fakeMySQL }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return nil, errors.New("tx not supported") }

func (c *fakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	f := c.db
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasPrefix(query, "INSERT"):
		id := args[0].Value.(string)
		if _, ok := f.rows[id]; ok {
			return nil, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '" + id + "'"}
		}
		f.rows[id] = []driver.Value{args[1].Value, args[2].Value, args[4].Value}
		return driver.RowsAffected(1), nil

	case strings.HasPrefix(query, "UPDATE"):
		id := args[3].Value.(string)
		row, ok := f.rows[id]
		if !ok {
			return driver.RowsAffected(0), nil
		}
		next := []driver.Value{args[0].Value, args[1].Value, args[2].Value}
		if equalValues(row, next) {
			return driver.RowsAffected(0), nil
		}
		f.rows[id] = next
		return driver.RowsAffected(1), nil

	case strings.HasPrefix(query, "DELETE"):
		id := args[0].Value.(string)
		if _, ok := f.rows[id]; !ok {
			return driver.RowsAffected(0), nil
		}
		delete(f.rows, id)
		return driver.RowsAffected(1), nil
	}
	return nil, errors.New("unexpected exec: " + query)
}

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	f := c.db
	f.mu.Lock()
	defer f.mu.Unlock()

	if !strings.HasPrefix(query, "SELECT 1") {
		return nil, errors.New("unexpected query: " + query)
	}
	_, ok := f.rows[args[0].Value.(string)]
	return &oneRow{found: ok}, nil
}

func equalValues(a, b []driver.Value) bool {
	for i := range a {
		at, aok := a[i].(time.Time)
		bt, bok := b[i].(time.Time)
		if aok && bok {
			if !at.Equal(bt) {
				return false
			}
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// oneRow yields a single "1" column when found is set.
type oneRow struct {
	found bool
	done  bool
}

func (r *oneRow) Columns() []string { return []string{"1"} }
func (r *oneRow) Close() error      { return nil }
func (r *oneRow) Next(dest []driver.Value) error {
	if !r.found || r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = int64(1)
	return nil
}

func newStore(t *testing.T) *tasksmysqlstore.Store {
	t.Helper()
	db := sql.OpenDB(newFakeMySQL())
	t.Cleanup(func() { db.Close() })
	return tasksmysqlstore.NewStore(logger.NewDiscard(), db)
}

func task(id, title string) tasksrepo.Task {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return tasksrepo.Task{TaskID: id, Title: title, CreatedAt: now, UpdatedAt: now}
}

func TestUpdateUnchangedRowExists(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	tk := task("t1", "Buy milk")
	if err := store.Insert(ctx, tk); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// same values: zero rows changed, but the row is there
	if err := store.Update(ctx, tk); err != nil {
		t.Errorf("unchanged Update = %v, want nil", err)
	}

	tk.IsCompleted = true
	if err := store.Update(ctx, tk); err != nil {
		t.Errorf("Update = %v", err)
	}
}

func TestUpdateDeleteMissing(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	if err := store.Update(ctx, task("nope", "x")); !errors.Is(err, tasksrepo.ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "nope"); !errors.Is(err, tasksrepo.ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}

	if err := store.Insert(ctx, task("t1", "A")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "t1"); err != nil {
		t.Errorf("Delete = %v", err)
	}
	if err := store.Update(ctx, task("t1", "A")); !errors.Is(err, tasksrepo.ErrNotFound) {
		t.Errorf("Update after delete = %v, want ErrNotFound", err)
	}
}

func TestInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	if err := store.Insert(ctx, task("t1", "A")); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, task("t1", "A")); !errors.Is(err, mysqldb.ErrDBDuplicatedEntry) {
		t.Errorf("duplicate Insert = %v", err)
	}
}
