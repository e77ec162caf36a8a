package mysqldb

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestNormalizeDSN(t *testing.T) {
	got, err := NormalizeDSN("user:pw@tcp(db:3306)/todo")
	if err != nil {
		t.Fatalf("NormalizeDSN: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Errorf("parseTime not forced: %s", got)
	}
	cfg, err := mysql.ParseDSN(got)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBName != "todo" || cfg.Addr != "db:3306" || cfg.User != "user" {
		t.Errorf("dsn fields lost: %+v", cfg)
	}
}

func TestNormalizeDSNInvalid(t *testing.T) {
	if _, err := NormalizeDSN("not a dsn"); err == nil {
		t.Error("expected parse error")
	}
}

func TestHandleMySQLError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, ErrDBDuplicatedEntry},
		{"missing table", &mysql.MySQLError{Number: 1146, Message: "Table 'todo.tasks' doesn't exist"}, ErrUndefinedTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandleMySQLError(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("HandleMySQLError = %v, want %v", got, tt.want)
			}
		})
	}

	other := errors.New("boom")
	if got := HandleMySQLError(other); got != other {
		t.Errorf("unknown errors should pass through, got %v", got)
	}
	if HandleMySQLError(nil) != nil {
		t.Error("nil should stay nil")
	}
}
