package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNewf(t *testing.T) {
	err := Newf(InvalidArgument, "title %q is blank", " ")

	if err.HTTPStatus() != http.StatusBadRequest {
		t.Errorf("status = %d", err.HTTPStatus())
	}
	if !strings.HasSuffix(strings.Split(err.FileName, ":")[0], "errs_test.go") {
		t.Errorf("file name not captured: %q", err.FileName)
	}
	if !strings.Contains(err.FuncName, "TestNewf") {
		t.Errorf("func name not captured: %q", err.FuncName)
	}

	data, contentType, encErr := err.Encode()
	if encErr != nil {
		t.Fatal(encErr)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	var body map[string]string
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "invalid_argument" || body["message"] != `title " " is blank` {
		t.Errorf("unexpected body %v", body)
	}
}

func TestIs(t *testing.T) {
	err := New(NotFound, errors.New("task missing"))
	if !errors.Is(err, &Error{Code: NotFound}) {
		t.Error("expected match on code")
	}
	if errors.Is(err, &Error{Code: Internal}) {
		t.Error("unexpected match on different code")
	}
}
