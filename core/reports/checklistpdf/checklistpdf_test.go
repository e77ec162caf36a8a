package checklistpdf

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
)

func TestRender(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)

	tests := []struct {
		name  string
		tasks []tasksrepo.Task
	}{
		{"empty", nil},
		{"mixed", []tasksrepo.Task{
			{TaskID: "1", Title: "Buy milk"},
			{TaskID: "2", Title: "Café crème", IsCompleted: true},
		}},
		{"many pages", func() []tasksrepo.Task {
			var out []tasksrepo.Task
			for i := range 120 {
				out = append(out, tasksrepo.Task{TaskID: fmt.Sprint(i), Title: fmt.Sprintf("Task %d", i), IsCompleted: i%3 == 0})
			}
			return out
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, "My tasks", tt.tasks, at); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
			}
		})
	}
}
