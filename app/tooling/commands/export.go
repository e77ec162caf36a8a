package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jrazmi/minimaltodo/core/reports/checklistpdf"
	"github.com/jrazmi/minimaltodo/core/repositories"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// Export writes the current task list of the configured store to a
// printable PDF checklist at path.
func Export(ctx context.Context, log *logger.Logger, prefix, path, title string) error {
	repos, err := repositories.NewFromEnv(ctx, prefix, log)
	if err != nil {
		return err
	}
	defer repos.Close()

	tasks, err := repos.Tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := checklistpdf.Render(f, title, tasks, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("render checklist: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	log.InfoContext(ctx, "checklist exported", "path", path, "tasks", len(tasks))
	return nil
}
