package tasksmemstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo/stores/tasksmemstore"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := tasksmemstore.NewStore(tasksrepo.Task{TaskID: "seed", Title: "Seed"})

	if err := store.Insert(ctx, tasksrepo.Task{TaskID: "a", Title: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, tasksrepo.Task{TaskID: "a", Title: "dup"}); err == nil {
		t.Error("expected duplicate id error")
	}
	if err := store.Update(ctx, tasksrepo.Task{TaskID: "a", Title: "A2", IsCompleted: true}); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, tasksrepo.Task{TaskID: "zzz"}); !errors.Is(err, tasksrepo.ErrNotFound) {
		t.Errorf("Update missing = %v", err)
	}
	if err := store.Delete(ctx, "seed"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "seed"); !errors.Is(err, tasksrepo.ErrNotFound) {
		t.Errorf("second Delete = %v", err)
	}

	tasks, _ := store.List(ctx)
	if len(tasks) != 1 || tasks[0].Title != "A2" || !tasks[0].IsCompleted {
		t.Errorf("unexpected tasks %+v", tasks)
	}

	// List returns a copy
	tasks[0].Title = "mutated"
	again, _ := store.List(ctx)
	if again[0].Title != "A2" {
		t.Error("List exposed internal state")
	}
}
