package tasksrepobridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jrazmi/minimaltodo/core/reports/checklistpdf"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/core/services/taskservice"
	"github.com/jrazmi/minimaltodo/infrastructure/web"
	"github.com/jrazmi/minimaltodo/sdk/errs"
	"github.com/jrazmi/minimaltodo/sdk/validation"
)

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	tasks, err := b.service.Snapshot(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}
	return web.NewJSONResponse(nonNil(tasks))
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input AddTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}
	if err := b.service.AddTask(ctx, input.Title); err != nil {
		return serviceError(err)
	}
	return web.NewJSONResponseWithStatus(Accepted{Status: "accepted"}, http.StatusAccepted)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	var input UpdateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}

	taskID := web.Param(r, "task_id")
	task := tasksrepo.Task{
		TaskID:      taskID,
		Title:       *input.Title,
		IsCompleted: *input.IsCompleted,
	}
	if err := b.service.UpdateTask(ctx, task); err != nil {
		return serviceError(err)
	}
	return web.NewJSONResponseWithStatus(Accepted{Status: "accepted", TaskID: taskID}, http.StatusAccepted)
}

func (b *bridge) httpToggle(ctx context.Context, r *http.Request) web.Encoder {
	taskID := web.Param(r, "task_id")
	task, err := b.service.Task(ctx, taskID)
	if err != nil {
		if errors.Is(err, tasksrepo.ErrNotFound) {
			return errs.Newf(errs.NotFound, "task %s not found", taskID)
		}
		return errs.New(errs.Internal, err)
	}

	// no body flips the flag
	var input ToggleInput
	if err := web.Decode(r, &input); err != nil && !errors.Is(err, web.ErrEmptyBody) {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}
	done := validation.GetBoolOrDefault(input.IsCompleted, !task.IsCompleted)

	if err := b.service.UpdateTask(ctx, task.WithCompleted(done)); err != nil {
		return serviceError(err)
	}
	return web.NewJSONResponseWithStatus(Accepted{Status: "accepted", TaskID: taskID}, http.StatusAccepted)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	taskID := web.Param(r, "task_id")
	if err := b.service.DeleteTask(ctx, tasksrepo.Task{TaskID: taskID}); err != nil {
		return serviceError(err)
	}
	return web.NewJSONResponseWithStatus(Accepted{Status: "accepted", TaskID: taskID}, http.StatusAccepted)
}

func (b *bridge) httpExportPDF(ctx context.Context, r *http.Request) web.Encoder {
	title := validation.NormalizeTitle(web.QueryParam(r, "title"))
	if title == "" {
		title = "Tasks"
	}

	tasks, err := b.service.Snapshot(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	var buf bytes.Buffer
	if err := checklistpdf.Render(&buf, title, tasks, time.Now()); err != nil {
		return errs.New(errs.Internal, err)
	}

	w := web.GetWriter(ctx)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(title)))
	return web.NewBytesResponse(buf.Bytes(), "application/pdf")
}

func (b *bridge) httpHealth(ctx context.Context, r *http.Request) web.Encoder {
	tasks, _ := b.service.Snapshot(ctx)
	h := Health{
		Status:    "ok",
		Store:     b.storeName,
		Tasks:     len(tasks),
		Pending:   b.service.Pending(),
		Running:   b.service.Running(),
		Worker:    b.service.Metrics(),
		CheckedAt: time.Now().UTC(),
	}

	status := http.StatusOK
	if b.statusCheck != nil {
		if err := b.statusCheck(ctx); err != nil {
			h.Status = "unavailable"
			h.StoreErr = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if !h.Running && status == http.StatusOK {
		h.Status = "stopped"
		status = http.StatusServiceUnavailable
	}
	return web.NewJSONResponseWithStatus(h, status)
}

func serviceError(err error) *errs.Error {
	switch {
	case errors.Is(err, taskservice.ErrBlankTitle):
		return errs.New(errs.InvalidArgument, err)
	case errors.Is(err, taskservice.ErrServiceStopped):
		return errs.New(errs.Unavailable, err)
	}
	return errs.New(errs.Internal, err)
}
