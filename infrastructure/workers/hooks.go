package workers

import (
	"context"
	"log/slog"
)

// AddPreProcessHooks registers hooks that run between Checkout and Process.
// Hook errors are logged and do not stop the job.
func (wp *WorkerPool[J]) AddPreProcessHooks(hooks ...PreProcessHook[J]) {
	wp.preProcessHooks = append(wp.preProcessHooks, hooks...)
}

// AddPostProcessHooks registers hooks that run between Process and
// Complete/Fail.
func (wp *WorkerPool[J]) AddPostProcessHooks(hooks ...PostProcessHook[J]) {
	wp.postProcessHooks = append(wp.postProcessHooks, hooks...)
}

// LogStartHook logs each job as it starts at debug level.
func LogStartHook[J Job](log *slog.Logger) PreProcessHook[J] {
	return func(ctx context.Context, job J) error {
		log.DebugContext(ctx, "job starting", "job_id", job.GetID())
		return nil
	}
}

// LogEndHook logs each job outcome; failures at warn level.
func LogEndHook[J Job](log *slog.Logger) PostProcessHook[J] {
	return func(ctx context.Context, job J, err error) error {
		if err != nil {
			log.WarnContext(ctx, "job finished with error", "job_id", job.GetID(), "error", err)
			return nil
		}
		log.DebugContext(ctx, "job finished", "job_id", job.GetID())
		return nil
	}
}
