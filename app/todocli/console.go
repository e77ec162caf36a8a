package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/core/services/taskservice"
	"github.com/jrazmi/minimaltodo/sdk/broadcast"
)

var errQuit = errors.New("quit")

// taskService is the part of taskservice.Service the console drives.
type taskService interface {
	AddTask(ctx context.Context, title string) error
	UpdateTask(ctx context.Context, task tasksrepo.Task) error
	DeleteTask(ctx context.Context, task tasksrepo.Task) error
	Tasks(ctx context.Context) *broadcast.Subscription[[]tasksrepo.Task]
	Notices(ctx context.Context) *broadcast.Subscription[taskservice.Notice]
}

// console renders the live listing and turns typed lines into service
// calls. Task numbers refer to the most recently rendered listing.
type console struct {
	svc taskService
	out io.Writer

	mu    sync.Mutex
	tasks []tasksrepo.Task
}

func newConsole(svc taskService, out io.Writer) *console {
	return &console{svc: svc, out: out}
}

// watch re-renders on every snapshot and prints notices until ctx ends or
// both feeds close.
func (c *console) watch(ctx context.Context) {
	tasks := c.svc.Tasks(ctx)
	defer tasks.Close()
	notices := c.svc.Notices(ctx)
	defer notices.Close()

	tc, nc := tasks.C(), notices.C()
	for tc != nil || nc != nil {
		select {
		case list, ok := <-tc:
			if !ok {
				tc = nil
				continue
			}
			c.mu.Lock()
			c.tasks = list
			c.mu.Unlock()
			c.render()
		case n, ok := <-nc:
			if !ok {
				nc = nil
				continue
			}
			fmt.Fprintf(c.out, "! could not %s %q: %s\n", n.Op, n.Title, n.Message)
		case <-ctx.Done():
			return
		}
	}
}

func (c *console) render() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	if len(c.tasks) == 0 {
		b.WriteString("  (no tasks)\n")
	}
	for i, t := range c.tasks {
		mark := " "
		if t.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(&b, "%3d [%s] %s\n", i+1, mark, t.Title)
	}
	io.WriteString(c.out, b.String())
}

// exec runs one command line. It returns errQuit when the user asks to
// leave.
func (c *console) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "add", "a":
		return c.svc.AddTask(ctx, arg)
	case "done", "d":
		return c.setCompleted(ctx, arg, true)
	case "undo", "u":
		return c.setCompleted(ctx, arg, false)
	case "rm", "del":
		task, err := c.pick(arg)
		if err != nil {
			return err
		}
		return c.svc.DeleteTask(ctx, task)
	case "ls", "list":
		c.render()
		return nil
	case "help", "?":
		printHelp(c.out)
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type help for commands", cmd)
	}
}

func (c *console) setCompleted(ctx context.Context, arg string, done bool) error {
	task, err := c.pick(arg)
	if err != nil {
		return err
	}
	return c.svc.UpdateTask(ctx, task.WithCompleted(done))
}

func (c *console) pick(arg string) (tasksrepo.Task, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return tasksrepo.Task{}, fmt.Errorf("expected a task number, got %q", arg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > len(c.tasks) {
		return tasksrepo.Task{}, fmt.Errorf("no task %d", n)
	}
	return c.tasks[n-1], nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Available commands:
  add <title>  - add a task
  done <n>     - mark task n complete
  undo <n>     - mark task n not complete
  rm <n>       - delete task n
  ls           - show the list
  help         - show this help
  quit         - exit`)
}
