// Command todocli is an interactive terminal client that runs the task
// core in-process against the configured store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chzyer/readline"
	"github.com/jrazmi/minimaltodo/core/repositories"
	"github.com/jrazmi/minimaltodo/core/services/taskservice"
	"github.com/jrazmi/minimaltodo/sdk/environment"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

var appName = "TODO"

func main() {
	environment.LoadEnv()

	// Records go to stderr so they do not interleave with the list.
	log, err := logger.NewFromEnv(appName, logger.WithOutput(os.Stderr), logger.WithLevel("WARN"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuring logger:", err)
		os.Exit(1)
	}

	if err := run(context.Background(), log); err != nil {
		fmt.Fprintln(os.Stderr, "todocli:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	repos, err := repositories.NewFromEnv(ctx, appName, log)
	if err != nil {
		return err
	}
	defer repos.Close()

	svc, err := taskservice.NewFromEnv(appName, log, repos.Tasks)
	if err != nil {
		return err
	}
	runDone := make(chan error, 1)
	go func() { runDone <- svc.Run(ctx) }()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "todo> ",
		HistoryFile:     historyFile(),
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		svc.Stop()
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := newConsole(svc, rl.Stdout())
	fmt.Fprintln(rl.Stdout(), "Type help for available commands.")
	go c.watch(ctx)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if err := c.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			fmt.Fprintln(rl.Stderr(), "error:", err)
		}
	}

	dctx, dcancel := context.WithTimeout(ctx, 5*time.Second)
	defer dcancel()
	if err := svc.Drain(dctx); err != nil {
		fmt.Fprintf(rl.Stderr(), "%d pending changes were not saved\n", svc.Pending())
	}
	svc.Stop()
	return <-runDone
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("add"),
		readline.PcItem("done"),
		readline.PcItem("undo"),
		readline.PcItem("rm"),
		readline.PcItem("ls"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "minimaltodo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}
