package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jrazmi/minimaltodo/app/tooling/commands"
	"github.com/jrazmi/minimaltodo/core/repositories"
	"github.com/jrazmi/minimaltodo/sdk/environment"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

var build = "develop"
var appName = "TODO"

func processCommands(ctx context.Context, log *logger.Logger, command string, args []string) error {
	switch command {
	case "migrate":
		fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
		driver := fs.String("driver", "", "postgres or mysql (defaults to "+appName+"_STORE_DRIVER)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *driver == "" {
			var opts repositories.Options
			if err := environment.ParseEnvTags(appName, &opts); err != nil {
				return fmt.Errorf("parsing store config: %w", err)
			}
			*driver = opts.Driver
		}
		if err := commands.Migrate(ctx, log, appName, *driver); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		out := fs.String("out", "tasks.pdf", "output file")
		title := fs.String("title", "Tasks", "checklist heading")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return commands.Export(ctx, log, appName, *out, *title)

	default:
		printHelp()
		return nil
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  migrate [-driver postgres|mysql]  - create the task schema in the database")
	fmt.Println("  export [-out file] [-title text]  - write the task list as a PDF checklist")
	fmt.Println()
	fmt.Println("Use 'go run ./app/tooling <command> -h' for command-specific help.")
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	var command string
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if command == "" || command == "help" || command == "--help" || command == "-h" {
		printHelp()
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return processCommands(ctx, log, command, os.Args[2:])
}

func main() {
	environment.LoadEnv()

	log, err := logger.NewFromEnv(appName, logger.WithService("tooling"))
	if err != nil {
		fmt.Println("oh no we couldn't even get logging going.")
		os.Exit(1)
	}
	ctx := context.Background()

	if err = run(ctx, log); err != nil {
		log.ErrorContext(ctx, "tooling", "err", err)
		os.Exit(1)
	}
}
