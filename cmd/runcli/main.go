// Package main is an interactive terminal client for the execution gateway.
//
// It drives the same session state machine the web client uses: the source
// is scanned for stdin reads, the user is prompted for each required value,
// and one execution call goes out once everything is collected.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/sakif/coderunner/internal/gwclient"
	"github.com/sakif/coderunner/internal/session"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelWarn,
	}))

	cmd := &cli.Command{
		Name:  "runcli",
		Usage: "compile and run a C++ source file on the remote gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "gateway base URL",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("CODERUNNER_SERVER"),
			},
			&cli.StringFlag{
				Name:  "input",
				Usage: "stdin to send as-is, skipping interactive collection",
			},
		},
		ArgsUsage: "<source-file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("exactly one source file is required", 2)
			}
			return run(ctx, cmd, logger)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command, logger *slog.Logger) error {
	source, err := os.ReadFile(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}

	client := gwclient.New(cmd.String("server"), 0, logger)
	sess := session.New(client, logger)

	if input := cmd.String("input"); input != "" {
		sess.RunWithInput(ctx, string(source), input)
	} else {
		sess.Run(ctx, string(source))
	}

	collectInputs(ctx, sess)
	return render(waitForResult(ctx, sess))
}

// collectInputs prompts for values for as long as the session asks for them.
func collectInputs(ctx context.Context, sess *session.Session) {
	stdin := bufio.NewScanner(os.Stdin)
	prompt := color.New(color.FgCyan, color.Bold)

	for {
		snap := sess.Snapshot()
		if !snap.ShowInput {
			return
		}

		prompt.Fprint(os.Stderr, snap.InputPrompt)
		if !stdin.Scan() {
			sess.Stop()
			return
		}
		sess.SubmitInput(ctx, stdin.Text())
	}
}

// waitForResult polls the session until the run leaves the in-flight states.
func waitForResult(ctx context.Context, sess *session.Session) session.Snapshot {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		snap := sess.Snapshot()
		switch snap.State {
		case session.StateCompleted, session.StateError, session.StateStopped:
			return snap
		}

		select {
		case <-ctx.Done():
			sess.Stop()
			return sess.Snapshot()
		case <-ticker.C:
		}
	}
}

func render(snap session.Snapshot) error {
	if snap.Output != "" {
		fmt.Print(snap.Output)
		if snap.Output[len(snap.Output)-1] != '\n' {
			fmt.Println()
		}
	}

	switch snap.State {
	case session.StateError:
		color.New(color.FgRed).Fprintln(os.Stderr, snap.Error)
		return cli.Exit("", 1)
	case session.StateStopped:
		color.New(color.FgYellow).Fprintln(os.Stderr, "run stopped")
		return cli.Exit("", 130)
	default:
		return nil
	}
}
