// playlistctl expands a playlist URL from the command line.
//
// Exit codes: 0 on success, 1 when the URL is not supported or the run
// failed, 2 when nothing playable was found.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/anatolykoptev/go_playlist/internal/engine/journal"
	"github.com/anatolykoptev/go_playlist/internal/engine/sources"
)

var version = "dev"

func newApp(w io.Writer, newRegistry func() *sources.Registry) *cli.Command {
	return &cli.Command{
		Name:            "playlistctl",
		Usage:           "expand a playlist or album URL into media URLs",
		Version:         version,
		HideHelpCommand: true,
		Writer:          w,
		Before:          initLogging,
		ExitErrHandler:  func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(formatText), Usage: "output `FORMAT`: text, json or yaml"},
			&cli.DurationFlag{Name: "timeout", Aliases: []string{"t"}, Value: 2 * time.Minute, Usage: "deadline for the whole harvest"},
			&cli.StringFlag{Name: "journal", Aliases: []string{"j"}, Usage: "record the run in the SQLite journal at `PATH`"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log harvest progress to stderr"},
		},
		ArgsUsage: "URL",
		Action:    expandAction(w, newRegistry),
		Commands: []*cli.Command{
			{
				Name:  "log",
				Usage: "List recent runs from the journal",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: journal.DefaultLimit, Usage: "max entries to show"},
				},
				Action: logAction(w),
			},
			{
				Name:  "parsers",
				Usage: "List registered parsers",
				Action: func(_ context.Context, _ *cli.Command) error {
					for _, name := range newRegistry().Names() {
						fmt.Fprintln(w, name)
					}
					return nil
				},
			},
		},
	}
}

func initLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return ctx, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp(os.Stdout, sources.DefaultRegistry).Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "playlistctl: %v\n", err)
		os.Exit(exitCode(err))
	}
}
