package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/anatolykoptev/go-kit/env"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/engine/journal"
	"github.com/anatolykoptev/go_playlist/internal/engine/sources"
	"github.com/anatolykoptev/go_playlist/internal/playlistserver"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

var errNothingFound = errors.New("nothing playable found")

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// classify maps an expansion error to its exit code.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sources.ErrUnsupportedLocator), errors.Is(err, sources.ErrNotPlaylist):
		return &exitError{code: 1, err: err}
	case errors.Is(err, sources.ErrEmptyPlaylist):
		return &exitError{code: 2, err: err}
	default:
		return err
	}
}

// initEngine configures the engine from the environment and flags.
func initEngine(cmd *cli.Command) {
	c := engine.DefaultConfig()
	c.FetchTimeout = env.Duration("FETCH_TIMEOUT", c.FetchTimeout)
	c.FetchMaxTries = env.Int("FETCH_MAX_TRIES", c.FetchMaxTries)
	c.MaxPages = env.Int("MAX_PAGES", c.MaxPages)
	c.ContinuationInterval = env.Duration("CONTINUATION_INTERVAL", c.ContinuationInterval)
	c.YouTubeOrigin = env.Str("YOUTUBE_ORIGIN", c.YouTubeOrigin)
	c.YaMusicToken = env.Str("YA_MUSIC_TOKEN", "")
	c.HarvestTimeout = cmd.Duration("timeout")
	engine.Init(c)
}

func expandAction(w io.Writer, newRegistry func() *sources.Registry) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		if cmd.NArg() != 1 {
			return fmt.Errorf("expected exactly one URL, got %d arguments", cmd.NArg())
		}
		format, err := parseFormat(cmd.String("format"))
		if err != nil {
			return err
		}

		initEngine(cmd)

		var j journal.Journal = journal.Nop{}
		if path := cmd.String("journal"); path != "" {
			lite, err := journal.OpenSQLite(path)
			if err != nil {
				return err
			}
			j = lite
		}
		defer func() { err = multierr.Append(err, j.Close()) }()

		svc := playlistserver.NewService(newRegistry(), j)
		out, err := svc.Expand(ctx, engine.PlaylistExpandInput{URL: cmd.Args().First(), NoCache: true})
		if err != nil {
			return classify(err)
		}
		if err := render(w, format, out); err != nil {
			return err
		}
		if out.Count == 0 {
			return &exitError{code: 2, err: errNothingFound}
		}
		return nil
	}
}

func render(w io.Writer, format outputFormat, out engine.PlaylistExpandOutput) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return multierr.Append(enc.Encode(out), enc.Close())
	default:
		for _, u := range out.URLs {
			if _, err := fmt.Fprintln(w, u); err != nil {
				return err
			}
		}
		return nil
	}
}

func logAction(w io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		format, err := parseFormat(cmd.String("format"))
		if err != nil {
			return err
		}
		path := cmd.String("journal")
		if path == "" {
			path = journal.DefaultSQLitePath()
		}
		j, err := journal.OpenSQLite(path)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, j.Close()) }()

		entries, err := j.Recent(ctx, cmd.Int("limit"))
		if err != nil {
			return err
		}

		switch format {
		case formatJSON:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		case formatYAML:
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			return multierr.Append(enc.Encode(entries), enc.Close())
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tSTATUS\tCOUNT\tPARSER\tLOCATOR")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Status, e.Count, e.Parser, e.Locator)
		}
		return tw.Flush()
	}
}
