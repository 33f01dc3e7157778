// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ik5/audflow/engine"
	"github.com/ik5/audflow/formats"
	"github.com/ik5/audflow/sink"
	"github.com/ik5/audflow/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type playOptions struct {
	headless bool
	paused   bool
}

func newPlayCmd(a *app) *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play an audio file",
		Long: "Play an audio file in the terminal player.\n\n" +
			"Keys: space play/pause, c cue, 1-4 hot cues, ←/→ skip, s stop, q quit.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.play(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.headless, "headless", false, "play without the terminal UI and exit at the end of the track")
	cmd.Flags().BoolVar(&opts.paused, "paused", false, "load the track without starting playback")

	return cmd
}

func (a *app) play(ctx context.Context, out io.Writer, path string, opts playOptions) error {
	if opts.headless && opts.paused {
		return errors.New("--paused needs the terminal UI")
	}

	cfg, err := a.config()
	if err != nil {
		return err
	}
	if !opts.headless {
		// the UI owns the terminal
		cfg.Logging.Console = false
	}
	log, err := a.logger(cfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, err := sink.New(cfg.Audio, a.fs, log)
	if err != nil {
		return err
	}

	e, err := engine.New(
		formats.NewOpener(a.fs, nil, cfg.Decoder.PacketFrames),
		sinks,
		engine.WithConfig(cfg.Engine),
		engine.WithPreview(cfg.Preview),
		engine.WithLogger(log),
	)
	if err != nil {
		return err
	}

	go func() {
		if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("engine stopped", zap.Error(err))
		}
	}()
	defer func() {
		_ = e.Post(engine.Close())
		<-e.Done()
	}()

	if err := e.Do(ctx, engine.Load(path)); err != nil {
		return err
	}
	if !opts.paused {
		if err := e.Post(engine.TogglePlay()); err != nil {
			return err
		}
	}

	if opts.headless {
		return untilFinished(ctx, out, e)
	}
	return tui.Run(ctx, e, filepath.Base(path), cfg.Engine.SkipStep)
}

// untilFinished prints engine notifications until the track ends. Events
// can be dropped when the engine outruns the reader, so the status is
// polled as well.
func untilFinished(ctx context.Context, out io.Writer, e *engine.Engine) error {
	poll := time.NewTicker(100 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
			if st := e.Status(); st.Kind == engine.EventFinished {
				fmt.Fprintln(out, st)
				return nil
			}
		case ev, ok := <-e.Events():
			if !ok {
				return nil
			}

			switch ev.Kind {
			case engine.EventPacketPlayed, engine.EventStateChanged:
				continue
			case engine.EventLoadFailed:
				return ev.Err
			}
			fmt.Fprintln(out, ev)

			if ev.Kind == engine.EventFinished {
				return nil
			}
		}
	}
}
