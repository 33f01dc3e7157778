// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ik5/audflow/formats"
	"github.com/ik5/audflow/playhead"
	"github.com/ik5/audflow/preview"
	"github.com/ik5/audflow/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type analyzeOptions struct {
	width    int
	height   int
	strategy string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Print the waveform overview of an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.analyze(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", 80, "overview width in columns")
	cmd.Flags().IntVar(&opts.height, "height", 6, "overview height in rows")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "preview strategy: mono, level or bands (default from config)")

	return cmd
}

func (a *app) analyze(out io.Writer, path string, opts analyzeOptions) error {
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", opts.width, opts.height)
	}

	cfg, err := a.config()
	if err != nil {
		return err
	}
	log, err := a.logger(cfg.Logging)
	if err != nil {
		return err
	}

	name := opts.strategy
	if name == "" {
		name = cfg.Preview.Strategy
	}
	strategy, err := preview.ParseStrategy(name)
	if err != nil {
		return err
	}

	stream, err := formats.NewOpener(a.fs, nil, cfg.Decoder.PacketFrames).Open(path)
	if err != nil {
		return err
	}
	defer stream.Close()

	track := stream.Track()
	buf, err := preview.ForTrack(track, preview.ChunkFramesFor(track, cfg.Preview.ChunkFrames), strategy)
	if err != nil {
		return err
	}

	start := time.Now()
	if _, err := preview.Feed(buf, stream, 0, cfg.Engine.MaxDecodeErrors); err != nil {
		return fmt.Errorf("analysing %s: %w", path, err)
	}
	log.Info("track analysed",
		zap.String("path", path),
		zap.Int("entries", buf.Len()),
		zap.Duration("took", time.Since(start)))

	total := "--:--"
	if d, ok := playhead.New(track).Total().Get(); ok {
		total = playhead.Clock(d)
	}

	fmt.Fprintf(out, "%s  %s  %d Hz  %d ch  %s\n",
		filepath.Base(path), track.Format, track.Params.SampleRate, track.Params.Channels, total)
	fmt.Fprintln(out, tui.Wave(buf.Overview(opts.width), opts.width, opts.height))
	fmt.Fprintf(out, "%d entries of %d frames (%s)\n", buf.Len(), buf.ChunkFrames(), strategy)

	return nil
}
