// SPDX-License-Identifier: EPL-2.0

// Package cmd implements the audflow command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/ik5/audflow/config"
	"github.com/ik5/audflow/logger"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is the state shared by every subcommand.
type app struct {
	fs      afero.Fs
	cfgFile string
	v       *viper.Viper
	log     *zap.Logger
}

// NewRootCmd builds the command tree reading tracks, config files and
// recordings from fs.
func NewRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, v: config.New(fs), log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "audflow",
		Short:         "Terminal audio player with a live waveform preview",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.Read(a.v, a.cfgFile)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./audflow.yaml, then $HOME/.config/audflow/audflow.yaml)")
	pf.String("backend", "", "audio output: speaker, wav or null")
	pf.String("record", "", "recording path for the wav backend, {n} is the recording number")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-file", "", "log file, empty to disable")

	lo.Must0(a.v.BindPFlag("audio.backend", pf.Lookup("backend")))
	lo.Must0(a.v.BindPFlag("audio.record_path", pf.Lookup("record")))
	lo.Must0(a.v.BindPFlag("logging.level", pf.Lookup("log-level")))
	lo.Must0(a.v.BindPFlag("logging.file", pf.Lookup("log-file")))

	root.AddCommand(
		newPlayCmd(a),
		newAnalyzeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return root
}

// config decodes and validates the effective settings.
func (a *app) config() (config.Config, error) {
	return config.Decode(a.v)
}

// logger replaces the shared logger according to cfg.
func (a *app) logger(cfg logger.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}
	a.log = log
	return log, nil
}

func Execute() {
	if err := NewRootCmd(afero.NewOsFs()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "audflow:", err)
		os.Exit(1)
	}
}
