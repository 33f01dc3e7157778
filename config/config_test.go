// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/audflow/preview"
	"github.com/ik5/audflow/sink"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

const sampleYAML = `
audio:
  backend: wav
  record_path: /rec/take-{n}.wav
preview:
  strategy: bands
engine:
  skip_step: 10s
logging:
  level: debug
`

func TestLoad(t *testing.T) {
	Convey("Loading configuration", t, func() {
		fs := afero.NewMemMapFs()

		Convey("Defaults apply without a file", func() {
			cfg, _, err := Load(fs, "")
			So(err, ShouldBeNil)
			So(cfg, ShouldResemble, DefaultConfig())
		})

		Convey("An explicit file overrides defaults", func() {
			So(afero.WriteFile(fs, "/etc/audflow.yaml", []byte(sampleYAML), 0o644), ShouldBeNil)

			cfg, _, err := Load(fs, "/etc/audflow.yaml")
			So(err, ShouldBeNil)
			So(cfg.Audio.Backend, ShouldEqual, sink.BackendWAV)
			So(cfg.Audio.RecordPath, ShouldEqual, "/rec/take-{n}.wav")
			So(cfg.Preview.Strategy, ShouldEqual, "bands")
			So(cfg.Engine.SkipStep, ShouldEqual, 10*time.Second)
			So(cfg.Logging.Level, ShouldEqual, "debug")

			Convey("and keeps the defaults it does not mention", func() {
				So(cfg.Preview.Prescan, ShouldBeTrue)
				So(cfg.Audio.DeviceRate, ShouldEqual, 44100)
				So(cfg.Engine.InboxSize, ShouldEqual, 16)
			})
		})

		Convey("The working directory is searched", func() {
			wd, err := os.Getwd()
			So(err, ShouldBeNil)
			So(afero.WriteFile(fs, filepath.Join(wd, "audflow.yaml"), []byte("audio:\n  backend: \"null\"\n"), 0o644), ShouldBeNil)

			cfg, v, err := Load(fs, "")
			So(err, ShouldBeNil)
			So(cfg.Audio.Backend, ShouldEqual, sink.BackendNull)
			So(v.ConfigFileUsed(), ShouldEndWith, "audflow.yaml")
		})

		Convey("A named file that does not exist is an error", func() {
			_, _, err := Load(fs, "/missing.yaml")
			So(err, ShouldNotBeNil)
		})

		Convey("Invalid values are reported per section", func() {
			So(afero.WriteFile(fs, "/bad.yaml", []byte("preview:\n  strategy: fft\ndecoder:\n  packet_frames: 0\n"), 0o644), ShouldBeNil)

			_, _, err := Load(fs, "/bad.yaml")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, preview.ErrUnknownStrategy), ShouldBeTrue)

			var ce *ConfigError
			So(errors.As(err, &ce), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "decoder: packet_frames")
		})
	})
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("AUDFLOW_AUDIO_BACKEND", "null")
	t.Setenv("AUDFLOW_ENGINE_SKIP_STEP", "2s")
	t.Setenv("AUDFLOW_PREVIEW_PRESCAN", "false")

	Convey("Environment variables override defaults", t, func() {
		cfg, _, err := Load(afero.NewMemMapFs(), "")
		So(err, ShouldBeNil)
		So(cfg.Audio.Backend, ShouldEqual, sink.BackendNull)
		So(cfg.Engine.SkipStep, ShouldEqual, 2*time.Second)
		So(cfg.Preview.Prescan, ShouldBeFalse)
	})
}

func TestSettings(t *testing.T) {
	Convey("Settings lists every key", t, func() {
		v := New(afero.NewMemMapFs())
		lines := Settings(v)

		So(len(lines), ShouldEqual, len(Defaults()))
		So(lines, ShouldContain, "audio.backend = speaker")
		So(lines, ShouldContain, "engine.skip_step = 5s")
		So(lines[0], ShouldStartWith, "audio.")
	})

	Convey("EnvKeyReplacer turns dots into underscores", t, func() {
		So(EnvKeyReplacer.Replace("engine.max_decode_errors"), ShouldEqual, "engine_max_decode_errors")
	})
}
