// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/playhead"
	"github.com/ik5/audflow/preview"
	"github.com/ik5/audflow/sink"
	"github.com/samber/mo"
	"go.uber.org/zap"
)

// StreamOpener opens a track as a packet stream.
type StreamOpener interface {
	Open(path string) (audio.Stream, error)
}

// StreamOpenerFunc adapts a function to StreamOpener.
type StreamOpenerFunc func(path string) (audio.Stream, error)

func (f StreamOpenerFunc) Open(path string) (audio.Stream, error) { return f(path) }

// Option customises an Engine built by New.
type Option func(*Engine)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option { return func(e *Engine) { e.cfg = cfg } }

// WithPreview sets how loaded tracks are analysed for the waveform.
func WithPreview(cfg preview.Config) Option { return func(e *Engine) { e.previewCfg = cfg } }

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option { return func(e *Engine) { e.log = log } }

// Engine plays one track at a time. All playback work happens on the
// goroutine running Run; other goroutines send commands and read snapshots.
type Engine struct {
	streams    StreamOpener
	sinks      sink.Opener
	cfg        Config
	previewCfg preview.Config
	strategy   preview.Strategy
	log        *zap.Logger

	inbox   chan Command
	events  chan Event
	done    chan struct{}
	running atomic.Bool
	closing atomic.Bool

	// snapshots for readers
	state  atomic.Int32
	head   atomic.Pointer[playhead.Playhead]
	track  atomic.Pointer[audio.Track]
	buf    atomic.Pointer[preview.Buffer]
	cues   atomic.Pointer[playhead.CueSet]
	status atomic.Pointer[Event]

	// owned by Run
	sess *session
}

// New builds an idle engine that opens tracks with streams and plays them
// through sinks. Nothing happens until Run is called.
func New(streams StreamOpener, sinks sink.Opener, opts ...Option) (*Engine, error) {
	e := &Engine{
		streams:    streams,
		sinks:      sinks,
		cfg:        DefaultConfig(),
		previewCfg: preview.DefaultConfig(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if err := e.previewCfg.Validate(); err != nil {
		return nil, fmt.Errorf("preview config: %w", err)
	}
	strategy, err := preview.ParseStrategy(e.previewCfg.Strategy)
	if err != nil {
		return nil, err
	}

	e.strategy = strategy
	e.log = e.log.Named("engine")
	e.inbox = make(chan Command, e.cfg.InboxSize)
	e.events = make(chan Event, e.cfg.EventBuffer)
	e.done = make(chan struct{})
	e.status.Store(&Event{})

	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// State returns the current playback state.
func (e *Engine) State() State { return State(e.state.Load()) }

// Playhead returns the position of the loaded track.
func (e *Engine) Playhead() mo.Option[playhead.Playhead] {
	if p := e.head.Load(); p != nil {
		return mo.Some(*p)
	}
	return mo.None[playhead.Playhead]()
}

func (e *Engine) Track() mo.Option[audio.Track] {
	if t := e.track.Load(); t != nil {
		return mo.Some(*t)
	}
	return mo.None[audio.Track]()
}

// Preview returns the preview buffer of the loaded track, or nil.
func (e *Engine) Preview() *preview.Buffer { return e.buf.Load() }

// Cues returns the cue points of the loaded track.
func (e *Engine) Cues() playhead.CueSet {
	if c := e.cues.Load(); c != nil {
		return *c
	}
	return playhead.CueSet{}
}

// Status is the latest event other than EventPacketPlayed.
func (e *Engine) Status() Event { return *e.status.Load() }

// Events delivers notifications. Events are dropped when the receiver
// falls behind. The channel is closed when Run returns.
func (e *Engine) Events() <-chan Event { return e.events }

// Done is closed when Run has returned.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Post queues cmd without waiting for it to run.
func (e *Engine) Post(cmd Command) error {
	if e.closing.Load() {
		return ErrClosed
	}

	select {
	case e.inbox <- cmd:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInboxFull, cmd.Kind)
	}
}

// Do queues cmd and waits for its result.
func (e *Engine) Do(ctx context.Context, cmd Command) error {
	cmd.reply = make(chan error, 1)
	if err := e.Post(cmd); err != nil {
		return err
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w", ctx.Err())
	case <-e.done:
		select {
		case err := <-cmd.reply:
			return err
		default:
			return ErrClosed
		}
	}
}

// Run processes commands and plays audio until a Close command or the end
// of ctx. It returns nil after Close and ctx.Err() otherwise.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.shutdown()

	e.log.Debug("engine started")

	for {
		if e.busy() {
			// at most one command per decode step
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd := <-e.inbox:
				if e.handle(ctx, cmd) {
					return nil
				}
			default:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd := <-e.inbox:
				if e.handle(ctx, cmd) {
					return nil
				}
			}
		}

		if e.sess == nil {
			continue
		}
		if e.State() == Playing {
			e.decodeStep(ctx)
		}
		if e.sess != nil && e.sess.prescan != nil {
			e.prescanStep()
		}
	}
}

func (e *Engine) busy() bool {
	return e.sess != nil && (e.State() == Playing || e.sess.prescan != nil)
}

func (e *Engine) handle(ctx context.Context, cmd Command) bool {
	e.log.Debug("command", zap.Stringer("kind", cmd.Kind))

	var err error
	switch cmd.Kind {
	case KindLoad:
		err = e.load(cmd.Path)
	case KindTogglePlay:
		err = e.togglePlay()
	case KindCue:
		err = e.cue(cmd.CueID)
	case KindSkipForward:
		err = e.skip(cmd.Offset, 1)
	case KindSkipBackward:
		err = e.skip(cmd.Offset, -1)
	case KindSeekTo:
		err = e.seekTo(cmd.Offset)
	case KindStop:
		err = e.stop()
	case KindClose:
		e.closing.Store(true)
		cmd.respond(nil)
		return true
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownCommand, cmd.Kind)
	}

	cmd.respond(err)
	return false
}

func (e *Engine) shutdown() {
	e.closing.Store(true)

	e.closeSession()
	e.setState(Closed)
	e.emit(Event{Kind: EventClosed})
	close(e.done)

	for {
		select {
		case cmd := <-e.inbox:
			cmd.respond(ErrClosed)
		default:
			close(e.events)
			e.log.Debug("engine stopped")
			return
		}
	}
}

func (e *Engine) setState(s State) {
	if prev := State(e.state.Swap(int32(s))); prev != s {
		e.log.Debug("state changed", zap.Stringer("from", prev), zap.Stringer("to", s))
		e.emit(Event{Kind: EventStateChanged})
	}
}

func (e *Engine) emit(ev Event) {
	ev.State = e.State()
	if s := e.sess; s != nil {
		ev.TrackID = s.track.ID
		ev.Head = s.head
		if ev.Path == "" {
			ev.Path = s.track.Path
		}
	}

	if ev.Kind != EventPacketPlayed {
		e.status.Store(&ev)
	}

	select {
	case e.events <- ev:
	default:
	}
}

func (e *Engine) publish() {
	s := e.sess
	if s == nil {
		e.head.Store(nil)
		e.track.Store(nil)
		e.buf.Store(nil)
		e.cues.Store(nil)
		return
	}

	head, track, cues := s.head, s.track, s.cues
	e.head.Store(&head)
	e.track.Store(&track)
	e.buf.Store(s.preview)
	e.cues.Store(&cues)
}

func (e *Engine) publishHead() {
	head := e.sess.head
	e.head.Store(&head)
}

func (e *Engine) closeSession() {
	if e.sess == nil {
		return
	}
	e.sess.close(e.log)
	e.sess = nil
	e.publish()
}

// flush drops queued audio; a failure is reported but never fatal.
func (e *Engine) flush() {
	if err := e.sess.sink.Flush(); err != nil {
		e.log.Warn("sink flush failed", zap.Error(err))
		e.emit(Event{Kind: EventSinkFailed, Err: err})
	}
}

func (e *Engine) togglePlay() error {
	if e.sess == nil {
		return ErrNoTrack
	}

	switch e.State() {
	case Paused:
		if e.sess.ended {
			if err := e.seek(0); err != nil {
				return err
			}
		}
		e.setState(Playing)
	case Playing:
		e.flush()
		e.setState(Paused)
	}
	return nil
}

func (e *Engine) cue(id string) error {
	s := e.sess
	if s == nil {
		return ErrNoTrack
	}

	if e.State() != Playing {
		s.cues = s.cues.Set(id, s.head)
		cues := s.cues
		e.cues.Store(&cues)
		e.log.Debug("cue stored", zap.String("id", id), zap.Uint64("ts", uint64(s.head.TS)))
		return nil
	}

	target, ok := s.cues.Get(id).Get()
	if !ok {
		return nil
	}
	return e.seek(target.TS)
}

func (e *Engine) skip(d time.Duration, dir int) error {
	s := e.sess
	if s == nil {
		return ErrNoTrack
	}
	if d < 0 {
		err := fmt.Errorf("%w: %w: %s", audio.ErrInvalidTimestamp, playhead.ErrNegativeOffset, d)
		e.emit(Event{Kind: EventSeekFailed, Err: err})
		return err
	}

	target := s.head.AddTime(time.Duration(dir) * d)
	if err := target.Check(target.TS); err != nil {
		e.emit(Event{Kind: EventSeekFailed, Err: err, TS: target.TS})
		return err
	}
	return e.seek(target.TS)
}

func (e *Engine) seekTo(d time.Duration) error {
	s := e.sess
	if s == nil {
		return ErrNoTrack
	}

	ts, err := s.head.Offset(d)
	if err != nil {
		e.emit(Event{Kind: EventSeekFailed, Err: err})
		return err
	}
	return e.seek(ts)
}

func (e *Engine) stop() error {
	if e.sess == nil {
		return ErrNoTrack
	}
	if e.State() == Playing {
		e.flush()
		e.setState(Paused)
	}
	return e.seek(0)
}

// seek moves the playback stream. On failure nothing changes.
func (e *Engine) seek(ts audio.Timestamp) error {
	s := e.sess

	actual, err := s.stream.Seek(ts)
	if err != nil {
		e.log.Warn("seek failed", zap.Uint64("ts", uint64(ts)), zap.Error(err))
		e.emit(Event{Kind: EventSeekFailed, Err: err, TS: ts})
		return fmt.Errorf("seeking to %d: %w", ts, err)
	}

	s.pending = mo.None[audio.Packet]()
	s.head = s.head.At(actual)
	s.ended = false
	s.decodeErrs = 0
	e.publishHead()

	if e.State() == Playing {
		e.flush()
	}
	if s.feedsPreview() {
		s.preview.Seeked(actual)
	}

	return nil
}
