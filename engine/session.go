// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/playhead"
	"github.com/ik5/audflow/preview"
	"github.com/ik5/audflow/sink"
	"github.com/ik5/audflow/utils"
	"github.com/samber/mo"
	"go.uber.org/zap"
)

// session is everything tied to one loaded track.
type session struct {
	track   audio.Track
	stream  audio.Stream
	sink    sink.Sink
	head    playhead.Playhead
	cues    playhead.CueSet
	preview *preview.Buffer
	// prescan analyses the track ahead of playback; nil once done
	prescan audio.Stream
	scan    *preview.Feeder

	// first packet read during load, played before anything else
	pending    mo.Option[audio.Packet]
	pcm        []byte
	decodeErrs int
	// reopens since Load, never cleared by good packets
	resets     int
	ended      bool
}

// feedsPreview reports whether played packets go to the preview.
func (s *session) feedsPreview() bool {
	return s.prescan == nil && !s.preview.Finished()
}

func (s *session) closePrescan(log *zap.Logger) {
	if s.prescan == nil {
		return
	}
	if err := s.prescan.Close(); err != nil {
		log.Warn("closing prescan stream", zap.Error(err))
	}
	s.prescan, s.scan = nil, nil
}

// startPrescan analyses stream into the session's preview.
func (s *session) startPrescan(stream audio.Stream, maxErrors int) {
	s.prescan = stream
	if stream != nil {
		s.scan = preview.NewFeeder(s.preview, stream, maxErrors)
	}
}

func (s *session) close(log *zap.Logger) {
	s.closePrescan(log)

	if err := s.sink.Flush(); err != nil && !errors.Is(err, sink.ErrClosed) {
		log.Warn("flushing sink", zap.Error(err))
	}
	if err := s.sink.Close(); err != nil {
		log.Warn("closing sink", zap.Error(err))
	}
	if err := s.stream.Close(); err != nil {
		log.Warn("closing stream", zap.Error(err))
	}
}

// firstPacket reads until a packet decodes. A stream that ends first has no
// playable audio.
func firstPacket(stream audio.Stream, maxErrs int) (audio.Packet, error) {
	errs := 0
	for {
		pkt, err := stream.ReadPacket()
		switch {
		case err == nil:
			return pkt, nil
		case audio.IsDecodeError(err):
			errs++
			if maxErrs > 0 && errs >= maxErrs {
				return audio.Packet{}, fmt.Errorf("%w: %d bad packets: %w", audio.ErrNoDecodableTrack, errs, err)
			}
		case errors.Is(err, audio.ErrEndOfStream):
			return audio.Packet{}, fmt.Errorf("%w: no packet decoded", audio.ErrNoDecodableTrack)
		default:
			return audio.Packet{}, fmt.Errorf("%w: %w", audio.ErrNoDecodableTrack, err)
		}
	}
}

func specOf(track audio.Track) sink.Spec {
	return sink.Spec{SampleRate: track.Params.SampleRate, Channels: track.Params.Channels}
}

// openPrescan opens the analysis stream. Failing is not fatal: playback
// then feeds the preview.
func (e *Engine) openPrescan(path string) audio.Stream {
	if !e.previewCfg.Prescan {
		return nil
	}

	stream, err := e.streams.Open(path)
	if err != nil {
		e.log.Warn("prescan unavailable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return stream
}

// load opens path. The current track keeps playing state untouched unless
// everything for the new one opened.
func (e *Engine) load(path string) error {
	log := e.log.With(zap.String("path", path))

	fail := func(err error) error {
		log.Warn("load failed", zap.Error(err))
		e.emit(Event{Kind: EventLoadFailed, Path: path, Err: err})
		return fmt.Errorf("loading %s: %w", path, err)
	}

	stream, err := e.streams.Open(path)
	if err != nil {
		return fail(err)
	}
	track := stream.Track()

	first, err := firstPacket(stream, e.cfg.MaxDecodeErrors)
	if err != nil {
		_ = stream.Close()
		return fail(err)
	}

	out, err := e.sinks.Open(specOf(track))
	if err != nil {
		_ = stream.Close()
		return fail(err)
	}

	buf, err := preview.ForTrack(track, preview.ChunkFramesFor(track, e.previewCfg.ChunkFrames), e.strategy)
	if err != nil {
		_ = out.Close()
		_ = stream.Close()
		return fail(err)
	}

	head := playhead.New(track)
	sess := &session{
		track:   track,
		stream:  stream,
		sink:    out,
		head:    head,
		cues:    playhead.NewCueSet(head),
		preview: buf,
		pending: mo.Some(first),
	}
	sess.startPrescan(e.openPrescan(path), e.cfg.MaxDecodeErrors)

	e.closeSession()
	e.sess = sess
	e.publish()
	e.setState(Paused)
	e.emit(Event{Kind: EventLoaded})

	log.Info("track loaded",
		zap.Stringer("id", track.ID),
		zap.String("format", track.Format),
		zap.Int("rate", track.Params.SampleRate),
		zap.Int("channels", track.Params.Channels),
		zap.Int("chunk_frames", buf.ChunkFrames()),
		zap.Bool("prescan", sess.prescan != nil))

	return nil
}

// decodeStep plays one packet.
func (e *Engine) decodeStep(ctx context.Context) {
	s := e.sess

	pkt, ok := s.pending.Get()
	s.pending = mo.None[audio.Packet]()
	if !ok {
		var err error
		pkt, err = s.stream.ReadPacket()
		if err != nil {
			e.readFailed(ctx, err)
			return
		}
	}
	s.decodeErrs = 0

	// the playhead moves before the write, to the start of the audio being
	// handed to the sink
	s.head = s.head.At(pkt.TS)
	e.publishHead()

	s.pcm = utils.AppendS16LE(s.pcm[:0], pkt.Samples[:pkt.Frames*pkt.Channels])
	if err := s.sink.Write(ctx, s.pcm); err != nil {
		if ctx.Err() != nil {
			return
		}
		e.log.Warn("sink write failed", zap.Uint64("ts", uint64(pkt.TS)), zap.Error(err))
		e.emit(Event{Kind: EventSinkFailed, Err: err, TS: pkt.TS})
	}

	if s.feedsPreview() {
		s.preview.Append(pkt)
	}

	e.emit(Event{Kind: EventPacketPlayed, TS: pkt.TS})
}

func (e *Engine) readFailed(ctx context.Context, err error) {
	s := e.sess

	var de *audio.DecodeError
	switch {
	case errors.Is(err, audio.ErrEndOfStream):
		e.finish()
	case errors.Is(err, audio.ErrResetRequired):
		e.reset(ctx, err)
	default:
		s.decodeErrs++
		ev := Event{Kind: EventDecodeFailed, Err: err, TS: s.head.TS}
		if errors.As(err, &de) {
			ev.TS = de.TS
			if s.feedsPreview() {
				s.preview.Gap(de.TS, de.Frames)
			}
		}
		e.log.Debug("skipping packet", zap.Uint64("ts", uint64(ev.TS)), zap.Error(err))
		e.emit(ev)

		if limit := e.cfg.MaxDecodeErrors; limit > 0 && s.decodeErrs >= limit {
			e.log.Warn("giving up on track", zap.Int("consecutive_errors", s.decodeErrs))
			e.finish()
		}
	}
}

// finish handles the end of the track. Queued audio keeps playing.
func (e *Engine) finish() {
	s := e.sess
	if s.feedsPreview() && !s.preview.Detached() {
		s.preview.Finish()
	}
	s.ended = true
	s.decodeErrs = 0

	e.setState(Paused)
	e.emit(Event{Kind: EventFinished})
	e.log.Info("track finished", zap.String("path", s.track.Path))
}

// reset reopens the track after its PCM layout changed and starts it over.
func (e *Engine) reset(ctx context.Context, cause error) {
	s := e.sess
	log := e.log.With(zap.String("path", s.track.Path))

	s.resets++
	if s.resets > e.cfg.MaxResets {
		log.Warn("too many stream resets", zap.Int("resets", s.resets), zap.Error(cause))
		e.emit(Event{Kind: EventDecodeFailed, Err: cause, TS: s.head.TS})
		e.finish()
		return
	}
	log.Info("stream reset required", zap.Error(cause))

	stream, err := e.streams.Open(s.track.Path)
	if err != nil {
		e.unload(fmt.Errorf("reopening after reset: %w", err))
		return
	}
	track := stream.Track()

	if spec := specOf(track); spec != s.sink.Spec() {
		out, err := e.sinks.Open(spec)
		if err != nil {
			_ = stream.Close()
			e.unload(fmt.Errorf("reopening sink after reset: %w", err))
			return
		}
		_ = s.sink.Flush()
		_ = s.sink.Close()
		s.sink = out
	} else if e.State() == Playing {
		e.flush()
	}

	buf, err := preview.ForTrack(track, preview.ChunkFramesFor(track, e.previewCfg.ChunkFrames), e.strategy)
	if err != nil {
		_ = stream.Close()
		e.unload(fmt.Errorf("preview after reset: %w", err))
		return
	}

	_ = s.stream.Close()
	s.closePrescan(e.log)

	s.track = track
	s.stream = stream
	s.head = playhead.New(track)
	s.cues = playhead.NewCueSet(s.head)
	s.preview = buf
	s.startPrescan(e.openPrescan(track.Path), e.cfg.MaxDecodeErrors)
	s.pending = mo.None[audio.Packet]()
	s.decodeErrs = 0
	s.ended = false

	e.publish()
	e.emit(Event{Kind: EventReset, Err: cause})
}

// unload drops the session after an unrecoverable failure.
func (e *Engine) unload(err error) {
	path := e.sess.track.Path
	e.log.Error("unloading track", zap.String("path", path), zap.Error(err))

	e.closeSession()
	e.setState(Unloaded)
	e.emit(Event{Kind: EventLoadFailed, Path: path, Err: err})
}

// prescanStep analyses up to PrescanStep packets ahead of playback.
func (e *Engine) prescanStep() {
	s := e.sess
	log := e.log.Named("prescan")

	done, err := s.scan.Feed(e.previewCfg.PrescanStep)
	switch {
	case err != nil:
		log.Warn("analysis stopped, continuing from playback", zap.Error(err))
		s.closePrescan(log)
		s.preview.Seeked(s.head.TS)
	case done:
		s.closePrescan(log)
		log.Debug("analysis complete", zap.Int("entries", s.preview.Len()))
	}
}
