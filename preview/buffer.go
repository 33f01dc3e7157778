// SPDX-License-Identifier: EPL-2.0

package preview

import (
	"sync/atomic"

	"github.com/ik5/audflow/audio"
	"github.com/samber/mo"
)

// Params fixes the shape of a Buffer for the life of a track.
type Params struct {
	ChunkFrames int
	Channels    int
	SampleRate  int
	// TotalFrames enables Progress when the track length is known.
	TotalFrames mo.Option[uint64]
	Strategy    Strategy
}

// Buffer is an append only sequence of preview samples. Entry i always
// covers frames [i*ChunkFrames, (i+1)*ChunkFrames) of the track.
//
// Append, Seeked and Finish must be called from a single goroutine. The
// read methods may be called from any goroutine and never block the writer.
type Buffer struct {
	chunkFrames int
	channels    int
	total       mo.Option[uint64]
	collapser   Collapser

	// writer state
	owned    []Sample
	mono     []float32
	pending  int
	frontier audio.Timestamp
	detached bool

	entries  atomic.Pointer[[]Sample]
	finished atomic.Bool
}

// New creates an empty Buffer.
func New(p Params) (*Buffer, error) {
	if p.ChunkFrames <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if p.Channels <= 0 {
		return nil, ErrInvalidLayout
	}

	c, err := NewCollapser(p.Strategy, p.SampleRate)
	if err != nil {
		return nil, err
	}

	b := &Buffer{
		chunkFrames: p.ChunkFrames,
		channels:    p.Channels,
		total:       p.TotalFrames,
		collapser:   c,
	}
	b.publish()

	return b, nil
}

// ForTrack sizes a Buffer for track with the given chunk size.
func ForTrack(track audio.Track, chunkFrames int, strategy Strategy) (*Buffer, error) {
	return New(Params{
		ChunkFrames: chunkFrames,
		Channels:    track.Params.Channels,
		SampleRate:  track.Params.SampleRate,
		TotalFrames: track.Params.Frames,
		Strategy:    strategy,
	})
}

func (b *Buffer) publish() {
	snapshot := b.owned[:len(b.owned):len(b.owned)]
	b.entries.Store(&snapshot)
}

func (b *Buffer) snapshot() []Sample {
	if p := b.entries.Load(); p != nil {
		return *p
	}
	return nil
}

func (b *Buffer) ChunkFrames() int { return b.chunkFrames }

// Frontier is the first frame not yet analysed.
func (b *Buffer) Frontier() audio.Timestamp { return b.frontier }

// Detached reports whether appends are ignored until playback returns to
// the frontier.
func (b *Buffer) Detached() bool { return b.detached }

// Append analyses pkt. Packets that were already analysed are ignored, a
// packet overlapping the frontier contributes only its new frames, and a
// gap before pkt (a dropped packet) is filled with silence so indexes keep
// their time span.
func (b *Buffer) Append(pkt audio.Packet) {
	if b.finished.Load() || pkt.Frames <= 0 {
		return
	}
	if b.detached {
		if pkt.TS > b.frontier {
			return
		}
		b.detached = false
	}

	end := pkt.End()
	if end <= b.frontier {
		return
	}

	if pkt.TS > b.frontier {
		b.fill(int(pkt.TS - b.frontier))
	}

	skip := int(b.frontier - min(pkt.TS, b.frontier))
	channels := max(pkt.Channels, 1)
	samples := pkt.Samples[skip*channels : pkt.Frames*channels]

	if cap(b.mono) < len(samples)/channels {
		b.mono = make([]float32, len(samples)/channels)
	}
	n := audio.MixDown(b.mono[:cap(b.mono)], samples, channels)
	for _, x := range b.mono[:n] {
		b.push(x)
	}
	b.frontier = end

	b.publish()
}

// Gap records frames that could not be decoded at ts as silence.
func (b *Buffer) Gap(ts audio.Timestamp, frames int) {
	if b.finished.Load() || b.detached || frames <= 0 {
		return
	}

	end := ts + audio.Timestamp(frames)
	if end <= b.frontier || ts > b.frontier {
		return
	}

	b.fill(int(end - b.frontier))
	b.frontier = end

	b.publish()
}

// Seeked tells the buffer playback moved to ts. Moving past the frontier
// detaches the buffer until playback comes back.
func (b *Buffer) Seeked(ts audio.Timestamp) {
	if ts > b.frontier {
		b.detached = true
	}
}

// Finish flushes a trailing partial chunk. Later appends are ignored.
func (b *Buffer) Finish() {
	if b.finished.Load() {
		return
	}
	if b.pending > 0 {
		b.owned = append(b.owned, b.collapser.Emit())
		b.pending = 0
	}
	b.publish()
	b.finished.Store(true)
}

// Finished reports whether the whole track has been analysed.
func (b *Buffer) Finished() bool { return b.finished.Load() }

func (b *Buffer) push(x float32) {
	b.collapser.Push(x)
	b.pending++
	if b.pending == b.chunkFrames {
		b.owned = append(b.owned, b.collapser.Emit())
		b.pending = 0
	}
}

func (b *Buffer) fill(frames int) {
	// finish the open chunk sample by sample, then whole silent chunks
	for frames > 0 && b.pending > 0 {
		b.push(0)
		frames--
	}
	for frames >= b.chunkFrames {
		b.owned = append(b.owned, Sample{})
		frames -= b.chunkFrames
	}
	for range frames {
		b.push(0)
	}
}

// Len is the number of complete entries.
func (b *Buffer) Len() int { return len(b.snapshot()) }

// Snapshot returns the published entries. The slice must not be modified.
func (b *Buffer) Snapshot() []Sample { return b.snapshot() }

// IndexOf is the entry covering ts.
func (b *Buffer) IndexOf(ts audio.Timestamp) int {
	return int(ts / audio.Timestamp(b.chunkFrames))
}

// Window returns width entries centred on center. Positions before the
// start of the track are zero padded; positions not analysed yet are cut
// off, so the result is shorter than width near the frontier.
func (b *Buffer) Window(center, width int) []Sample {
	if width <= 0 {
		return nil
	}

	entries := b.snapshot()
	start := center - width/2
	out := make([]Sample, 0, width)

	if start < 0 {
		pad := min(-start, width)
		out = append(out, make([]Sample, pad)...)
		start = 0
	}

	end := min(center-width/2+width, len(entries))
	if start < end {
		out = append(out, entries[start:end]...)
	}

	return out
}

// Overview decimates the whole buffer to exactly target entries by
// averaging proportional groups. When the buffer is shorter than target,
// entries repeat.
func (b *Buffer) Overview(target int) []Sample {
	if target <= 0 {
		return nil
	}

	entries := b.snapshot()
	out := make([]Sample, target)
	n := len(entries)
	if n == 0 {
		return out
	}

	for i := range target {
		lo := i * n / target
		hi := (i + 1) * n / target
		if hi <= lo {
			out[i] = entries[lo]
			continue
		}
		out[i] = mean(entries[lo:hi])
	}

	return out
}

func mean(group []Sample) Sample {
	var level, low, mid, high float64
	for _, s := range group {
		level += float64(s.Level)
		low += float64(s.Low)
		mid += float64(s.Mid)
		high += float64(s.High)
	}

	n := float64(len(group))
	return Sample{
		Level: float32(level / n),
		Low:   float32(low / n),
		Mid:   float32(mid / n),
		High:  float32(high / n),
	}
}

// Progress is the analysed share of the track in percent, when the track
// length is known.
func (b *Buffer) Progress() mo.Option[int] {
	total, ok := b.total.Get()
	if !ok {
		return mo.None[int]()
	}
	if b.finished.Load() || total == 0 {
		return mo.Some(100)
	}

	covered := uint64(b.Len()) * uint64(b.chunkFrames)
	pct := (100*covered + total - 1) / total

	return mo.Some(int(min(pct, 100)))
}
