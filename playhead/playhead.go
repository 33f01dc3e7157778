// SPDX-License-Identifier: EPL-2.0

package playhead

import (
	"errors"
	"fmt"
	"time"

	"github.com/ik5/audflow/audio"
	"github.com/samber/mo"
)

var ErrNegativeOffset = errors.New("negative time offset")

// Playhead is a position inside a track. It is a plain value: every method
// returns a new Playhead and never changes the receiver.
type Playhead struct {
	TS       audio.Timestamp
	TimeBase audio.TimeBase
	// Duration is the track length in timestamp units when known.
	Duration mo.Option[audio.Timestamp]
}

// New returns the initial playhead of track.
func New(track audio.Track) Playhead {
	return Playhead{
		TimeBase: track.Params.TimeBase,
		Duration: track.Duration(),
	}
}

// At returns p moved to ts.
func (p Playhead) At(ts audio.Timestamp) Playhead {
	p.TS = ts
	return p
}

// AddTime moves p by d, which may be negative. The result saturates at the
// start of the track.
func (p Playhead) AddTime(d time.Duration) Playhead {
	if d >= 0 {
		p.TS += p.TimeBase.CalcTimestamp(d)
		return p
	}

	delta := p.TimeBase.CalcTimestamp(-d)
	if delta >= p.TS {
		p.TS = 0
	} else {
		p.TS -= delta
	}
	return p
}

// Offset resolves a time relative to the start of the track. Negative
// offsets and offsets past a known end are rejected.
func (p Playhead) Offset(d time.Duration) (audio.Timestamp, error) {
	if d < 0 {
		return 0, fmt.Errorf("%w: %w: %s", audio.ErrInvalidTimestamp, ErrNegativeOffset, d)
	}

	ts := p.TimeBase.CalcTimestamp(d)
	if err := p.Check(ts); err != nil {
		return 0, err
	}
	return ts, nil
}

// Check reports whether ts is a valid seek target for the track.
func (p Playhead) Check(ts audio.Timestamp) error {
	if total, ok := p.Duration.Get(); ok && ts > total {
		return fmt.Errorf("%w: %d is past the end (%d)", audio.ErrInvalidTimestamp, ts, total)
	}
	return nil
}

func (p Playhead) Elapsed() time.Duration { return p.TimeBase.CalcTime(p.TS) }

func (p Playhead) Seconds() float64 { return p.Elapsed().Seconds() }

// Total is the track length as a duration when known.
func (p Playhead) Total() mo.Option[time.Duration] {
	total, ok := p.Duration.Get()
	if !ok {
		return mo.None[time.Duration]()
	}
	return mo.Some(p.TimeBase.CalcTime(total))
}

// Progress is the fraction of the track already played, in [0, 1].
func (p Playhead) Progress() mo.Option[float64] {
	total, ok := p.Duration.Get()
	if !ok {
		return mo.None[float64]()
	}
	if total == 0 {
		return mo.Some(1.0)
	}
	return mo.Some(min(1.0, float64(p.TS)/float64(total)))
}

// String renders the position as "m:ss.cc / m:ss.cc", with "--:--" for an
// unknown length.
func (p Playhead) String() string {
	total := "--:--"
	if d, ok := p.Total().Get(); ok {
		total = Clock(d)
	}
	return Clock(p.Elapsed()) + " / " + total
}

// Clock formats d as minutes, seconds and hundredths.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := d / (10 * time.Millisecond)
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}
