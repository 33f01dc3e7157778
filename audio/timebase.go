// SPDX-License-Identifier: EPL-2.0

package audio

import "time"

// Timestamp is a position in track-native units (frames for every decoder
// in this module).
type Timestamp uint64

// TimeBase converts timestamps to wall-clock time: one unit lasts
// Numer/Denom seconds.
type TimeBase struct {
	Numer uint32
	Denom uint32
}

// TimeBaseForRate returns the time base of a stream whose timestamps count
// frames at the given sample rate.
func TimeBaseForRate(sampleRate int) TimeBase {
	if sampleRate <= 0 {
		return TimeBase{}
	}
	return TimeBase{Numer: 1, Denom: uint32(sampleRate)}
}

func (tb TimeBase) Valid() bool { return tb.Numer > 0 && tb.Denom > 0 }

// CalcTime converts a timestamp to a duration, truncating toward zero.
func (tb TimeBase) CalcTime(ts Timestamp) time.Duration {
	if !tb.Valid() {
		return 0
	}

	units := uint64(ts) * uint64(tb.Numer)
	secs := units / uint64(tb.Denom)
	rem := units % uint64(tb.Denom)
	nanos := rem * uint64(time.Second) / uint64(tb.Denom)

	return time.Duration(secs)*time.Second + time.Duration(nanos)
}

// CalcTimestamp converts a non-negative duration to a timestamp, truncating
// toward zero. Negative durations map to 0.
func (tb TimeBase) CalcTimestamp(d time.Duration) Timestamp {
	if !tb.Valid() || d <= 0 {
		return 0
	}

	secs := uint64(d / time.Second)
	nanos := uint64(d % time.Second)
	units := secs*uint64(tb.Denom) + nanos*uint64(tb.Denom)/uint64(time.Second)

	return Timestamp(units / uint64(tb.Numer))
}
