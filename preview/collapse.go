// SPDX-License-Identifier: EPL-2.0

package preview

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects how a chunk of audio is reduced to one Sample.
type Strategy string

const (
	// StrategyMono keeps only the arithmetic mean of the chunk.
	StrategyMono Strategy = "mono"
	// StrategyLevel keeps the mean absolute amplitude of the chunk.
	StrategyLevel Strategy = "level"
	// StrategyBands also splits the signal into low, mid and high bands.
	StrategyBands Strategy = "bands"
)

// Band edges of the three band split, in Hz.
const (
	LowCutoff  = 250.0
	HighCutoff = 4000.0
)

// ParseStrategy accepts a strategy name in any case.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyMono, StrategyLevel, StrategyBands:
		return st, nil
	case "":
		return StrategyMono, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Sample is one preview entry. Level is always set and is signed for the
// mono and band strategies. Low, Mid and High are band magnitudes, only
// filled by the band strategy.
type Sample struct {
	Level float32
	Low   float32
	Mid   float32
	High  float32
}

// Collapser reduces a stream of mono samples to one Sample per chunk.
type Collapser interface {
	// Push feeds one mono sample.
	Push(x float32)
	// Emit returns the Sample of everything pushed since the last Emit.
	Emit() Sample
	// Reset drops accumulated and filter state.
	Reset()
}

// NewCollapser builds the collapser for strategy at sampleRate.
func NewCollapser(strategy Strategy, sampleRate int) (Collapser, error) {
	switch strategy {
	case StrategyMono, "":
		return &monoCollapser{}, nil
	case StrategyLevel:
		return &monoCollapser{abs: true}, nil
	case StrategyBands:
		if sampleRate <= 0 {
			return nil, ErrInvalidLayout
		}
		return &bandCollapser{
			lowAlpha:  onePoleAlpha(LowCutoff, sampleRate),
			highAlpha: onePoleAlpha(HighCutoff, sampleRate),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

type monoCollapser struct {
	// mean of |x| instead of x
	abs bool
	sum float64
	n   int
}

func (c *monoCollapser) Push(x float32) {
	v := float64(x)
	if c.abs {
		v = math.Abs(v)
	}
	c.sum += v
	c.n++
}

func (c *monoCollapser) Emit() Sample {
	var s Sample
	if c.n > 0 {
		s.Level = float32(c.sum / float64(c.n))
	}
	c.sum, c.n = 0, 0
	return s
}

func (c *monoCollapser) Reset() { c.sum, c.n = 0, 0 }

// onePoleAlpha is the smoothing factor of a one-pole low-pass at cutoff Hz.
func onePoleAlpha(cutoff float64, sampleRate int) float64 {
	nyquist := float64(sampleRate) / 2
	if cutoff >= nyquist {
		return 1
	}
	return 1 - math.Exp(-2*math.Pi*cutoff/float64(sampleRate))
}

type bandCollapser struct {
	lowAlpha, highAlpha float64
	// filter state carries over between chunks
	lowState, highState float64

	level, low, mid, high float64
	n                     int
}

func (c *bandCollapser) Push(x float32) {
	v := float64(x)
	c.lowState += c.lowAlpha * (v - c.lowState)
	c.highState += c.highAlpha * (v - c.highState)

	c.level += v
	c.low += math.Abs(c.lowState)
	c.mid += math.Abs(c.highState - c.lowState)
	c.high += math.Abs(v - c.highState)
	c.n++
}

func (c *bandCollapser) Emit() Sample {
	var s Sample
	if c.n > 0 {
		n := float64(c.n)
		s = Sample{
			Level: float32(c.level / n),
			Low:   float32(c.low / n),
			Mid:   float32(c.mid / n),
			High:  float32(c.high / n),
		}
	}
	c.level, c.low, c.mid, c.high, c.n = 0, 0, 0, 0, 0
	return s
}

func (c *bandCollapser) Reset() {
	c.Emit()
	c.lowState, c.highState = 0, 0
}
