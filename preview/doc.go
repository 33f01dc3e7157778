// SPDX-License-Identifier: EPL-2.0

// Package preview builds the downsampled amplitude view of a track that the
// player draws as a waveform.
//
// A Buffer collapses every ChunkFrames frames of decoded audio into one
// Sample. The chunk size is fixed when the buffer is created, so entry i
// always covers the same span of track time and the buffer only grows.
//
// Collapsing is done by a Collapser chosen by Strategy:
//
//   - StrategyMono: arithmetic mean of the channel mean
//   - StrategyLevel: mean absolute amplitude of the channel mean
//   - StrategyBands: the mono mean plus low, mid and high band levels
//     from a pair of one-pole low-pass filters at LowCutoff and HighCutoff
//
// # Concurrency
//
// One goroutine writes (Append, Gap, Seeked, Finish). Each write publishes
// an immutable slice header through an atomic pointer, so Window, Overview,
// Len and Progress can run on any goroutine without locks and never see a
// partially written entry.
//
// # Reading
//
// Window(center, width) pads with zero samples before the start of the
// track and stops at the analysed frontier. Overview(target) always returns
// exactly target entries.
package preview
