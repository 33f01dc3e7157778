// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"fmt"
	"time"

	"github.com/ik5/audflow/audio"
	"github.com/ik5/audflow/internal/audiotest"
)

// Example_packetizer shows how a pull source becomes a timestamped stream.
func Example_packetizer() {
	// 2000 frames of mono audio at 8kHz
	src := audiotest.NewConstantSource(8000, 1, 2000, 0.5)

	track, err := audio.NewTrack("tone.wav", "wav", src, 1152)
	if err != nil {
		fmt.Println(err)
		return
	}

	stream := audio.NewPacketizer(src, track)
	defer stream.Close()

	for {
		pkt, err := stream.ReadPacket()
		if errors.Is(err, audio.ErrEndOfStream) {
			break
		}
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("packet at %d: %d frames\n", pkt.TS, pkt.Frames)
	}
	// Output:
	// packet at 0: 1152 frames
	// packet at 1152: 848 frames
}

// Example_timeBase converts between frames and wall-clock time.
func Example_timeBase() {
	tb := audio.TimeBaseForRate(44100)

	fmt.Println(tb.CalcTime(66150))
	fmt.Println(tb.CalcTimestamp(2 * time.Second))
	// Output:
	// 1.5s
	// 88200
}

// Example_mixDown averages a stereo buffer into mono.
func Example_mixDown() {
	stereo := []float32{0.2, 0.4, -0.5, 0.5}
	mono := make([]float32, 2)

	n := audio.MixDown(mono, stereo, 2)
	fmt.Println(n, mono)
	// Output:
	// 2 [0.3 0]
}

// Example_registry demonstrates the format registry.
func Example_registry() {
	registry := audio.NewRegistry()
	registry.Register(".WAV", nil)
	registry.Register("mp3", nil)

	_, ok := registry.Get("wav")
	fmt.Println(ok, registry.Formats())
	// Output:
	// true [mp3 wav]
}
