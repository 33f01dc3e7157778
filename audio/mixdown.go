// SPDX-License-Identifier: EPL-2.0

package audio

// MixDown averages interleaved frames of src into one mono value per frame
// in dst and returns the number of frames written. dst must hold at least
// len(src)/channels values; a trailing partial frame in src is ignored.
func MixDown(dst, src []float32, channels int) int {
	if channels <= 0 {
		return 0
	}

	frames := len(src) / channels
	if frames > len(dst) {
		frames = len(dst)
	}

	invChannels := float32(1.0) / float32(channels)

	// Unrolled loop for common cases
	switch channels {
	case 1:
		copy(dst[:frames], src[:frames])
	case 2: // Stereo (most common)
		for f := range frames {
			idx := f << 1 // f * 2
			dst[f] = (src[idx] + src[idx+1]) * 0.5
		}
	case 4: // Quad
		for f := range frames {
			idx := f << 2 // f * 4
			sum := src[idx] + src[idx+1] + src[idx+2] + src[idx+3]
			dst[f] = sum * 0.25
		}
	default:
		for f := range frames {
			sum := float32(0)
			baseIdx := f * channels
			for c := range channels {
				sum += src[baseIdx+c]
			}
			dst[f] = sum * invChannels
		}
	}

	return frames
}
