// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

// Float32ToInt16 clamps x to [-1,1] and scales it by 32767.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 on both sides keeps the conversion symmetric
	return int16(x * 32767.0)
}

// Int16ToFloat32 maps a signed 16-bit sample to [-1,1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// AppendS16LE appends samples to dst as interleaved signed 16-bit little
// endian PCM and returns the extended slice.
func AppendS16LE(dst []byte, samples []float32) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(Float32ToInt16(s)))
	}
	return dst
}

// DecodeS16LE converts little endian 16-bit PCM in src into dst and returns
// the number of samples written. A trailing odd byte is ignored.
func DecodeS16LE(dst []float32, src []byte) int {
	n := min(len(src)/2, len(dst))
	for i := range n {
		dst[i] = Int16ToFloat32(int16(binary.LittleEndian.Uint16(src[2*i:])))
	}
	return n
}
