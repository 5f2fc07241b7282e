package tui

import (
	"fmt"
	"strconv"
	"strings"
)

// hexToRGB parses a "#RRGGBB" hex string into its components.
// Invalid input parses as black.
func hexToRGB(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v) //nolint:gosec // 24-bit value, shifts select single bytes
}

// InterpolateColor linearly interpolates between two hex colors.
// t ranges from 0.0 (from) to 1.0 (to).
func InterpolateColor(from, to string, t float64) string {
	r1, g1, b1 := hexToRGB(from)
	r2, g2, b2 := hexToRGB(to)
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + t*(float64(b)-float64(a)))
	}
	return fmt.Sprintf("#%02X%02X%02X", lerp(r1, r2), lerp(g1, g2), lerp(b1, b2))
}

// GenerateGradient creates n hex colors stepped evenly between two endpoints.
func GenerateGradient(from, to string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	if n == 1 {
		return []string{from}
	}
	colors := make([]string, n)
	for i := 0; i < n; i++ {
		colors[i] = InterpolateColor(from, to, float64(i)/float64(n-1))
	}
	return colors
}
