package layer

import (
	"fmt"
	"image/color"
	"strconv"
)

// ParseHex converts a #rgb, #rgba, #rrggbb or #rrggbbaa string to a color.
func ParseHex(s string) (color.NRGBA, error) {
	if !IsHexColor(s) {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	digits := s[1:]
	if len(digits) == 3 || len(digits) == 4 {
		expanded := make([]byte, 0, len(digits)*2)
		for i := 0; i < len(digits); i++ {
			expanded = append(expanded, digits[i], digits[i])
		}
		digits = string(expanded)
	}
	if len(digits) == 6 {
		digits += "ff"
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as #RRGGBB, dropping alpha.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}
