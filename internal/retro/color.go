package retro

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
)

// UserColor derives a light background colour from a user name. The hash is
// computed over UTF-16 code units with 32-bit wraparound so that browser
// clients deriving the same colour locally agree with the server.
func UserColor(name string) string {
	hue, saturation, lightness := colorComponents(name)

	return formatHSL(hue, saturation, lightness)
}

// UserColorDark is UserColor with lightness lowered by 10 points, floored at 70.
func UserColorDark(name string) string {
	hue, saturation, lightness := colorComponents(name)

	return formatHSL(hue, saturation, max(70, lightness-10))
}

// Initials returns up to two upper-cased initials from space separated words.
func Initials(name string) string {
	words := strings.Split(name, " ")
	if len(words) > 2 {
		words = words[:2]
	}

	var b strings.Builder
	for _, word := range words {
		for _, r := range word {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}

	return b.String()
}

func colorComponents(name string) (hue, saturation, lightness int64) {
	var hash int32
	for _, unit := range utf16.Encode([]rune(name)) {
		hash = hash*31 + int32(unit)
	}

	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}

	return abs % 360, 65 + abs%20, 85 + abs%10
}

func formatHSL(hue, saturation, lightness int64) string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", hue, saturation, lightness)
}
