package document

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor reads a "#RGB" or "#RRGGBB" color.
func ParseColor(s string) (colorful.Color, error) {
	digits, ok := strings.CutPrefix(s, "#")
	if !ok || (len(digits) != 3 && len(digits) != 6) || strings.Trim(digits, "0123456789abcdefABCDEF") != "" {
		return colorful.Color{}, fmt.Errorf("color %q: want #RGB or #RRGGBB", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return c, nil
}

func ValidColor(s string) bool {
	_, err := ParseColor(s)
	return err == nil
}
