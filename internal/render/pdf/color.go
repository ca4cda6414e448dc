package pdf

import (
	"fmt"
	"strconv"
	"strings"
)

var namedColors = map[string][3]int{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"orange":  {255, 165, 0},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"silver":  {192, 192, 192},
	"navy":    {0, 0, 128},
	"maroon":  {128, 0, 0},
	"purple":  {128, 0, 128},
	"teal":    {0, 128, 128},
	"olive":   {128, 128, 0},
	"lime":    {0, 255, 0},
	"aqua":    {0, 255, 255},
	"fuchsia": {255, 0, 255},
}

// parseColor parses a CSS color value. Unknown values are black.
func parseColor(value string) [3]int {
	value = strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(value, "#") {
		if r, g, b, ok := parseHexColor(value); ok {
			return [3]int{r, g, b}
		}
	}
	if c, ok := namedColors[value]; ok {
		return c
	}

	var r, g, b int
	compact := strings.ReplaceAll(value, " ", "")
	if _, err := fmt.Sscanf(compact, "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return [3]int{clamp(r), clamp(g), clamp(b)}
	}
	return [3]int{0, 0, 0}
}

func clamp(v int) int {
	return max(0, min(255, v))
}

// parseHexColor parses #RRGGBB or #RGB into r,g,b
func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
