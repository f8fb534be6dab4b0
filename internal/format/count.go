package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Count renders a star, fork or follower count compactly: 999, 1.2k, 45k,
// 1.3M. Values are rounded down so "1.0k" is never shown for 999.
func Count(n int) string {
	switch {
	case n < 0:
		return "-" + Count(-n)
	case n < 1000:
		return strconv.Itoa(n)
	case n < 1_000_000:
		return compact(n, 1000, "k")
	default:
		return compact(n, 1_000_000, "M")
	}
}

func compact(n, unit int, suffix string) string {
	if n >= 10*unit {
		return fmt.Sprintf("%d%s", n/unit, suffix)
	}
	tenths := n * 10 / unit
	s := fmt.Sprintf("%d.%d", tenths/10, tenths%10)
	return strings.TrimSuffix(s, ".0") + suffix
}
