// Package formatting parses and renders byte sizes and decodes JSON returned by
// language models.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// unitShift maps a unit prefix to its power of 1024.
var unitShift = map[string]int{"": 0, "K": 1, "M": 2, "G": 3, "T": 4, "P": 5, "E": 6}

// FormatBytes renders n using base-1024 units. Whole bytes are always rendered
// without a fraction; negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := float64(n)
	idx := 0
	for size >= 1024 && idx < len(sizeUnits)-1 {
		size /= 1024
		idx++
	}

	if idx == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + sizeUnits[idx]
}

// ParseBytes parses a size such as "10MB", "512 KiB" or "1.5g" into a byte count.
// All units are base-1024; IEC spellings (KiB, MiB) and a bare unit letter are accepted.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, unicode.IsLetter)
	if split == -1 {
		split = len(s)
	}
	number := strings.TrimSpace(s[:split])

	if number == "" || number[0] == '-' || number[0] == '+' {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number %q: %w", number, err)
	}

	shift, ok := unitShift[unitPrefix(s[split:])]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", s[split:])
	}

	return int64(value * float64(int64(1)<<(10*shift))), nil
}

// unitPrefix reduces "KiB", "kb" or "k" to "K"; a bare "B" reduces to "".
func unitPrefix(u string) string {
	u = strings.ToUpper(u)
	u = strings.TrimSuffix(u, "B")
	u = strings.TrimSuffix(u, "I")
	return u
}
