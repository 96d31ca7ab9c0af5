package utils

import (
	"fmt"
	"html"
	"math/rand"
	"strings"
	"time"
)

// GenerateChallanID builds a human-readable challan identifier:
// CHN-YYYYMMDD-<unix seconds>-<4 digit random>. The random tail keeps
// same-second collisions unlikely; intake still retries against the unique
// index rather than trusting the draw.
func GenerateChallanID(now time.Time) string {
	random := rand.Intn(9000) + 1000
	return fmt.Sprintf("CHN-%s-%d-%d", now.Format("20060102"), now.Unix(), random)
}

// SanitizeInput trims whitespace and escapes HTML metacharacters from
// user-supplied form values before they are stored or echoed back.
func SanitizeInput(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// FormatCurrency renders an amount as rupees with thousands separators,
// e.g. 1000 -> "₹ 1,000.00".
func FormatCurrency(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	intPart, fracPart, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("₹ %s%s.%s", sign, b.String(), fracPart)
}
