package chart

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatTick renders an axis timestamp with a layout matching the range.
func FormatTick(ms int64, g Granularity, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t := time.UnixMilli(ms).In(loc)
	switch g {
	case GranularityMinute:
		return t.Format("15:04:05")
	case GranularityHour, GranularityFourHours:
		return t.Format("15:04")
	case GranularityDay:
		return t.Format("02.01, 15")
	default:
		return t.Format("02.01, 15:04")
	}
}

// FormatPrice renders a price the way Polish listings show it, e.g.
// "1299 zł", "12 500 zł", "49,99 zł".
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "- zł"
	}
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	// pl-PL groups thousands only from five integer digits up.
	if len(intPart) > 4 {
		var b strings.Builder
		for i, r := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteRune('\u00a0')
			}
			b.WriteRune(r)
		}
		intPart = b.String()
	}
	if frac != "" {
		intPart += "," + frac
	}
	return sign + intPart + " zł"
}
