package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLocation resolves the timezone used for daily usage buckets.
// Accepts IANA names ("Asia/Tokyo") and fixed offsets such as "UTC+9",
// "GMT-03:30" or "UTC+0530". Empty means UTC.
func ParseLocation(tz string) (*time.Location, error) {
	raw := strings.TrimSpace(tz)
	upper := strings.ToUpper(raw)
	switch upper {
	case "", "UTC", "GMT", "Z":
		return time.UTC, nil
	}

	for _, prefix := range []string{"UTC", "GMT"} {
		if rest, ok := strings.CutPrefix(upper, prefix); ok {
			return parseOffset(raw, rest)
		}
	}
	return time.LoadLocation(raw)
}

func parseOffset(orig, offset string) (*time.Location, error) {
	if offset == "" {
		return time.UTC, nil
	}
	sign := 1
	switch offset[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, fmt.Errorf("invalid UTC offset format: %q", orig)
	}
	offset = offset[1:]

	hourPart, minutePart := offset, ""
	if h, m, ok := strings.Cut(offset, ":"); ok {
		hourPart, minutePart = h, m
	} else if len(offset) == 4 {
		hourPart, minutePart = offset[:2], offset[2:]
	}

	hours, err := strconv.Atoi(hourPart)
	if err != nil || hours < 0 || hours > 14 {
		return nil, fmt.Errorf("invalid UTC offset hour in %q", orig)
	}
	minutes := 0
	if minutePart != "" {
		minutes, err = strconv.Atoi(minutePart)
		if err != nil || minutes < 0 || minutes >= 60 {
			return nil, fmt.Errorf("invalid UTC offset minute in %q", orig)
		}
	}

	seconds := sign * (hours*3600 + minutes*60)
	name := fmt.Sprintf("UTC%+03d:%02d", sign*hours, minutes)
	return time.FixedZone(name, seconds), nil
}
