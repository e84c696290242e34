package kis2

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	dayTimeRe = regexp.MustCompile(`^(\d+)\s+(\d{2}):(\d{2}):(\d{2})$`)
	timeRe    = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)
	isoRe     = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
)

// ToISO8601 converts the source system's duration notation, either
// "1 01:03:00" (days hours:minutes:seconds) or "00:00:00", into ISO 8601
// text such as "P1DT1H3M0S" or "PT0H0M0S". Unknown notation yields "".
func ToISO8601(s string) string {
	if m := dayTimeRe.FindStringSubmatch(s); m != nil {
		d, h, mi, sec := atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4])
		return fmt.Sprintf("P%dDT%dH%dM%dS", d, h, mi, sec)
	}
	if m := timeRe.FindStringSubmatch(s); m != nil {
		h, mi, sec := atoi(m[1]), atoi(m[2]), atoi(m[3])
		return fmt.Sprintf("PT%dH%dM%dS", h, mi, sec)
	}
	return ""
}

// ParseISODuration parses an ISO 8601 duration of the PnDTnHnMnS family
// into a time.Duration. The second result is false when the input is empty
// or malformed; callers treat that as a zero duration, not an error.
func ParseISODuration(s string) (time.Duration, bool) {
	m := isoRe.FindStringSubmatch(s)
	if m == nil || s == "P" {
		return 0, false
	}
	d := time.Duration(atoi(m[1])) * 24 * time.Hour
	d += time.Duration(atoi(m[2])) * time.Hour
	d += time.Duration(atoi(m[3])) * time.Minute
	d += time.Duration(atoi(m[4])) * time.Second
	return d, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
