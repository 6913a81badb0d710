package gallery

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// DateLayout renders capture times for display.
const DateLayout = "January 2, 2006 at 03:04 PM"

// sizeUnits are 1024 apart. Counts past the last unit stay in GB.
var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count in 1024-based units rounded to two
// decimals without trailing zeros ("0 B", "1.46 KB", "5 MB").
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return humanize.Ftoa(math.Round(value*100)/100) + " " + sizeUnits[unit]
}

// FormatDate renders a millisecond epoch timestamp in loc.
func FormatDate(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(DateLayout)
}
