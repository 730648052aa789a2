// Package format holds the small, pure display helpers shared by the console
// and dashboard front ends.
package format

import (
	"fmt"
	"time"
)

// subSecondUnits are the display units below one second, finest first.
// The first terms of a sequence finish in nanoseconds, the last ones of a
// naive run in seconds, so one run usually spans several of them.
var subSecondUnits = []struct {
	size   time.Duration
	suffix string
}{
	{time.Nanosecond, "ns"},
	{time.Microsecond, "µs"},
	{time.Millisecond, "ms"},
}

// FormatExecutionDuration renders d truncated to the largest sub-second unit
// it reaches, or rounded to the millisecond from one second on. Negative
// durations render as zero.
func FormatExecutionDuration(d time.Duration) string {
	if d >= time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < 0 {
		d = 0
	}
	unit := subSecondUnits[0]
	for _, u := range subSecondUnits[1:] {
		if d >= u.size {
			unit = u
		}
	}
	return fmt.Sprintf("%d%s", d/unit.size, unit.suffix)
}
