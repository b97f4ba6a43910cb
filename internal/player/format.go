package player

import (
	"fmt"
	"time"
)

// FormatTime renders a position as mm:ss, or h:mm:ss from one hour up.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	d = d.Truncate(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
