package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{999 * time.Millisecond, "00:00"},
		{59_999 * time.Millisecond, "00:59"},
		{61 * time.Second, "01:01"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "1:00:00"},
		{61 * time.Minute, "1:01:00"},
		{10*time.Hour + 5*time.Second + 500*time.Millisecond, "10:00:05"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.in), "FormatTime(%s)", tt.in)
	}
}
