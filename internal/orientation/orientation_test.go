package orientation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutLock(t *testing.T) {
	var seen []Orientation
	l := NewLayout(func(o Orientation) { seen = append(seen, o) })
	assert.Equal(t, Portrait, l.Current())

	assert.NoError(t, l.Lock(context.Background(), Landscape))
	assert.NoError(t, l.Lock(context.Background(), Landscape))
	assert.NoError(t, l.Lock(context.Background(), Portrait))

	assert.Equal(t, []Orientation{Landscape, Portrait}, seen)
	assert.Equal(t, Portrait, l.Current())
}

func TestLayoutClosedAndCancelled(t *testing.T) {
	l := NewLayout(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Lock(ctx, Landscape), context.Canceled)
	assert.Equal(t, Portrait, l.Current())

	l.Close()
	assert.ErrorIs(t, l.Lock(context.Background(), Landscape), ErrClosed)
}

func TestOrientationString(t *testing.T) {
	assert.Equal(t, "portrait", Portrait.String())
	assert.Equal(t, "landscape", Landscape.String())
}
