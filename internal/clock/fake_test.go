package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFake_NowAndAdvance(t *testing.T) {
	c := Fake(epoch)
	assert.Equal(t, epoch, c.Now())

	c.Advance(90 * time.Minute)
	assert.Equal(t, epoch.Add(90*time.Minute), c.Now())
}

func TestFake_Set(t *testing.T) {
	c := Fake(epoch)
	later := epoch.Add(48 * time.Hour)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestFake_TickerFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Hour)
	defer tk.Stop()

	c.Advance(30 * time.Minute)
	select {
	case <-tk.C:
		t.Fatal("ticker fired before its deadline")
	default:
	}

	c.Advance(30 * time.Minute)
	select {
	case got := <-tk.C:
		assert.Equal(t, epoch.Add(time.Hour), got)
	default:
		t.Fatal("ticker did not fire at its deadline")
	}
}

func TestFake_TickerDropsWhenFull(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Minute)
	defer tk.Stop()

	c.Advance(5 * time.Minute)

	require.Len(t, tk.C, 1)
	got := <-tk.C
	assert.Equal(t, epoch.Add(time.Minute), got)
}

func TestFake_StoppedTickerDoesNotFire(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(time.Minute)
	tk.Stop()

	c.Advance(time.Hour)
	select {
	case <-tk.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFake_NewTickerPanicsOnNonPositive(t *testing.T) {
	c := Fake(epoch)
	assert.Panics(t, func() { c.NewTicker(0) })
}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	assert.False(t, got.Before(before))
}
