package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBackoffDoublesUpToCap(t *testing.T) {
	d := initialBackoff
	var seen []time.Duration
	for i := 0; i < 7; i++ {
		d = nextBackoff(d)
		seen = append(seen, d)
	}
	assert.Equal(t, []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		maxBackoff,
		maxBackoff,
		maxBackoff,
	}, seen, "delay never overshoots the cap")
}
