package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_intervalDefaults(t *testing.T) {
	s := New(nil, 0)
	assert.Equal(t, DefaultInterval, s.Interval())
}

func TestNew_intervalClampedToMinimum(t *testing.T) {
	s := New(nil, time.Second)
	assert.Equal(t, MinInterval, s.Interval())
}

func TestNew_intervalKept(t *testing.T) {
	s := New(nil, 10*time.Minute)
	assert.Equal(t, 10*time.Minute, s.Interval())
}
