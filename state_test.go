package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "CREATED", CREATED.String())
	assert.Equal(t, "STARTED", STARTED.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}

func TestStateNext(t *testing.T) {
	next, ok := CREATED.Next()
	assert.True(t, ok)
	assert.Equal(t, INITIALIZED, next)

	next, ok = STARTED.Next()
	assert.True(t, ok)
	assert.Equal(t, STOPPED, next)

	_, ok = STOPPED.Next()
	assert.False(t, ok)
}

func TestStateAtLeast(t *testing.T) {
	assert.True(t, STARTED.atLeast(INITIALIZED))
	assert.True(t, STARTED.atLeast(STARTED))
	assert.False(t, CREATED.atLeast(RESOLVED))
}
