package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "suggestions:type-1:60:7", Key("type-1", 60, 7))

	// distinct inputs must never collide
	assert.NotEqual(t, Key("type-1", 60, 7), Key("type-1", 607, 0))
	assert.NotEqual(t, Key("type-1", 30, 7), Key("type-1", 60, 7))
	assert.NotEqual(t, Key("type-1", 60, 7), Key("type-2", 60, 7))
}
