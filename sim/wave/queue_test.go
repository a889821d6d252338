package wave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameQueue_FIFOAndLimit(t *testing.T) {
	q := frameQueue{limit: 2}
	assert.Nil(t, q.Dequeue())

	assert.True(t, q.Enqueue(&Packet{ID: 1}))
	assert.True(t, q.Enqueue(&Packet{ID: 2}))
	assert.False(t, q.Enqueue(&Packet{ID: 3}), "full at the limit")
	assert.Equal(t, "[1 2]", q.String())

	assert.Equal(t, 1, int(q.Dequeue().ID))
	assert.True(t, q.Enqueue(&Packet{ID: 4}))
	assert.Equal(t, "[2 4]", q.String())
	assert.Equal(t, 2, q.Len())
}

func TestFrameQueue_Unlimited(t *testing.T) {
	var q frameQueue
	for i := 0; i < 1000; i++ {
		assert.True(t, q.Enqueue(&Packet{}))
	}
	assert.Equal(t, 1000, q.Len())
}
