package repositories

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkIDsRespectsBatchLimit(t *testing.T) {
	ids := make([]string, 65)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%d", i)
	}

	chunks := chunkIDs(ids)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], maxIDBatch)
	assert.Len(t, chunks[1], maxIDBatch)
	assert.Len(t, chunks[2], 5)

	// Order is preserved across chunks.
	assert.Equal(t, "id-0", chunks[0][0])
	assert.Equal(t, "id-30", chunks[1][0])
	assert.Equal(t, "id-64", chunks[2][4])
}

func TestChunkIDsEmptyInput(t *testing.T) {
	assert.Nil(t, chunkIDs(nil))
	assert.Len(t, chunkIDs([]string{"a"}), 1)
}
