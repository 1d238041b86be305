package dbtypes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDArrayRoundTrip(t *testing.T) {
	ids := UUIDArray{uuid.New(), uuid.New()}
	v, err := ids.Value()
	require.NoError(t, err)

	var back UUIDArray
	require.NoError(t, back.Scan(v))
	assert.Equal(t, ids, back)
	assert.True(t, back.Contains(ids[1]))
	assert.False(t, back.Contains(uuid.New()))
}

func TestUUIDArrayScanEdgeCases(t *testing.T) {
	var a UUIDArray
	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)

	require.NoError(t, a.Scan([]byte("{}")))
	assert.Empty(t, a)

	id := uuid.New()
	require.NoError(t, a.Scan("{"+id.String()+"}"))
	assert.Equal(t, UUIDArray{id}, a)

	assert.Error(t, a.Scan("{not-a-uuid}"))
	assert.Error(t, a.Scan(42))
}

func TestEmptyUUIDArrayValue(t *testing.T) {
	v, err := UUIDArray{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}
