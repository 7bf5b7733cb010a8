package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrTo(t *testing.T) {
	assert.Equal(t, int64(9007199254740993), StrTo("9007199254740993").MustInt64())
	assert.Equal(t, 0, StrTo("x").MustInt())

	v, ok, err := StrTo("").OptionalInt64()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, v)

	_, _, err = StrTo("abc").OptionalInt64()
	assert.Error(t, err)
}

func TestStructAssign(t *testing.T) {
	type src struct {
		ID   int64
		Tags []string
	}
	type dst struct {
		ID   int64
		Tags []string
	}
	in := src{ID: 3, Tags: []string{"a"}}
	var out dst
	require.NoError(t, StructAssign(&in, &out))
	assert.Equal(t, int64(3), out.ID)

	in.Tags[0] = "b"
	assert.Equal(t, "a", out.Tags[0])
}
