package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHasVector(t *testing.T) {
	assert.False(t, (&Article{}).HasVector())
	assert.True(t, (&Article{Vector: []float32{0.1}}).HasVector())
}

func TestIDsHexRoundTrip(t *testing.T) {
	ids := []primitive.ObjectID{
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
	}
	hex := IDsToHex(ids)
	require.Len(t, hex, 3)
	for _, h := range hex {
		assert.Len(t, h, 24)
	}

	back, err := IDsFromHex(hex)
	require.NoError(t, err)
	assert.Equal(t, ids, back)
}

func TestIDsFromHexMalformed(t *testing.T) {
	good := primitive.NewObjectID().Hex()

	_, err := IDsFromHex([]string{good, "not-a-hex-id"})
	assert.Error(t, err, "one malformed id fails the whole conversion")

	_, err = IDsFromHex([]string{good[:23]})
	assert.Error(t, err)
}

func TestIDsHexEmpty(t *testing.T) {
	hex := IDsToHex(nil)
	assert.Empty(t, hex)

	ids, err := IDsFromHex(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
