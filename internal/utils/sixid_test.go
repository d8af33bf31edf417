package utils

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSixID_StringRoundtrip(t *testing.T) {
	id := NewSixID()
	s := id.String()
	assert.Len(t, s, 10)

	parsed, err := ParseSixID(s)
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestSixID_Uniqueness(t *testing.T) {
	seen := make(map[SixID]bool)
	for i := 0; i < 1000; i++ {
		id := NewSixID()
		assert.False(t, seen[id], "duplicate SixID generated: %s", id)
		seen[id] = true
	}
}

func TestParseSixID_Tolerant(t *testing.T) {
	id := NewSixID()
	s := id.String()

	// Hyphens and spaces are stripped before decoding.
	spaced := s[:5] + "-" + s[5:]
	parsed, err := ParseSixID(spaced)
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseSixID_Invalid(t *testing.T) {
	_, err := ParseSixID("")
	assert.Error(t, err)

	_, err = ParseSixID("TOOSHORT")
	assert.Error(t, err)

	// U is not in the Crockford alphabet.
	_, err = ParseSixID("UUUUUUUUUU")
	assert.Error(t, err)
}

func TestParseSixID_Canonical(t *testing.T) {
	id := NewSixID()
	s := id.String()

	// Only the low 3 bits of the final character are part of the ID, so a
	// canonical encoding always ends on an alphabet index below 8. Flipping
	// one of the unused high bits would decode to the same bytes; such
	// strings are rejected instead of silently aliasing.
	lastIdx := strings.IndexByte(crockfordAlphabet, s[9])
	assert.Less(t, lastIdx, 8)

	aliased := s[:9] + string(crockfordAlphabet[lastIdx+8])
	_, err := ParseSixID(aliased)
	assert.Error(t, err)
}

func TestSixID_IsZero(t *testing.T) {
	var zero SixID
	assert.True(t, zero.IsZero())
	assert.False(t, NewSixID().IsZero())
}

func TestSixID_JSONRoundtrip(t *testing.T) {
	id := NewSixID()

	data, err := json.Marshal(id)
	assert.NoError(t, err)
	assert.JSONEq(t, `"`+id.String()+`"`, string(data))

	var decoded SixID
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestSixID_BSONRoundtrip(t *testing.T) {
	type doc struct {
		ID SixID `bson:"_id"`
	}
	original := doc{ID: NewSixID()}

	data, err := bson.Marshal(original)
	assert.NoError(t, err)

	var decoded doc
	assert.NoError(t, bson.Unmarshal(data, &decoded))
	assert.Equal(t, original.ID, decoded.ID)
}
