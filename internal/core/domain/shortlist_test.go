package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortlistSetWithWithout(t *testing.T) {
	var s ShortlistSet
	assert.False(t, s.Contains("a"))

	s1 := s.With(PropertyListing{PropertyID: "a"}).With(PropertyListing{PropertyID: "b"})
	s2 := s1.With(PropertyListing{PropertyID: "a"})
	assert.Equal(t, 2, s2.Len())
	assert.True(t, s2.Contains("a"))

	s3 := s2.Without("a")
	assert.False(t, s3.Contains("a"))
	assert.True(t, s2.Contains("a"), "previous value must stay intact")
	assert.Equal(t, []PropertyListing{{PropertyID: "b"}}, s3.Items())
}

func TestNewShortlistSetDropsDuplicates(t *testing.T) {
	s := NewShortlistSet([]PropertyListing{{PropertyID: "a"}, {PropertyID: "b"}, {PropertyID: "a", City: "Pune"}})
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "Pune", s.Items()[0].City)
}

func TestShortlistSetJSON(t *testing.T) {
	s := NewShortlistSet([]PropertyListing{{PropertyID: "a"}, {PropertyID: "b"}})
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored ShortlistSet
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.True(t, restored.Contains("b"))
	assert.Equal(t, 2, restored.Len())
}
