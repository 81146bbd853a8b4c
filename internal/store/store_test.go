package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrips(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	doc := Document{
		Topic:     "solar tariffs",
		Query:     "what is the solar tariff in Vietnam",
		Content:   "findings...",
		Sources:   []string{"https://example.com/a"},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	id, err := s.Save(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	loaded, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, doc.Topic, loaded.Topic)
	assert.Equal(t, doc.Content, loaded.Content)
}

func TestSave_SameInputsAtSameTimeProduceSameID(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id1 := ComputeID("topic", "query", ts)
	id2 := ComputeID("topic", "query", ts)
	assert.Equal(t, id1, id2)

	id3 := ComputeID("topic", "different query", ts)
	assert.NotEqual(t, id1, id3)
}

func TestList_ReturnsNewestFirst(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	older := Document{Topic: "a", Query: "a", Content: "a", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := Document{Topic: "b", Query: "b", Content: "b", CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	_, err = s.Save(older)
	require.NoError(t, err)
	_, err = s.Save(newer)
	require.NoError(t, err)

	docs, err := s.List()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].Topic)
	assert.Equal(t, "a", docs[1].Topic)
}

func TestSave_RequiresCreatedAt(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Save(Document{Topic: "a", Query: "a"})
	assert.Error(t, err)
}
