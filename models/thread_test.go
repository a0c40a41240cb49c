package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comment(id string, parentID *string) ForumComment {
	return ForumComment{ID: id, ParentID: parentID}
}

func ptr(s string) *string { return &s }

func TestBuildThreadPartition(t *testing.T) {
	flat := []ForumComment{
		comment("1", nil),
		comment("2", ptr("1")),
		comment("3", nil),
		comment("4", ptr("3")),
	}

	roots := BuildThread(flat)

	require.Len(t, roots, 2)
	assert.Equal(t, "1", roots[0].ID)
	assert.Equal(t, "3", roots[1].ID)

	require.Len(t, roots[0].Replies, 1)
	assert.Equal(t, "2", roots[0].Replies[0].ID)

	require.Len(t, roots[1].Replies, 1)
	assert.Equal(t, "4", roots[1].Replies[0].ID)
}

func TestBuildThreadDeepNesting(t *testing.T) {
	flat := []ForumComment{
		comment("a", nil),
		comment("b", ptr("a")),
		comment("c", ptr("b")),
	}

	roots := BuildThread(flat)

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Replies, 1)
	require.Len(t, roots[0].Replies[0].Replies, 1)
	assert.Equal(t, "c", roots[0].Replies[0].Replies[0].ID)
}

func TestBuildThreadMissingParentBecomesRoot(t *testing.T) {
	flat := []ForumComment{
		comment("1", nil),
		comment("2", ptr("deleted")),
	}

	roots := BuildThread(flat)

	require.Len(t, roots, 2)
	assert.Equal(t, "2", roots[1].ID)
	assert.Empty(t, roots[1].Replies)
}

func TestBuildThreadPreservesInputOrder(t *testing.T) {
	flat := []ForumComment{
		comment("r2", nil),
		comment("r1", nil),
		comment("c3", ptr("r1")),
		comment("c1", ptr("r1")),
		comment("c2", ptr("r1")),
	}

	roots := BuildThread(flat)

	require.Len(t, roots, 2)
	assert.Equal(t, "r2", roots[0].ID)
	assert.Equal(t, "r1", roots[1].ID)

	require.Len(t, roots[1].Replies, 3)
	assert.Equal(t, "c3", roots[1].Replies[0].ID)
	assert.Equal(t, "c1", roots[1].Replies[1].ID)
	assert.Equal(t, "c2", roots[1].Replies[2].ID)
}

func TestBuildThreadEmptyInput(t *testing.T) {
	assert.Empty(t, BuildThread(nil))
	assert.Empty(t, BuildThread([]ForumComment{}))
}

func TestBuildThreadDoesNotMutateInput(t *testing.T) {
	flat := []ForumComment{
		comment("1", nil),
		comment("2", ptr("1")),
	}
	BuildThread(flat)
	assert.Nil(t, flat[0].ParentID)
	assert.Equal(t, "1", *flat[1].ParentID)
}

func TestMarkLiked(t *testing.T) {
	flat := []ForumComment{
		comment("1", nil),
		comment("2", ptr("1")),
		comment("3", nil),
	}
	roots := BuildThread(flat)

	MarkLiked(roots, map[string]bool{"2": true})

	assert.False(t, roots[0].IsLiked)
	assert.True(t, roots[0].Replies[0].IsLiked)
	assert.False(t, roots[1].IsLiked)
}
