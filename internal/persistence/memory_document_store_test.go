package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDocumentStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	id, err := store.Create(ctx, CollectionAdmins, Document{"username": "alice", "loginCount": 0, "id": "ignored"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.NotEqual(t, "ignored", id)

	doc, err := store.Get(ctx, CollectionAdmins, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID())
	assert.Equal(t, "alice", doc["username"])
	assert.Equal(t, float64(0), doc["loginCount"])

	require.NoError(t, store.Update(ctx, CollectionAdmins, id, Document{"loginCount": 3, "lastLogin": nil}))
	doc, err = store.Get(ctx, CollectionAdmins, id)
	require.NoError(t, err)
	assert.Equal(t, float64(3), doc["loginCount"])
	assert.Equal(t, "alice", doc["username"], "update must merge, not replace")
	assert.Contains(t, doc, "lastLogin")

	require.NoError(t, store.Delete(ctx, CollectionAdmins, id))
	_, err = store.Get(ctx, CollectionAdmins, id)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, store.Update(ctx, CollectionAdmins, id, Document{"x": 1}), ErrDocumentNotFound)
	assert.ErrorIs(t, store.Delete(ctx, CollectionAdmins, id), ErrDocumentNotFound)
}

func TestMemoryDocumentStoreFind(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	for _, s := range []string{"pending", "verified", "pending"} {
		_, err := store.Create(ctx, CollectionSubmissions, Document{"status": s, "emailSent": false})
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, CollectionRefunds, Document{"status": "pending"})
	require.NoError(t, err)

	pending, err := store.Find(ctx, CollectionSubmissions, Query{Where: map[string]any{"status": "pending"}})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	unsent, err := store.Find(ctx, CollectionSubmissions, Query{Where: map[string]any{"emailSent": false}})
	require.NoError(t, err)
	assert.Len(t, unsent, 3)

	all, err := store.FindAll(ctx, CollectionSubmissions)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "pending", all[0]["status"])
	assert.Equal(t, "verified", all[1]["status"])

	newest, err := store.Find(ctx, CollectionSubmissions, Query{NewestFirst: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, all[2].ID(), newest[0].ID())
	assert.Equal(t, all[1].ID(), newest[1].ID())

	none, err := store.Find(ctx, "unknown", Query{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryDocumentStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	id, err := store.Create(ctx, CollectionContacts, Document{"isRead": false})
	require.NoError(t, err)

	doc, err := store.Get(ctx, CollectionContacts, id)
	require.NoError(t, err)
	doc["isRead"] = true

	again, err := store.Get(ctx, CollectionContacts, id)
	require.NoError(t, err)
	assert.Equal(t, false, again["isRead"])
}
