package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/domain"
)

func TestMessageCreateAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice", "alice@example.com", false)
	bob := createTestUser(t, db, "bob", "bob@example.com", false)
	it := createTestItem(t, db, alice.ID)

	th, err := NewThreadRepo(db).Upsert(ctx, &domain.Thread{
		ItemID:    it.ID,
		CreatorID: alice.ID,
		ClaimerID: bob.ID,
	})
	require.NoError(t, err)

	msgs := NewMessageRepo(db)
	url := "/api/uploads/receipt.jpg"
	for _, m := range []*domain.Message{
		{ThreadID: th.ID, SenderID: bob.ID, Text: "is this yours?"},
		{ThreadID: th.ID, SenderID: alice.ID, Text: "yes, here is proof", AttachmentURL: &url},
		{ThreadID: th.ID, SenderID: bob.ID, Text: "great, come pick it up"},
	} {
		require.NoError(t, msgs.Create(ctx, m))
		require.NotZero(t, m.ID)
	}

	got, err := msgs.ListForThread(ctx, th.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "is this yours?", got[0].Text)
	assert.Equal(t, "yes, here is proof", got[1].Text)
	assert.Equal(t, "great, come pick it up", got[2].Text)
	require.NotNil(t, got[1].AttachmentURL)
	assert.Equal(t, url, *got[1].AttachmentURL)
	assert.Nil(t, got[0].AttachmentURL)

	empty, err := msgs.ListForThread(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
