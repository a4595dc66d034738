package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"lostfound/internal/authz"
	"lostfound/internal/blob"
	"lostfound/internal/domain"
	"lostfound/internal/security"
)

// MaxMessageLength bounds a single message's text.
const MaxMessageLength = 5000

// Broadcaster pushes a payload to the given users' live connections.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastToUsers(userIDs []int64, payload any)
}

// ChatService is the per-item message channel: an append-only log
// shared by the item's creator, its claimant, and the admin.
type ChatService struct {
	items     domain.ItemRepository
	threads   domain.ThreadRepository
	messages  domain.MessageRepository
	users     domain.UserRepository
	encryptor *security.Encryptor
	blobs     blob.Store
	hub       Broadcaster
}

func NewChatService(
	items domain.ItemRepository,
	threads domain.ThreadRepository,
	messages domain.MessageRepository,
	users domain.UserRepository,
	encryptor *security.Encryptor,
	blobs blob.Store,
	hub Broadcaster,
) *ChatService {
	return &ChatService{
		items:     items,
		threads:   threads,
		messages:  messages,
		users:     users,
		encryptor: encryptor,
		blobs:     blobs,
		hub:       hub,
	}
}

type AppendInput struct {
	ItemID   int64
	Text     string
	File     io.Reader // optional attachment payload
	Filename string
}

// Append adds a message to the item's thread. The item must be
// claimed; access is participant-or-admin; at least one of text and
// attachment is required. The attachment payload goes to the blob
// store and only its URL is kept.
func (s *ChatService) Append(ctx context.Context, caller *domain.User, in AppendInput) (*MessageResponse, error) {
	thread, err := s.threadFor(ctx, caller, in.ItemID)
	if err != nil {
		return nil, err
	}

	if len([]rune(in.Text)) > MaxMessageLength {
		return nil, domain.ErrInvalidInput
	}
	if in.Text == "" && in.File == nil {
		return nil, domain.ErrInvalidInput
	}

	var attachmentURL *string
	if in.File != nil {
		url, err := s.blobs.Save(in.File, in.Filename)
		if err != nil {
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		attachmentURL = &url
	}

	encrypted, err := s.encryptor.Encrypt(in.Text)
	if err != nil {
		return nil, fmt.Errorf("encrypt text: %w", err)
	}

	msg := &domain.Message{
		ThreadID:      thread.ID,
		SenderID:      caller.ID,
		Text:          encrypted,
		AttachmentURL: attachmentURL,
		CreatedAt:     time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	resp := s.toResponse(ctx, msg, in.ItemID)
	s.broadcast(ctx, thread, resp)
	return resp, nil
}

// List returns the thread's messages in creation order with sender
// names resolved and text decrypted.
func (s *ChatService) List(ctx context.Context, caller *domain.User, itemID int64) ([]*MessageResponse, error) {
	thread, err := s.threadFor(ctx, caller, itemID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListForThread(ctx, thread.ID)
	if err != nil {
		return nil, err
	}

	res := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, s.toResponse(ctx, m, itemID))
	}
	return res, nil
}

// threadFor loads the item, checks it is claimed, runs the access
// decision, and materializes the thread (recreating it if claim-time
// creation failed, refreshing the claimant after a re-claim).
func (s *ChatService) threadFor(ctx context.Context, caller *domain.User, itemID int64) (*domain.Thread, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	if it.ClaimedBy == nil {
		// Chat opens when the item is claimed, not before.
		return nil, domain.ErrInvalidInput
	}

	// Access follows the item's current state, so after an unclaim and
	// re-claim the chat belongs to the new claimant, not the old one.
	if err := authz.CanAccessChat(caller, it); err != nil {
		return nil, err
	}

	return s.threads.Upsert(ctx, &domain.Thread{
		ItemID:    it.ID,
		CreatorID: it.CreatedBy,
		ClaimerID: *it.ClaimedBy,
	})
}

// broadcast pushes the new message to both participants and the admin.
func (s *ChatService) broadcast(ctx context.Context, thread *domain.Thread, resp *MessageResponse) {
	if s.hub == nil {
		return
	}
	ids := []int64{thread.CreatorID, thread.ClaimerID}
	if admin, err := s.users.GetAdmin(ctx); err == nil && admin != nil {
		ids = append(ids, admin.ID)
	} else if err != nil {
		log.Printf("resolve admin for broadcast: %v", err)
	}
	s.hub.BroadcastToUsers(ids, map[string]any{
		"type":    "message",
		"message": resp,
	})
}

// MessageResponse is the API shape for a chat message.
type MessageResponse struct {
	ID             int64     `json:"id"`
	ItemID         int64     `json:"item_id"`
	SenderID       int64     `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Text           string    `json:"text"`
	AttachmentURL  *string   `json:"attachment_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *ChatService) toResponse(ctx context.Context, m *domain.Message, itemID int64) *MessageResponse {
	text := m.Text
	if dec, err := s.encryptor.Decrypt(m.Text); err == nil {
		text = dec
	}
	var username string
	if u, err := s.users.GetByID(ctx, m.SenderID); err == nil && u != nil {
		username = u.Username
	}
	return &MessageResponse{
		ID:             m.ID,
		ItemID:         itemID,
		SenderID:       m.SenderID,
		SenderUsername: username,
		Text:           text,
		AttachmentURL:  m.AttachmentURL,
		CreatedAt:      m.CreatedAt,
	}
}
