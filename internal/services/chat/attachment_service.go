package chat

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	modelChat "orgchat/internal/models/chat"
	repoChat "orgchat/internal/repositories/chat"
	"orgchat/internal/storage"
)

type AttachmentService struct {
	Repo  repoChat.AttachmentRepository
	Store storage.Storage
}

func NewAttachmentService(repo repoChat.AttachmentRepository, store storage.Storage) *AttachmentService {
	return &AttachmentService{Repo: repo, Store: store}
}

type AttachmentInput struct {
	FileName string
	MimeType string
	Data     []byte
}

// AddToMessage uploads each attachment to the blob store and links the
// resulting references to the message. Uploads are scoped under the
// conversation-agnostic chat prefix; the store collaborator owns the bytes.
func (s *AttachmentService) AddToMessage(ctx context.Context, messageID, uploaderID string, inputs []AttachmentInput) ([]modelChat.MessageAttachment, error) {
	attachments := make([]modelChat.MessageAttachment, 0, len(inputs))

	for _, in := range inputs {
		path := fmt.Sprintf("chat/%s/%s_%s", messageID, uuid.New().String(), in.FileName)
		if err := s.Store.Save(ctx, path, bytes.NewReader(in.Data), in.MimeType); err != nil {
			return nil, err
		}
		url, err := s.Store.GetURL(ctx, path)
		if err != nil {
			return nil, err
		}

		attachments = append(attachments, modelChat.MessageAttachment{
			ID:          uuid.New().String(),
			MessageID:   messageID,
			UploaderID:  uploaderID,
			FileName:    in.FileName,
			MimeType:    in.MimeType,
			Size:        int64(len(in.Data)),
			URL:         url,
			StoragePath: path,
			CreatedAt:   time.Now(),
		})
	}

	if err := s.Repo.CreateMany(ctx, attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (s *AttachmentService) GetByMessageID(ctx context.Context, messageID string) ([]modelChat.MessageAttachment, error) {
	return s.Repo.GetByMessageID(ctx, messageID)
}

// DeleteByMessageID unlinks all attachment rows of a message. Blob cleanup
// is left to the store's retention policy.
func (s *AttachmentService) DeleteByMessageID(ctx context.Context, messageID string) error {
	return s.Repo.DeleteByMessageID(ctx, messageID)
}
