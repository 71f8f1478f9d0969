package chat

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"orgchat/internal/models"
	modelChat "orgchat/internal/models/chat"
)

// In-memory repository fakes mirroring the conflict semantics of the
// postgres-backed implementations: unique keys, idempotent inserts,
// upsert-by-key, gorm.ErrRecordNotFound on misses.

type fakeConversationRepo struct {
	mu   sync.Mutex
	rows map[string]*modelChat.Conversation

	members *fakeMemberRepo // set when FindAllByUser is needed
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{rows: map[string]*modelChat.Conversation{}}
}

func (f *fakeConversationRepo) Create(_ context.Context, conv *modelChat.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *conv
	f.rows[conv.ID] = &cp
	return nil
}

func (f *fakeConversationRepo) CreateIfAbsent(_ context.Context, conv *modelChat.Conversation) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if conv.DirectKey != nil && existing.DirectKey != nil && *conv.DirectKey == *existing.DirectKey {
			return false, nil
		}
		if conv.OrgWideKey != nil && existing.OrgWideKey != nil && *conv.OrgWideKey == *existing.OrgWideKey {
			return false, nil
		}
	}
	cp := *conv
	f.rows[conv.ID] = &cp
	return true, nil
}

func (f *fakeConversationRepo) FindByID(_ context.Context, id string) (*modelChat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conv, ok := f.rows[id]; ok {
		cp := *conv
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConversationRepo) FindByDirectKey(_ context.Context, key string) (*modelChat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.rows {
		if conv.DirectKey != nil && *conv.DirectKey == key {
			cp := *conv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConversationRepo) FindByOrgWideKey(_ context.Context, orgID string) (*modelChat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.rows {
		if conv.OrgWideKey != nil && *conv.OrgWideKey == orgID {
			cp := *conv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConversationRepo) FindAllByUser(_ context.Context, userID string) ([]modelChat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelChat.Conversation
	for _, conv := range f.rows {
		if f.members != nil && !f.members.has(conv.ID, userID) {
			continue
		}
		out = append(out, *conv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeConversationRepo) UpdateAdminIDs(_ context.Context, conversationID string, adminIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.rows[conversationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conv.AdminIDs = append([]string{}, adminIDs...)
	return nil
}

func (f *fakeConversationRepo) Delete(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, conversationID)
	return nil
}

type fakeMemberRepo struct {
	mu   sync.Mutex
	rows []modelChat.ConversationMember
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{}
}

func (f *fakeMemberRepo) has(conversationID, userID string) bool {
	for _, m := range f.rows {
		if m.ConversationID == conversationID && m.UserID == userID {
			return true
		}
	}
	return false
}

func (f *fakeMemberRepo) Add(_ context.Context, member *modelChat.ConversationMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.has(member.ConversationID, member.UserID) {
		return nil
	}
	f.rows = append(f.rows, *member)
	return nil
}

func (f *fakeMemberRepo) CreateMany(_ context.Context, members []modelChat.ConversationMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		if !f.has(m.ConversationID, m.UserID) {
			f.rows = append(f.rows, m)
		}
	}
	return nil
}

func (f *fakeMemberRepo) IsMember(_ context.Context, userID, conversationID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.has(conversationID, userID), nil
}

func (f *fakeMemberRepo) GetMembers(_ context.Context, conversationID string) ([]modelChat.ConversationMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelChat.ConversationMember
	for _, m := range f.rows {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) DeleteByConversation(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, m := range f.rows {
		if m.ConversationID != conversationID {
			kept = append(kept, m)
		}
	}
	f.rows = kept
	return nil
}

type fakeMessageRepo struct {
	mu   sync.Mutex
	rows map[string]*modelChat.Message

	reactions *fakeReactionRepo // preloaded into FindByID when set
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{rows: map[string]*modelChat.Message{}}
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *modelChat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *msg
	f.rows[msg.ID] = &cp
	return nil
}

func (f *fakeMessageRepo) get(id string) (*modelChat.Message, bool) {
	msg, ok := f.rows[id]
	return msg, ok
}

func (f *fakeMessageRepo) FindByID(_ context.Context, id string) (*modelChat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.get(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *msg
	if f.reactions != nil {
		cp.Reactions = f.reactions.byMessage(id)
	}
	return &cp, nil
}

func (f *fakeMessageRepo) GetByConversation(_ context.Context, conversationID string) ([]modelChat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelChat.Message
	for _, msg := range f.rows {
		if msg.ConversationID == conversationID {
			cp := *msg
			if f.reactions != nil {
				cp.Reactions = f.reactions.byMessage(msg.ID)
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMessageRepo) LatestInConversation(_ context.Context, conversationID string) (*modelChat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *modelChat.Message
	for _, msg := range f.rows {
		if msg.ConversationID != conversationID {
			continue
		}
		if latest == nil || msg.CreatedAt.After(latest.CreatedAt) {
			latest = msg
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeMessageRepo) AppendDeletedFor(_ context.Context, messageID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.get(messageID)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, id := range msg.DeletedFor {
		if id == userID {
			return nil
		}
	}
	msg.DeletedFor = append(msg.DeletedFor, userID)
	return nil
}

func (f *fakeMessageRepo) Tombstone(_ context.Context, messageID, deletedBy, tombstoneText string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.get(messageID)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	msg.Content = tombstoneText
	msg.DeletedAt = &at
	msg.DeletedBy = &deletedBy
	return nil
}

func (f *fakeMessageRepo) DeleteByConversation(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, msg := range f.rows {
		if msg.ConversationID == conversationID {
			delete(f.rows, id)
		}
	}
	return nil
}

type fakeReactionRepo struct {
	mu   sync.Mutex
	rows []modelChat.MessageReaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{}
}

func (f *fakeReactionRepo) byMessage(messageID string) []modelChat.MessageReaction {
	var out []modelChat.MessageReaction
	for _, r := range f.rows {
		if r.MessageID == messageID {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeReactionRepo) Add(_ context.Context, reaction *modelChat.MessageReaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.MessageID == reaction.MessageID && r.UserID == reaction.UserID && r.Emoji == reaction.Emoji {
			return false, nil
		}
	}
	f.rows = append(f.rows, *reaction)
	return true, nil
}

func (f *fakeReactionRepo) Remove(_ context.Context, userID, messageID, emoji string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	removed := false
	for _, r := range f.rows {
		if r.MessageID == messageID && r.UserID == userID && r.Emoji == emoji {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return removed, nil
}

func (f *fakeReactionRepo) Exists(_ context.Context, userID, messageID, emoji string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.MessageID == messageID && r.UserID == userID && r.Emoji == emoji {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReactionRepo) GetByMessageID(_ context.Context, messageID string) ([]modelChat.MessageReaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byMessage(messageID), nil
}

func (f *fakeReactionRepo) DeleteByMessageID(_ context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.MessageID != messageID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakePollRepo struct {
	mu      sync.Mutex
	options map[string]*modelChat.PollOption
	votes   []modelChat.PollVote
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{options: map[string]*modelChat.PollOption{}}
}

func (f *fakePollRepo) CreateOptions(_ context.Context, options []modelChat.PollOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range options {
		cp := options[i]
		f.options[cp.ID] = &cp
	}
	return nil
}

func (f *fakePollRepo) FindOption(_ context.Context, optionID string) (*modelChat.PollOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if opt, ok := f.options[optionID]; ok {
		cp := *opt
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePollRepo) GetOptionsByMessage(_ context.Context, messageID string) ([]modelChat.PollOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelChat.PollOption
	for _, opt := range f.options {
		if opt.MessageID != messageID {
			continue
		}
		cp := *opt
		for _, v := range f.votes {
			if v.OptionID == opt.ID {
				cp.Votes = append(cp.Votes, v)
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakePollRepo) AddVote(_ context.Context, vote *modelChat.PollVote) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.OptionID == vote.OptionID && v.UserID == vote.UserID {
			return false, nil
		}
	}
	f.votes = append(f.votes, *vote)
	return true, nil
}

func (f *fakePollRepo) RemoveVote(_ context.Context, optionID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.votes[:0]
	removed := false
	for _, v := range f.votes {
		if v.OptionID == optionID && v.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, v)
	}
	f.votes = kept
	return removed, nil
}

func (f *fakePollRepo) RemoveVotesByMessage(_ context.Context, messageID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.votes[:0]
	for _, v := range f.votes {
		if v.MessageID == messageID && v.UserID == userID {
			continue
		}
		kept = append(kept, v)
	}
	f.votes = kept
	return nil
}

func (f *fakePollRepo) GetVotesByMessage(_ context.Context, messageID string) ([]modelChat.PollVote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelChat.PollVote
	for _, v := range f.votes {
		if v.MessageID == messageID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakePollRepo) DeleteByMessage(_ context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.votes[:0]
	for _, v := range f.votes {
		if v.MessageID != messageID {
			kept = append(kept, v)
		}
	}
	f.votes = kept
	for id, opt := range f.options {
		if opt.MessageID == messageID {
			delete(f.options, id)
		}
	}
	return nil
}

type fakeIndexRepo struct {
	mu   sync.Mutex
	rows map[string]*modelChat.ConversationIndex // keyed by conversation id
}

func newFakeIndexRepo() *fakeIndexRepo {
	return &fakeIndexRepo{rows: map[string]*modelChat.ConversationIndex{}}
}

func (f *fakeIndexRepo) Upsert(_ context.Context, conversationID, lastMessage string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := lastMessage
	ts := at
	if row, ok := f.rows[conversationID]; ok {
		row.LastMessage = &msg
		row.LastMessageAt = &ts
		row.UpdatedAt = time.Now()
		return nil
	}
	f.rows[conversationID] = &modelChat.ConversationIndex{
		ID:             conversationID + "-idx",
		ConversationID: conversationID,
		LastMessage:    &msg,
		LastMessageAt:  &ts,
		UpdatedAt:      time.Now(),
	}
	return nil
}

func (f *fakeIndexRepo) FindByConversation(_ context.Context, conversationID string) (*modelChat.ConversationIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[conversationID]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIndexRepo) FindByConversations(_ context.Context, conversationIDs []string) ([]modelChat.ConversationIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelChat.ConversationIndex
	for _, id := range conversationIDs {
		if row, ok := f.rows[id]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeIndexRepo) DeleteByConversation(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, conversationID)
	return nil
}

// breakRow simulates a lost preview write: timestamp kept, text dropped.
func (f *fakeIndexRepo) breakRow(conversationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[conversationID]; ok {
		row.LastMessage = nil
	}
}

func (f *fakeIndexRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeAttachmentRepo struct {
	mu   sync.Mutex
	rows []modelChat.MessageAttachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{}
}

func (f *fakeAttachmentRepo) CreateMany(_ context.Context, attachments []modelChat.MessageAttachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, attachments...)
	return nil
}

func (f *fakeAttachmentRepo) GetByMessageID(_ context.Context, messageID string) ([]modelChat.MessageAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelChat.MessageAttachment
	for _, a := range f.rows {
		if a.MessageID == messageID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttachmentRepo) DeleteByMessageID(_ context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, a := range f.rows {
		if a.MessageID != messageID {
			kept = append(kept, a)
		}
	}
	f.rows = kept
	return nil
}

type fakeUserRepo struct {
	users map[string]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fanOutCall struct {
	messageID string
	members   []string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []fanOutCall
}

func (f *fakeNotifier) FanOutMessage(_ context.Context, msg *modelChat.Message, memberIDs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fanOutCall{messageID: msg.ID, members: memberIDs})
}

type memStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: map[string][]byte{}}
}

func (s *memStorage) Save(_ context.Context, path string, reader io.Reader, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[path] = data
	return nil
}

func (s *memStorage) Get(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.blobs[path]; ok {
		return io.NopCloser(strings.NewReader(string(data))), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, path)
	return nil
}

func (s *memStorage) GetURL(_ context.Context, path string) (string, error) {
	return "mem://" + path, nil
}
