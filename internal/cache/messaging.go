package cache

import (
	"context"
	"maps"
	"slices"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

type NewsState struct {
	// Items is nil until the first successful fetch.
	Items []entities.Information `json:"items"`
}

func (st NewsState) clone() NewsState {
	return st
}

type NewsStore struct {
	*Store[NewsState]
}

func NewNewsStore(backend storage.Backend) *NewsStore {
	return &NewsStore{newStore(entities.DomainNews, backend, func() NewsState {
		return NewsState{}
	})}
}

func (s *NewsStore) UpdateNews(ctx context.Context, t Ticket, items []entities.Information) error {
	return s.write(ctx, t, KeyNews, func(st *NewsState) bool {
		st.Items = slices.Clone(nonNil(items))
		return true
	})
}

func (s *NewsStore) News() ([]entities.Information, bool) {
	var (
		out []entities.Information
		ok  bool
	)
	s.read(func(st *NewsState) {
		ok = st.Items != nil
		out = slices.Clone(st.Items)
	})
	return out, ok
}

type ChatsState struct {
	Chats    []entities.Chat                   `json:"chats"`
	Messages map[string][]entities.ChatMessage `json:"messages"`
}

func (st ChatsState) clone() ChatsState {
	st.Messages = maps.Clone(st.Messages)
	return st
}

type ChatsStore struct {
	*Store[ChatsState]
}

func NewChatsStore(backend storage.Backend) *ChatsStore {
	return &ChatsStore{newStore(entities.DomainChats, backend, func() ChatsState {
		return ChatsState{Messages: make(map[string][]entities.ChatMessage)}
	})}
}

func (s *ChatsStore) UpdateChats(ctx context.Context, t Ticket, chats []entities.Chat) error {
	return s.write(ctx, t, KeyChats, func(st *ChatsState) bool {
		st.Chats = slices.Clone(nonNil(chats))
		return true
	})
}

func (s *ChatsStore) Chats() ([]entities.Chat, bool) {
	var (
		out []entities.Chat
		ok  bool
	)
	s.read(func(st *ChatsState) {
		ok = st.Chats != nil
		out = slices.Clone(st.Chats)
	})
	return out, ok
}

// Chat returns one cached chat by id.
func (s *ChatsStore) Chat(chatID string) (entities.Chat, bool) {
	var (
		out entities.Chat
		ok  bool
	)
	s.read(func(st *ChatsState) {
		idx := slices.IndexFunc(st.Chats, func(c entities.Chat) bool { return c.ID == chatID })
		if idx >= 0 {
			out, ok = st.Chats[idx], true
		}
	})
	return out, ok
}

func (s *ChatsStore) UpdateMessages(ctx context.Context, t Ticket, chatID string, messages []entities.ChatMessage) error {
	return s.write(ctx, t, ChatKey(chatID), func(st *ChatsState) bool {
		st.Messages[chatID] = slices.Clone(nonNil(messages))
		return true
	})
}

func (s *ChatsStore) Messages(chatID string) ([]entities.ChatMessage, bool) {
	var (
		out []entities.ChatMessage
		ok  bool
	)
	s.read(func(st *ChatsState) {
		var list []entities.ChatMessage
		list, ok = st.Messages[chatID]
		out = slices.Clone(list)
	})
	return out, ok
}
