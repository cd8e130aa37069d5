package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

type ChatRepository struct {
	store store.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewChatRepository(st store.Store, log *slog.Logger) *ChatRepository {
	return &ChatRepository{store: st, log: log}
}

func (repo *ChatRepository) Append(ctx context.Context, msg model.ChatMessage) error {
	const op = "repository.chat.Append"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	messages := append(repo.Messages(ctx, msg.PlayerID), msg)

	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.ChatKey(msg.PlayerID), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *ChatRepository) Messages(ctx context.Context, playerID string) []model.ChatMessage {
	const op = "repository.chat.Messages"

	raw, err := repo.store.Get(ctx, store.ChatKey(playerID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			repo.log.Error("failed to read chat messages", sl.String("op", op), sl.Err(err))
		}

		return nil
	}

	var messages []model.ChatMessage
	if err = json.Unmarshal(raw, &messages); err != nil {
		repo.log.Error("corrupt chat log, treating as empty",
			sl.String("op", op), sl.Err(err))

		return nil
	}

	return messages
}
