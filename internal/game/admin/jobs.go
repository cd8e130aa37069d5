package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// ReplyDelay mimics a human CS agent typing the confirmation.
const ReplyDelay = 2 * time.Second

// CSReplyJob appends an automatic customer service message to a player's
// chat. Runs on the worker pool so balance operations return immediately.
type CSReplyJob struct {
	Chat     *repository.ChatRepository
	PlayerID string
	Text     string
	Log      *slog.Logger
}

func (j *CSReplyJob) Execute() {
	msg := model.ChatMessage{
		ID:       "cs-" + uuid.New().String(),
		PlayerID: j.PlayerID,
		Sender:   model.SenderAdmin,
		Text:     j.Text,
		SentAt:   time.Now(),
	}

	if err := j.Chat.Append(context.Background(), msg); err != nil {
		j.Log.Error("failed to append cs reply",
			sl.String("player_id", j.PlayerID), sl.Err(err))

		return
	}

	j.Log.Debug("cs reply sent", sl.String("player_id", j.PlayerID))
}
