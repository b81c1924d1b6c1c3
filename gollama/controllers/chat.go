package controllers

import (
	"context"
	"strings"
	"time"

	"gollama/gollama/config"
	"gollama/gollama/services/llm"
	"gollama/gollama/sources/psql/dao"
	"gollama/gollama/sources/psql/models"
	"gollama/gollama/utils/logging"
	"gollama/gollama/utils/textutils"
	"gollama/gollama/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const persistTimeout = 10 * time.Second

// ChatController orchestrates one turn: persist the user message, call the
// model, filter the reply, persist the bot message. It holds no state between
// requests; session state is re-read on every call.
type ChatController struct {
	chatDAO *dao.ChatDAO
	client  *llm.OllamaClient
	cfg     config.Config
}

func NewChatController(chatDAO *dao.ChatDAO, client *llm.OllamaClient, cfg config.Config) *ChatController {
	return &ChatController{chatDAO: chatDAO, client: client, cfg: cfg}
}

// StartSession creates a fresh chat for the viewer. An identifier outside the
// allow-list falls back to the default model.
func (c *ChatController) StartSession(ctx context.Context, viewer dao.Viewer, model string) (*models.ChatSession, error) {
	if !c.cfg.ModelAllowed(model) {
		model = c.cfg.DefaultModel
	}
	return c.chatDAO.CreateSession(ctx, viewer, model)
}

// SessionView returns a session and its ordered messages, creating a new
// session for the viewer when id is nil and none exists yet.
func (c *ChatController) SessionView(ctx context.Context, viewer dao.Viewer, id *uuid.UUID) (*models.ChatSession, []models.Message, error) {
	var session *models.ChatSession
	var err error
	if id != nil {
		session, err = c.chatDAO.GetSession(ctx, *id)
	} else {
		session, err = c.chatDAO.LatestSession(ctx, viewer)
		if err == nil && session == nil {
			session, err = c.chatDAO.CreateSession(ctx, viewer, c.cfg.DefaultModel)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	messages, err := c.chatDAO.GetMessages(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

// beginTurn persists the escaped user message and derives a title for
// still-untitled sessions. An empty prompt after trimming returns a nil
// session and no error: the turn is silently skipped.
func (c *ChatController) beginTurn(ctx context.Context, id uuid.UUID, prompt string) (*models.ChatSession, error) {
	session, err := c.chatDAO.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if prompt == "" {
		return nil, nil
	}

	if _, err := c.chatDAO.SaveMessage(ctx, session.ID, models.SenderUser, textutils.Escape(prompt), nil); err != nil {
		return nil, err
	}

	// Only the first prompt names the session.
	if session.Title == models.DefaultTitle {
		if err := c.chatDAO.UpdateTitle(ctx, session.ID, textutils.DeriveTitle(prompt)); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// SendMessage runs one blocking turn. Generation failures never surface: the
// gateway maps them to placeholder replies that are persisted like any other
// bot message.
func (c *ChatController) SendMessage(ctx context.Context, id uuid.UUID, prompt string) error {
	defer logging.LogDuration(ctx, "chat_send_message")()

	session, err := c.beginTurn(ctx, id, strings.TrimSpace(prompt))
	if err != nil || session == nil {
		return err
	}

	reply := c.client.Run(ctx, session.Model, strings.TrimSpace(prompt))
	reply = llm.FilterThinking(reply)

	_, err = c.chatDAO.SaveMessage(ctx, session.ID, models.SenderBot, textutils.Escape(reply), &session.Model)
	return err
}

// StreamMessage runs one streaming turn. Fragments are forwarded on the
// returned channel as they arrive from the model; once upstream closes, the
// assembled text is filtered and persisted as a single bot message. The
// upstream fetch and the persistence are detached from the request context,
// so a client that disconnects mid-stream still leaves a complete message
// behind once generation finishes.
func (c *ChatController) StreamMessage(ctx context.Context, id uuid.UUID, prompt string) (<-chan string, error) {
	defer logging.LogDuration(ctx, "chat_stream_message")()

	prompt = strings.TrimSpace(prompt)
	session, err := c.beginTurn(ctx, id, prompt)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	out := make(chan string)
	go func() {
		defer close(out)

		var full strings.Builder
		for fragment := range c.client.RunStream(context.Background(), session.Model, prompt) {
			full.WriteString(fragment)
			out <- fragment
		}

		reply := llm.FilterThinking(full.String())
		persistCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if _, err := c.chatDAO.SaveMessage(persistCtx, session.ID, models.SenderBot, textutils.Escape(reply), &session.Model); err != nil {
			logging.ErrorLogger.Error("failed to persist streamed reply",
				zap.String("session_id", session.ID.String()), zap.Error(err))
		}
	}()
	return out, nil
}

// ChangeModel switches the session's model. Identifiers outside the
// allow-list are silently ignored and the prior model is kept.
func (c *ChatController) ChangeModel(ctx context.Context, id uuid.UUID, model string) error {
	session, err := c.chatDAO.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if !c.cfg.ModelAllowed(model) {
		return nil
	}
	return c.chatDAO.UpdateModel(ctx, id, model)
}

// DeleteChat deletes the session when the viewer owns it (silent no-op
// otherwise) and returns the viewer's latest remaining session for the
// redirect, or nil when none is left.
func (c *ChatController) DeleteChat(ctx context.Context, viewer dao.Viewer, id uuid.UUID) (*models.ChatSession, error) {
	if err := c.chatDAO.DeleteSession(ctx, viewer, id); err != nil {
		return nil, err
	}
	return c.chatDAO.LatestSession(ctx, viewer)
}

// Models lists the model allow-list with the default first, for the UI's
// model picker.
func (c *ChatController) Models() types.ModelList {
	return types.ModelList{Default: c.cfg.DefaultModel, Models: c.cfg.Models}
}
