package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

const (
	replyBusy        = "I'm a bit busy right now due to high traffic. Please try again in a moment."
	replyUnreachable = "Sorry, I'm having trouble connecting right now. Please try again later."

	// maxChatTurns caps the history kept per conversation.
	maxChatTurns = 40
)

// assistantService implements the AssistantUsecase interface.
type assistantService struct {
	generator service.ContentGenerator
	locks     *keyedMutex
	mu        sync.RWMutex
	history   map[string][]service.ChatTurn
	logger    *slog.Logger
}

// AssistantServiceParams holds dependencies for AssistantService, injected by Fx.
type AssistantServiceParams struct {
	fx.In

	Generator service.ContentGenerator
	Logger    *slog.Logger
}

// NewAssistantService is the constructor for assistantService.
func NewAssistantService(params AssistantServiceParams) usecase.AssistantUsecase {
	return &assistantService{
		generator: params.Generator,
		locks:     newKeyedMutex(),
		history:   make(map[string][]service.ChatTurn),
		logger:    params.Logger,
	}
}

func (srv *assistantService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Send forwards message with the conversation so far. Gateway failures are
// answered with a friendly reply and leave the history unchanged.
func (srv *assistantService) Send(ctx context.Context, conversationID, message string) (*usecase.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domainerrors.NewValidationError(domainerrors.ErrValidationFailed, map[string]string{"message": "required"})
	}

	if conversationID == "" {
		conversationID = entity.NewID()
	}

	unlock := srv.locks.lock(conversationID)
	defer unlock()

	srv.mu.RLock()
	history := srv.history[conversationID]
	srv.mu.RUnlock()

	reply, err := srv.generator.SendChatMessage(ctx, history, message)
	if err != nil {
		srv.log(ctx).Warn("Assistant reply failed", slog.String("conversation_id", conversationID), slog.Any("error", err))

		return &usecase.ChatReply{
			ConversationID: conversationID,
			Reply:          friendlyReply(err),
			History:        history,
		}, nil
	}

	next := make([]service.ChatTurn, 0, len(history)+2)
	next = append(next, history...)
	next = append(next,
		service.ChatTurn{Role: service.ChatRoleUser, Text: message},
		service.ChatTurn{Role: service.ChatRoleModel, Text: reply},
	)
	if len(next) > maxChatTurns {
		next = next[len(next)-maxChatTurns:]
	}

	srv.mu.Lock()
	srv.history[conversationID] = next
	srv.mu.Unlock()

	return &usecase.ChatReply{ConversationID: conversationID, Reply: reply, History: next}, nil
}

func friendlyReply(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrGenerationUnavailable):
		return domainerrors.ErrGenerationUnavailable.Message()
	case errors.Is(err, domainerrors.ErrGenerationQuotaExceeded):
		return replyBusy
	default:
		return replyUnreachable
	}
}
