package services

import (
	"context"
	"event-lab/contract"
	"event-lab/domain"
	"event-lab/interpreter"
	"event-lab/repositories"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

type IAssistantService interface {
	Start(conversation domain.ConversationID) error
	Ask(ctx context.Context, conversation domain.ConversationID, text string) ([]domain.ChatMessage, error)
	History(conversation domain.ConversationID, cursor *string) ([]domain.ChatMessage, *string, error)
}

// Censor masks words that must not be stored as typed.
type Censor interface {
	Censor(text string) (string, []string)
}

// AssistantService runs one conversation turn: it logs the user message,
// interprets it against the current event snapshot and logs the replies.
type AssistantService struct {
	interpreter   *interpreter.Interpreter
	source        contract.EventSource
	conversations repositories.IConversationRepository
	censor        Censor
	log           *slog.Logger
	now           func() time.Time
}

func NewAssistantService(
	interp *interpreter.Interpreter,
	source contract.EventSource,
	conversations repositories.IConversationRepository,
	censor Censor,
	log *slog.Logger,
) *AssistantService {
	return &AssistantService{
		interpreter:   interp,
		source:        source,
		conversations: conversations,
		censor:        censor,
		log:           log,
		now:           time.Now,
	}
}

// Start opens the conversation with the welcome line unless it already has messages.
func (s *AssistantService) Start(conversation domain.ConversationID) error {
	existing, _, err := s.conversations.GetMessages(conversation, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return s.conversations.Append(domain.ChatMessage{
		ID:           uuid.New(),
		Conversation: conversation,
		Sender:       domain.SenderAssistant,
		Text:         s.interpreter.Welcome(),
		At:           s.now(),
	})
}

// Ask returns the assistant messages answering text, reply first then suggestions.
// Blank input is ignored and yields no message.
func (s *AssistantService) Ask(ctx context.Context, conversation domain.ConversationID, text string) ([]domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, censored := s.censor.Censor(text)
	if len(censored) > 0 {
		s.log.Warn("User message censored", "conversation", conversation, "words", len(censored))
	}
	if info := whatlanggo.Detect(text); info.IsReliable() {
		s.log.Debug("Utterance language", "lang", info.Lang.Iso6391(), "confidence", info.Confidence)
	}

	at := s.now()
	err := s.conversations.Append(domain.ChatMessage{
		ID:           uuid.New(),
		Conversation: conversation,
		Sender:       domain.SenderUser,
		Text:         stored,
		At:           at,
	})
	if err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	result := s.interpreter.Interpret(text, s.source.Events())
	s.log.Debug("Utterance interpreted",
		"conversation", conversation,
		"intent", result.Intent.Kind.String(),
		"matches", len(result.Matches))

	replies := result.Messages(conversation, at)
	for _, reply := range replies {
		if err := s.conversations.Append(reply); err != nil {
			return nil, fmt.Errorf("append assistant message: %w", err)
		}
	}
	return replies, nil
}

// History pages backwards through a conversation, newest first.
func (s *AssistantService) History(conversation domain.ConversationID, cursor *string) ([]domain.ChatMessage, *string, error) {
	return s.conversations.GetMessages(conversation, cursor)
}
