package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"legalai-assistant/internal/ai"
	"legalai-assistant/internal/cache"
	"legalai-assistant/internal/model"
	"legalai-assistant/internal/store"
)

var ErrMessageEmpty = errors.New("message content is empty")

// streamState tracks where a chat request is in its lifecycle:
// idle -> connectivity check -> streaming -> completed | failed.
type streamState int

const (
	stateIdle streamState = iota
	stateConnectivityCheck
	stateStreaming
	stateCompleted
	stateFailed
)

func (s streamState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateConnectivityCheck:
		return "connectivity check"
	case stateStreaming:
		return "streaming"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StreamEvent is one framed unit of the chat response. A terminal event
// has Done set; a failed stream carries exactly one terminal event with
// Error set and no further content.
type StreamEvent struct {
	Content   string `json:"content"`
	Error     string `json:"error,omitempty"`
	Done      bool   `json:"done"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatInput struct {
	SessionID string
	Message   string
	History   []model.ChatTurn
	// DocumentIDs, when set, selects an explicit document list instead of
	// the whole session.
	DocumentIDs []string
}

// ChatService drives the generation backend and converts its token stream
// into the framed event sequence.
type ChatService struct {
	sessions *store.SessionStore
	docs     *store.DocumentStore
	history  *cache.HistoryCache // optional, may be nil
	client   *ai.OllamaClient
	llm      ai.GenerateConfig
	options  ai.GenerateOptions
}

func NewChatService(
	sessions *store.SessionStore,
	docs *store.DocumentStore,
	history *cache.HistoryCache,
	client *ai.OllamaClient,
	llm ai.GenerateConfig,
	options ai.GenerateOptions,
) *ChatService {
	return &ChatService{
		sessions: sessions,
		docs:     docs,
		history:  history,
		client:   client,
		llm:      llm,
		options:  options,
	}
}

// StreamAnswer runs one chat request through the state machine, emitting
// events in arrival order. A validation problem is returned as an error
// before any event is emitted; once streaming starts, every failure is
// collapsed into a single terminal event instead. Cancelling ctx stops the
// backend read promptly.
func (s *ChatService) StreamAnswer(ctx context.Context, input ChatInput, emit func(StreamEvent) error) error {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return ErrMessageEmpty
	}

	state := stateIdle

	// Reading the session refreshes its activity; the documents snapshot
	// is taken under the store lock so a concurrent evict cannot be
	// observed mid-removal.
	docs := s.resolveDocuments(input)
	contextBlock := BuildContext(docs)
	if contextBlock == NoDocumentsContext {
		return s.fail(state, emit, input.SessionID,
			"No documents are uploaded yet. Upload a document first so it can be analyzed.")
	}

	state = stateConnectivityCheck
	if err := s.client.CheckModel(ctx, s.llm); err != nil {
		log.Printf("connectivity check failed: %v", err)
		return s.fail(state, emit, input.SessionID, ai.UserMessage(err))
	}

	history := s.resolveHistory(ctx, input)
	prompt := buildPrompt(contextBlock, history, message)

	state = stateStreaming
	answer, err := s.client.StreamGenerate(ctx, s.llm, systemPrompt, prompt, s.options, func(chunk string) error {
		return emit(StreamEvent{Content: chunk, SessionID: input.SessionID})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The client went away; nobody is listening for a terminal event.
			return nil
		}
		log.Printf("generate stream failed: %v", err)
		return s.fail(state, emit, input.SessionID, ai.UserMessage(err))
	}

	s.rememberTurns(ctx, input.SessionID, message, answer)
	return emit(StreamEvent{Content: "", Done: true, SessionID: input.SessionID})
}

// CheckBackend reports backend reachability for the health endpoint.
func (s *ChatService) CheckBackend(ctx context.Context) error {
	return s.client.CheckModel(ctx, s.llm)
}

func (s *ChatService) fail(state streamState, emit func(StreamEvent) error, sessionID, message string) error {
	log.Printf("chat stream failed during %s", state)
	return emit(StreamEvent{Error: message, Done: true, SessionID: sessionID})
}

func (s *ChatService) resolveDocuments(input ChatInput) []model.Document {
	if len(input.DocumentIDs) > 0 {
		return s.docs.ListByIDs(input.DocumentIDs)
	}
	session, ok := s.sessions.Get(input.SessionID)
	if !ok {
		return nil
	}
	return s.docs.ListByIDs(session.DocumentIDs)
}

func (s *ChatService) resolveHistory(ctx context.Context, input ChatInput) []model.ChatTurn {
	if len(input.History) > 0 || s.history == nil {
		return input.History
	}
	cached, hit, err := s.history.GetHistory(ctx, input.SessionID)
	if err != nil || !hit {
		return nil
	}
	return cached
}

func (s *ChatService) rememberTurns(ctx context.Context, sessionID, question, answer string) {
	if s.history == nil {
		return
	}
	err := s.history.AppendTurns(ctx, sessionID,
		model.ChatTurn{Role: "user", Content: question},
		model.ChatTurn{Role: "assistant", Content: answer},
	)
	if err != nil {
		log.Printf("cache history failed: %v", err)
	}
}
