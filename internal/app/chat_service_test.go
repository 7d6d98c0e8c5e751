package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalai-assistant/internal/ai"
)

// fakeOllama serves /api/tags and /api/generate the way a real backend
// does, with the NDJSON body supplied per test.
func fakeOllama(t *testing.T, installedModel, generateBody string, generateStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"` + installedModel + `"}]}`))
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		if generateStatus != 0 {
			w.WriteHeader(generateStatus)
		}
		w.Write([]byte(generateBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestChat(t *testing.T, baseURL string) (*ChatService, string) {
	t.Helper()
	ingest, sessions, docs := newTestIngest(t, stubExtractor{
		text: "4.1 The policyholder is entitled to a full refund within thirty days.",
	})
	sessionID := sessions.Create()
	result := ingest.IngestBatch(sessionID, []FileInput{
		{Filename: "policy.txt", DeclaredSize: -1, Content: strings.NewReader("raw")},
	})
	require.True(t, result.Success)

	client := ai.NewOllamaClient(5*time.Second, 2*time.Second)
	svc := NewChatService(sessions, docs, nil, client,
		ai.GenerateConfig{BaseURL: baseURL, Model: "test-model"},
		ai.GenerateOptions{Temperature: 0.7})
	return svc, sessionID
}

func collectEvents(t *testing.T, svc *ChatService, input ChatInput) ([]StreamEvent, error) {
	t.Helper()
	var events []StreamEvent
	err := svc.StreamAnswer(context.Background(), input, func(ev StreamEvent) error {
		events = append(events, ev)
		return nil
	})
	return events, err
}

func TestStreamAnswer_EmptyMessage(t *testing.T) {
	svc, sessionID := newTestChat(t, "http://127.0.0.1:1")

	events, err := collectEvents(t, svc, ChatInput{SessionID: sessionID, Message: "   "})
	assert.ErrorIs(t, err, ErrMessageEmpty)
	assert.Empty(t, events, "validation failures precede any event")
}

func TestStreamAnswer_NoDocuments(t *testing.T) {
	srv := fakeOllama(t, "test-model", "", 0)
	svc, _ := newTestChat(t, srv.URL)

	// A fresh session with nothing uploaded: the stream must not even
	// reach the backend.
	events, err := collectEvents(t, svc, ChatInput{SessionID: "empty-session", Message: "What is covered?"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Done)
	assert.Contains(t, events[0].Error, "Upload a document")
	assert.Empty(t, events[0].Content)
}

func TestStreamAnswer_HappyPath(t *testing.T) {
	body := `{"response":"The "}
{"response":"refund "}
{"response":"clause applies."}
{"response":"","done":true}
`
	srv := fakeOllama(t, "test-model", body, 0)
	svc, sessionID := newTestChat(t, srv.URL)

	events, err := collectEvents(t, svc, ChatInput{SessionID: sessionID, Message: "Am I owed a refund?"})
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, "The ", events[0].Content)
	assert.Equal(t, "refund ", events[1].Content)
	assert.Equal(t, "clause applies.", events[2].Content)
	for _, ev := range events[:3] {
		assert.False(t, ev.Done)
		assert.Empty(t, ev.Error)
		assert.Equal(t, sessionID, ev.SessionID)
	}

	final := events[3]
	assert.True(t, final.Done)
	assert.Empty(t, final.Content)
	assert.Empty(t, final.Error)
}

func TestStreamAnswer_ModelNotInstalled(t *testing.T) {
	srv := fakeOllama(t, "some-other-model", "", 0)
	svc, sessionID := newTestChat(t, srv.URL)

	events, err := collectEvents(t, svc, ChatInput{SessionID: sessionID, Message: "hello"})
	require.NoError(t, err)
	require.Len(t, events, 1, "a failed stream carries exactly one terminal event")
	assert.True(t, events[0].Done)
	assert.Contains(t, events[0].Error, "not installed")
}

func TestStreamAnswer_BackendUnreachable(t *testing.T) {
	srv := fakeOllama(t, "test-model", "", 0)
	srv.Close()
	svc, sessionID := newTestChat(t, srv.URL)

	events, err := collectEvents(t, svc, ChatInput{SessionID: sessionID, Message: "hello"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Done)
	assert.Contains(t, events[0].Error, "not reachable")
}

func TestStreamAnswer_BackendReportedError(t *testing.T) {
	body := `{"response":"partial "}
{"error":"model crashed"}
`
	srv := fakeOllama(t, "test-model", body, 0)
	svc, sessionID := newTestChat(t, srv.URL)

	events, err := collectEvents(t, svc, ChatInput{SessionID: sessionID, Message: "hello"})
	require.NoError(t, err)
	require.Len(t, events, 2, "content already sent, then one terminal error event")
	assert.Equal(t, "partial ", events[0].Content)
	assert.True(t, events[1].Done)
	assert.Contains(t, events[1].Error, "rejected the request")
}

func TestStreamAnswer_MalformedBackendResponse(t *testing.T) {
	srv := fakeOllama(t, "test-model", "this is not json\n", 0)
	svc, sessionID := newTestChat(t, srv.URL)

	events, err := collectEvents(t, svc, ChatInput{SessionID: sessionID, Message: "hello"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Done)
	assert.Contains(t, events[0].Error, "unreadable response")
}

func TestStreamAnswer_StreamEndsWithoutDoneMarker(t *testing.T) {
	srv := fakeOllama(t, "test-model", `{"response":"trunc"}`+"\n", 0)
	svc, sessionID := newTestChat(t, srv.URL)

	events, err := collectEvents(t, svc, ChatInput{SessionID: sessionID, Message: "hello"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "trunc", events[0].Content)
	assert.True(t, events[1].Done)
	assert.Contains(t, events[1].Error, "unreadable response")
}

func TestStreamAnswer_ClientCancelMidStream(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"test-model"}]}`))
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"partial "}` + "\n"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	svc, sessionID := newTestChat(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events []StreamEvent
	err := svc.StreamAnswer(ctx, ChatInput{SessionID: sessionID, Message: "hello"}, func(ev StreamEvent) error {
		events = append(events, ev)
		cancel()
		return nil
	})
	require.NoError(t, err)

	// The caller hung up: the content already sent stands, and no terminal
	// event chases a listener that is gone.
	require.Len(t, events, 1)
	assert.Equal(t, "partial ", events[0].Content)
	assert.False(t, events[0].Done)
	assert.Empty(t, events[0].Error)
}

func TestStreamAnswer_ExplicitDocumentSelection(t *testing.T) {
	body := `{"response":"ok","done":true}` + "\n"
	srv := fakeOllama(t, "test-model", body, 0)
	svc, sessionID := newTestChat(t, srv.URL)

	session, ok := svc.sessions.Get(sessionID)
	require.True(t, ok)
	require.Len(t, session.DocumentIDs, 1)

	// Explicit ids bypass the session lookup entirely.
	events, err := collectEvents(t, svc, ChatInput{
		SessionID:   "irrelevant",
		Message:     "hello",
		DocumentIDs: session.DocumentIDs,
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Empty(t, events[len(events)-1].Error)
	assert.True(t, events[len(events)-1].Done)
}
