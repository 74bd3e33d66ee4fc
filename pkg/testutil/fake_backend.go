package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/killallgit/liftchat/pkg/chat"
)

// Request is one chat call seen by a FakeBackend
type Request struct {
	Path          string
	Method        string
	Query         string
	SessionID     string
	Authorization string
	UserAgent     string
}

// FakeBackend serves the chat and login endpoints from a script. By default
// it streams Reply in small chunks and then sends done.
type FakeBackend struct {
	*httptest.Server

	// Reply is the full answer, Markdown sources section included
	Reply string
	// Sources is returned by the buffered endpoint when set
	Sources []chat.Source
	// ChunkSize is the number of characters per content frame
	ChunkSize int
	// ChunkDelay is the pause between frames
	ChunkDelay time.Duration
	// StreamStatus fails the stream endpoint when non-zero
	StreamStatus int
	// BufferedStatus fails the buffered endpoint when non-zero
	BufferedStatus int
	// AccessToken is issued by /auth/token; empty rejects every login
	AccessToken string
	// LoginDetail is the reason given for a rejected login
	LoginDetail string

	mu       sync.Mutex
	requests []Request
}

// NewFakeBackend starts a backend answering reply. Set the script fields
// before the first request.
func NewFakeBackend(reply string) *FakeBackend {
	b := &FakeBackend{
		Reply:     reply,
		ChunkSize: 5,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/stream", b.handleStream)
	mux.HandleFunc("/chat", b.handleBuffered)
	mux.HandleFunc("/auth/token", b.handleLogin)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	b.Server = httptest.NewServer(mux)
	return b
}

// Requests returns the chat calls received so far
func (b *FakeBackend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

func (b *FakeBackend) record(r *http.Request, query, sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, Request{
		Path:          r.URL.Path,
		Method:        r.Method,
		Query:         query,
		SessionID:     sessionID,
		Authorization: r.Header.Get("Authorization"),
		UserAgent:     r.Header.Get("User-Agent"),
	})
}

func (b *FakeBackend) handleStream(w http.ResponseWriter, r *http.Request) {
	var q chat.Query
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&q)
	} else {
		q.Text = r.URL.Query().Get("query")
		q.SessionID = r.URL.Query().Get("session_id")
	}
	b.record(r, q.Text, q.SessionID)

	if b.StreamStatus != 0 {
		writeDetail(w, b.StreamStatus, http.StatusText(b.StreamStatus))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for _, chunk := range splitChunks(b.Reply, b.ChunkSize) {
		data, _ := json.Marshal(map[string]string{"content": chunk})
		fmt.Fprint(w, SSE("", string(data)))
		flusher.Flush()
		if b.ChunkDelay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(b.ChunkDelay):
			}
		}
	}
	fmt.Fprint(w, SSE("done", "[DONE]"))
	flusher.Flush()
}

func (b *FakeBackend) handleBuffered(w http.ResponseWriter, r *http.Request) {
	var q chat.Query
	_ = json.NewDecoder(r.Body).Decode(&q)
	b.record(r, q.Text, q.SessionID)

	if b.BufferedStatus != 0 {
		writeDetail(w, b.BufferedStatus, http.StatusText(b.BufferedStatus))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"response": b.Reply,
		"sources":  b.Sources,
	})
}

func (b *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || b.AccessToken == "" {
		detail := b.LoginDetail
		if detail == "" {
			detail = "Incorrect username or password"
		}
		writeDetail(w, http.StatusUnauthorized, detail)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token": b.AccessToken,
		"token_type":   "bearer",
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// splitChunks cuts text into pieces of at most size runes
func splitChunks(text string, size int) []string {
	runes := []rune(text)
	if size <= 0 {
		size = max(len(runes), 1)
	}
	chunks := make([]string, 0, len(runes)/size+1)
	for len(runes) > 0 {
		n := min(size, len(runes))
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}

// SSE formats one server-sent event
func SSE(event, data string) string {
	var sb strings.Builder
	if event != "" {
		sb.WriteString("event: " + event + "\n")
	}
	for _, line := range strings.Split(data, "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
