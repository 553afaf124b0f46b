// Package testutil provides an in-process stand-in for the support agent
// backend so the client and controllers can be exercised end to end.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UploadedFile is what the backend received on /api/upload.
type UploadedFile struct {
	Field     string
	Filename  string
	Content   []byte
	RequestID string
}

// ChatCall is what the backend received on /api/chat.
type ChatCall struct {
	Question  string
	RequestID string
}

type Backend struct {
	server *httptest.Server

	mu           sync.Mutex
	uploadStatus int
	chatStatus   int
	chatBody     string
	documents    []string
	uploads      []UploadedFile
	chats        []ChatCall
	requests     int
	gate         chan struct{}
	entered      chan struct{}
}

// NewBackend starts a backend that accepts uploads with 200 and answers
// chat questions with {"response":"ok"}. Close it when done.
func NewBackend() *Backend {
	b := &Backend{
		uploadStatus: http.StatusOK,
		chatStatus:   http.StatusOK,
		chatBody:     `{"response":"ok"}`,
		documents:    []string{},
	}
	b.server = httptest.NewServer(b.router())
	return b
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(b.countAndHold)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "WhatsApp Support Agent API is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", b.handleUpload)
		r.Post("/chat", b.handleChat)
		r.Get("/documents", func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			docs := append([]string(nil), b.documents...)
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, docs)
		})
	})

	return r
}

// countAndHold records every request and, while Block is active, parks the
// handler until the returned release func is called.
func (b *Backend) countAndHold(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests++
		gate, entered := b.gate, b.entered
		b.mu.Unlock()

		if gate != nil {
			select {
			case entered <- struct{}{}:
			default:
			}
			<-gate
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart body: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusUnprocessableEntity)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	b.mu.Lock()
	b.uploads = append(b.uploads, UploadedFile{
		Field:     "file",
		Filename:  header.Filename,
		Content:   content,
		RequestID: r.Header.Get("X-Request-ID"),
	})
	status := b.uploadStatus
	b.mu.Unlock()

	if status >= 200 && status < 300 {
		writeJSON(w, status, map[string]string{"message": "File " + header.Filename + " uploaded and ingested successfully"})
		return
	}
	writeJSON(w, status, map[string]string{"detail": "ingestion failed"})
}

func (b *Backend) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.chats = append(b.chats, ChatCall{Question: req.Question, RequestID: r.Header.Get("X-Request-ID")})
	status, body := b.chatStatus, b.chatBody
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) Close() {
	b.Release()
	b.server.Close()
}

func (b *Backend) SetUploadStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploadStatus = status
}

// SetChatReply sets the raw status and body returned by /api/chat.
func (b *Backend) SetChatReply(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatStatus = status
	b.chatBody = body
}

// SetChatAnswer makes /api/chat return 200 with answer as "response".
func (b *Backend) SetChatAnswer(answer string) {
	raw, _ := json.Marshal(map[string]string{"response": answer})
	b.SetChatReply(http.StatusOK, string(raw))
}

func (b *Backend) SetDocuments(names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.documents = append([]string{}, names...)
}

// Block makes subsequent requests wait inside the server. The returned
// channel receives once per request that reaches the gate.
func (b *Backend) Block() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = make(chan struct{})
	b.entered = make(chan struct{}, 16)
	return b.entered
}

// Release lets every request parked by Block continue.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gate != nil {
		close(b.gate)
		b.gate = nil
	}
}

func (b *Backend) Uploads() []UploadedFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]UploadedFile(nil), b.uploads...)
}

func (b *Backend) Chats() []ChatCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ChatCall(nil), b.chats...)
}

// Requests counts every request that reached the server, on any route.
func (b *Backend) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
