package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soporte.ai/dashboard/internal/testutil"
)

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestClient_Upload(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()

	client := NewClient(backend.URL() + "/")
	err := client.Upload(context.Background(), "notes.txt", []byte("horario 9-18h"))
	require.NoError(t, err)

	uploads := backend.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, UploadFormField, uploads[0].Field)
	assert.Equal(t, "notes.txt", uploads[0].Filename)
	assert.Equal(t, "horario 9-18h", string(uploads[0].Content))
	assert.NotEmpty(t, uploads[0].RequestID)
}

func TestClient_UploadStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "created", status: http.StatusCreated},
		{name: "no content", status: http.StatusNoContent},
		{name: "bad request", status: http.StatusBadRequest, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testutil.NewBackend()
			defer backend.Close()
			backend.SetUploadStatus(tt.status)

			err := NewClient(backend.URL()).Upload(context.Background(), "notes.pdf", []byte("%PDF"))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.False(t, errors.Is(err, ErrTransport))
		})
	}
}

func TestClient_UploadTransportFailure(t *testing.T) {
	client := NewClient("http://backend.invalid", WithHTTPClient(&http.Client{Transport: failingTransport{}}))

	err := client.Upload(context.Background(), "notes.txt", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 0, StatusCode(err))
}

func TestClient_Ask(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.SetChatAnswer("Abrimos 9-18h")

	answer, err := NewClient(backend.URL()).Ask(context.Background(), "¿Cuál es el horario?")
	require.NoError(t, err)
	assert.Equal(t, "Abrimos 9-18h", answer)

	calls := backend.Chats()
	require.Len(t, calls, 1)
	assert.Equal(t, "¿Cuál es el horario?", calls[0].Question)
	assert.NotEmpty(t, calls[0].RequestID)
}

func TestClient_AskEmptyAnswerIsValid(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()
	backend.SetChatReply(http.StatusOK, `{"response":""}`)

	answer, err := NewClient(backend.URL()).Ask(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "", answer)
}

func TestClient_AskFailures(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantStatus    int
		wantMalformed bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail":"boom"}`, wantStatus: http.StatusInternalServerError},
		{name: "validation error", status: http.StatusBadRequest, body: `{"detail":"Question is required"}`, wantStatus: http.StatusBadRequest},
		{name: "not json", status: http.StatusOK, body: `<html>oops</html>`, wantMalformed: true},
		{name: "missing response field", status: http.StatusOK, body: `{"answer":"x"}`, wantMalformed: true},
		{name: "wrong field type", status: http.StatusOK, body: `{"response":42}`, wantMalformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testutil.NewBackend()
			defer backend.Close()
			backend.SetChatReply(tt.status, tt.body)

			_, err := NewClient(backend.URL()).Ask(context.Background(), "hola")
			require.Error(t, err)

			if tt.wantMalformed {
				var me *MalformedResponseError
				assert.ErrorAs(t, err, &me)
				return
			}
			assert.Equal(t, tt.wantStatus, StatusCode(err))
		})
	}
}

func TestClient_AskCancelledContext(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(backend.URL()).Ask(ctx, "hola")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, backend.Chats())
}

func TestClient_ListDocuments(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()

	client := NewClient(backend.URL())

	docs, err := client.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NotNil(t, docs)

	backend.SetDocuments("faq.pdf", "politicas.txt")
	docs, err = client.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"faq.pdf", "politicas.txt"}, docs)
}

func TestClient_Health(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()

	msg, err := NewClient(backend.URL()).Health(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg, "running")
}

func TestClient_UsesInjectedRequestID(t *testing.T) {
	backend := testutil.NewBackend()
	defer backend.Close()

	client := NewClient(backend.URL())
	client.newRequestID = func() string { return "req-1" }

	_, err := client.Ask(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "req-1", backend.Chats()[0].RequestID)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeFor("Manual.PDF"))
	assert.Contains(t, contentTypeFor("notes.txt"), "text/plain")
	assert.Equal(t, "application/octet-stream", contentTypeFor("blob"))
}
