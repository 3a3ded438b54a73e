package facades

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newGeminiServer fakes the generateContent endpoint, returning the given
// text as the single candidate part and recording the last request body.
func newGeminiServer(t *testing.T, answer string, status int, lastReq *geminiRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		if lastReq != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(lastReq))
		}

		if status >= 300 {
			w.WriteHeader(status)
			return
		}

		resp := geminiResponse{}
		resp.Candidates = make([]struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		}, 1)
		resp.Candidates[0].Content.Parts = []geminiPart{{Text: answer}}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGeminiFacade_Transcribe(t *testing.T) {
	var lastReq geminiRequest
	srv := newGeminiServer(t, "Remind me to call Bob tomorrow at 10:00", http.StatusOK, &lastReq)
	defer srv.Close()

	f := NewGeminiFacade(srv.URL, "test-key", "gemini-2.5-flash")

	text, err := f.Transcribe(context.Background(), []byte("RIFFxxxx"), "audio/wav")
	assert.NoError(t, err)
	assert.Equal(t, "Remind me to call Bob tomorrow at 10:00", text)

	parts := lastReq.Contents[0].Parts
	assert.Len(t, parts, 2)
	assert.Equal(t, "Transcribe in ENGLISH", parts[0].Text)
	assert.Equal(t, "audio/wav", parts[1].InlineData.MimeType)
	assert.NotEmpty(t, parts[1].InlineData.Data)
}

func TestGeminiFacade_Transcribe_HTTPError(t *testing.T) {
	srv := newGeminiServer(t, "", http.StatusInternalServerError, nil)
	defer srv.Close()

	f := NewGeminiFacade(srv.URL, "test-key", "gemini-2.5-flash")

	_, err := f.Transcribe(context.Background(), []byte("audio"), "audio/mpeg")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gemini http 500")
}

func TestGeminiFacade_Summarize(t *testing.T) {
	var lastReq geminiRequest
	srv := newGeminiServer(t, "Call Bob tomorrow.", http.StatusOK, &lastReq)
	defer srv.Close()

	f := NewGeminiFacade(srv.URL, "test-key", "gemini-2.5-flash")

	summary, err := f.Summarize(context.Background(), "some transcript")
	assert.NoError(t, err)
	assert.Equal(t, "Call Bob tomorrow.", summary)
	assert.Contains(t, lastReq.Contents[0].Parts[0].Text, "Summarize briefly:")
}

func TestGeminiFacade_ExtractReminder(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		status int
		want   bool
	}{
		{
			name:   "found",
			answer: `{"found":true,"remind_at":"2026-09-02 10:00","message":"call Bob"}`,
			status: http.StatusOK,
			want:   true,
		},
		{
			name:   "fenced json",
			answer: "```json\n{\"found\":true,\"remind_at\":\"2026-09-02 10:00\",\"message\":\"call Bob\"}\n```",
			status: http.StatusOK,
			want:   true,
		},
		{
			name:   "not found",
			answer: `{"found":false}`,
			status: http.StatusOK,
			want:   false,
		},
		{
			name:   "malformed output degrades to not found",
			answer: "sorry, I cannot help with that",
			status: http.StatusOK,
			want:   false,
		},
		{
			name:   "server error degrades to not found",
			status: http.StatusBadGateway,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeminiServer(t, tt.answer, tt.status, nil)
			defer srv.Close()

			f := NewGeminiFacade(srv.URL, "test-key", "gemini-2.5-flash")

			det := f.ExtractReminder(context.Background(), "whatever")
			assert.Equal(t, tt.want, det.Found)
			if tt.want {
				assert.Equal(t, "call Bob", det.Message)
				assert.Equal(t, "2026-09-02 10:00", det.RemindAt)
			}
		})
	}
}
