package facades

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/models"
)

// DefaultGeminiBaseURL is the production Gemini API endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiFacade implements transcription, summarization and reminder
// extraction over the Gemini generateContent REST API. Audio is sent
// inline, base64-encoded.
type GeminiFacade struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewGeminiFacade creates a new facade. An empty baseURL falls back to the
// production endpoint.
func NewGeminiFacade(baseURL, apiKey, model string) *GeminiFacade {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiFacade{
		client:  &http.Client{Timeout: 5 * time.Minute},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generateContent posts the given parts and returns the concatenated text
// of the first candidate.
func (f *GeminiFacade) generateContent(ctx context.Context, parts []geminiPart) (string, error) {
	var reqBody geminiRequest
	reqBody.Contents = make([]struct {
		Parts []geminiPart `json:"parts"`
	}, 1)
	reqBody.Contents[0].Parts = parts

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", f.baseURL, f.model, f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, string(b))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", err
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// Transcribe converts raw audio to English text.
func (f *GeminiFacade) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return f.generateContent(ctx, []geminiPart{
		{Text: "Transcribe in ENGLISH"},
		{InlineData: &geminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(audio),
		}},
	})
}

// Summarize produces a brief summary of the transcript.
func (f *GeminiFacade) Summarize(ctx context.Context, text string) (string, error) {
	return f.generateContent(ctx, []geminiPart{
		{Text: "Summarize briefly:\n" + text},
	})
}

const extractReminderPrompt = `Detect reminder.
Return JSON only:
{"found":true,"remind_at":"YYYY-MM-DD HH:MM","message":""}
Text:`

// ExtractReminder detects a reminder in the transcript. It absorbs its own
// failures: transport errors and malformed model output both degrade to a
// not-found result, never an error.
func (f *GeminiFacade) ExtractReminder(ctx context.Context, text string) models.ReminderDetection {
	raw, err := f.generateContent(ctx, []geminiPart{
		{Text: extractReminderPrompt + text},
	})
	if err != nil {
		logger.Log.Warnw("reminder extraction failed, treating as not found", "error", err)
		return models.ReminderDetection{Found: false}
	}

	// Models often wrap JSON answers in markdown fences.
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")

	var det models.ReminderDetection
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &det); err != nil {
		logger.Log.Warnw("reminder extraction returned malformed JSON, treating as not found", "error", err)
		return models.ReminderDetection{Found: false}
	}
	return det
}
