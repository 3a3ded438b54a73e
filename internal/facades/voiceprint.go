package facades

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VoiceprintHTTPFacade computes speaker embeddings by posting raw audio to
// an external embedding service.
type VoiceprintHTTPFacade struct {
	client  *http.Client
	baseURL string
}

// NewVoiceprintHTTPFacade creates a new facade for the given service URL.
func NewVoiceprintHTTPFacade(baseURL string) *VoiceprintHTTPFacade {
	return &VoiceprintHTTPFacade{
		client:  &http.Client{Timeout: 2 * time.Minute},
		baseURL: baseURL,
	}
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the speaker embedding for the given audio bytes.
func (f *VoiceprintHTTPFacade) Embed(ctx context.Context, audio []byte) ([]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/embed", bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("voiceprint http %d: %s", resp.StatusCode, string(b))
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, err
	}
	return er.Embedding, nil
}
