package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/middlewares"
	"github.com/dkozyrev/voicedesk/internal/models"
	"github.com/dkozyrev/voicedesk/internal/services"
)

// Uploader defines the interface that the upload pipeline must implement.
type Uploader interface {
	Process(ctx context.Context, user models.UserDB, department, filename string, audio []byte) (*services.UploadResult, error)
}

// UploadResponse represents a successful upload response
// swagger:model UploadResponse
type UploadResponse struct {
	// Processing status
	// default: processed
	Status string `json:"status"`

	// Transcript of the uploaded audio
	Transcript string `json:"transcript"`

	// Brief summary of the transcript
	Summary string `json:"summary"`

	// Raw reminder detection result, returned whether or not it was stored
	Reminder models.ReminderDetection `json:"reminder"`
}

// UploadErrorResponse represents an error response for upload
// swagger:model UploadErrorResponse
type UploadErrorResponse struct {
	// Error message
	// default: Unsupported audio format
	Error string `json:"error"`
}

// NewUploadHandler returns an HTTP handler for audio upload processing.
// The session user is injected by the auth middleware.
// @Summary Upload and process an audio recording
// @Description Transcribes the audio, summarizes the transcript, detects an optional reminder and persists the results for the authenticated session.
// @Tags business
// @Accept multipart/form-data
// @Produce json
// @Param token formData string true "Session token"
// @Param department formData string true "Department label"
// @Param audio formData file true "Audio recording"
// @Success 200 {object} handlers.UploadResponse "Processing result"
// @Failure 401 {object} handlers.UploadErrorResponse "Login required"
// @Failure 415 {object} handlers.UploadErrorResponse "Unsupported audio format"
// @Router /business/upload [post]
func NewUploadHandler(svc Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.GetUserFromContext(r.Context())
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(UploadErrorResponse{
				Error: "Login required",
			})
			return
		}

		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UploadErrorResponse{
				Error: "invalid multipart form",
			})
			return
		}

		department := r.FormValue("department")

		file, header, err := r.FormFile("audio")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UploadErrorResponse{
				Error: "audio file missing",
			})
			return
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(UploadErrorResponse{
				Error: "failed to read audio file",
			})
			return
		}

		result, err := svc.Process(r.Context(), *user, department, header.Filename, audio)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnsupportedMedia):
				w.WriteHeader(http.StatusUnsupportedMediaType)
				json.NewEncoder(w).Encode(UploadErrorResponse{
					Error: "Unsupported audio format",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(UploadErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(UploadResponse{
			Status:     "processed",
			Transcript: result.Transcript,
			Summary:    result.Summary,
			Reminder:   result.Reminder,
		})
	}
}
