package services

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/models"
)

// ErrUnsupportedMedia is returned when the upload filename has an
// extension outside the accepted set.
var ErrUnsupportedMedia = errors.New("unsupported audio format")

// mimeTypes is the fixed allow-list of accepted audio extensions. No
// content sniffing is performed.
var mimeTypes = map[string]string{
	"wav": "audio/wav",
	"mp3": "audio/mpeg",
	"mp4": "audio/mp4",
	"ogg": "audio/ogg",
}

// Transcriber converts raw audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Summarizer produces a brief summary of a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ReminderExtractor detects a reminder in a transcript. Implementations
// absorb their own failures into a not-found result.
type ReminderExtractor interface {
	ExtractReminder(ctx context.Context, text string) models.ReminderDetection
}

// RecordWriter persists processed records.
type RecordWriter interface {
	Save(ctx context.Context, rec models.RecordDB) error
}

// ReminderReader checks for duplicate reminders.
type ReminderReader interface {
	Exists(ctx context.Context, userID uuid.UUID, message, remindAt string) (bool, error)
}

// ReminderWriter persists reminders.
type ReminderWriter interface {
	Save(ctx context.Context, rem models.ReminderDB) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// UploadResult is what the caller sees after a successful upload. Reminder
// carries the raw detection result, independent of whether it was stored.
type UploadResult struct {
	Transcript string
	Summary    string
	Reminder   models.ReminderDetection
}

// UploadService orchestrates the audio processing pipeline.
type UploadService struct {
	transcriber Transcriber
	summarizer  Summarizer
	extractor   ReminderExtractor
	records     RecordWriter
	remReader   ReminderReader
	remWriter   ReminderWriter
	kafkaWriter KafkaWriter
	now         func() time.Time
}

// NewUploadService creates a new UploadService. kafkaWriter may be nil,
// in which case event publishing is skipped.
func NewUploadService(
	transcriber Transcriber,
	summarizer Summarizer,
	extractor ReminderExtractor,
	records RecordWriter,
	remReader ReminderReader,
	remWriter ReminderWriter,
	kafkaWriter KafkaWriter,
) *UploadService {
	return &UploadService{
		transcriber: transcriber,
		summarizer:  summarizer,
		extractor:   extractor,
		records:     records,
		remReader:   remReader,
		remWriter:   remWriter,
		kafkaWriter: kafkaWriter,
		now:         time.Now,
	}
}

// Process runs the pipeline for an already-authenticated user: resolve the
// MIME type, transcribe, summarize, detect a reminder, persist the record,
// and best-effort persist the reminder. Transcription and summarization
// failures abort the request; reminder handling degrades silently.
func (svc *UploadService) Process(ctx context.Context, user models.UserDB, department, filename string, audio []byte) (*UploadResult, error) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	mimeType, ok := mimeTypes[ext]
	if !ok {
		logger.Log.Errorw("unsupported audio extension", "filename", filename)
		return nil, ErrUnsupportedMedia
	}

	transcript, err := svc.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		logger.Log.Errorw("transcription failed", "user_id", user.UserID, "err", err)
		return nil, err
	}

	summary, err := svc.summarizer.Summarize(ctx, transcript)
	if err != nil {
		logger.Log.Errorw("summarization failed", "user_id", user.UserID, "err", err)
		return nil, err
	}

	detection := svc.extractor.ExtractReminder(ctx, transcript)

	rec := models.RecordDB{
		RecordID:   uuid.New(),
		UserID:     user.UserID,
		Department: department,
		Transcript: transcript,
		Summary:    summary,
		CreatedAt:  svc.now(),
	}
	if err := svc.records.Save(ctx, rec); err != nil {
		logger.Log.Errorw("failed to save record", "user_id", user.UserID, "err", err)
		return nil, err
	}

	if detection.Found {
		svc.saveReminder(ctx, user, detection)
	}

	svc.publishRecordProcessed(ctx, rec)

	return &UploadResult{
		Transcript: transcript,
		Summary:    summary,
		Reminder:   detection,
	}, nil
}

// saveReminder persists a detected reminder when it is strictly in the
// future and not a duplicate of an existing (user, message, remind_at)
// triple. All failures here degrade silently; the record is already
// committed and the request must still succeed.
func (svc *UploadService) saveReminder(ctx context.Context, user models.UserDB, det models.ReminderDetection) {
	remindAt, err := time.ParseInLocation(models.RemindAtLayout, det.RemindAt, time.Local)
	if err != nil {
		logger.Log.Warnw("unparseable remind_at, dropping reminder", "remind_at", det.RemindAt)
		return
	}
	if !remindAt.After(svc.now()) {
		logger.Log.Infow("reminder not in the future, dropping", "remind_at", det.RemindAt)
		return
	}

	exists, err := svc.remReader.Exists(ctx, user.UserID, det.Message, det.RemindAt)
	if err != nil {
		logger.Log.Warnw("duplicate check failed, dropping reminder", "err", err)
		return
	}
	if exists {
		logger.Log.Infow("duplicate reminder, dropping", "user_id", user.UserID, "remind_at", det.RemindAt)
		return
	}

	rem := models.ReminderDB{
		ReminderID: uuid.New(),
		UserID:     user.UserID,
		Message:    det.Message,
		RemindAt:   det.RemindAt,
		CreatedAt:  svc.now(),
	}
	if err := svc.remWriter.Save(ctx, rem); err != nil {
		logger.Log.Warnw("failed to save reminder", "user_id", user.UserID, "err", err)
	}
}

// publishRecordProcessed publishes a best-effort event to Kafka.
func (svc *UploadService) publishRecordProcessed(ctx context.Context, rec models.RecordDB) {
	if svc.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "record_id", rec.RecordID)
		return
	}

	event := models.RecordProcessedEvent{
		RecordID:   rec.RecordID.String(),
		UserID:     rec.UserID.String(),
		Department: rec.Department,
		CreatedAt:  rec.CreatedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal record event for Kafka", "record_id", rec.RecordID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.RecordID),
		Value: data,
	}
	if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish record event to Kafka", "record_id", rec.RecordID, "error", err)
	}
}
