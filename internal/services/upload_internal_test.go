package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkozyrev/voicedesk/internal/models"
)

// A reminder at exactly the current instant is not strictly in the future
// and must be dropped.
func TestUploadService_Process_RemindAtEqualNowDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transcriber := NewMockTranscriber(ctrl)
	summarizer := NewMockSummarizer(ctrl)
	extractor := NewMockReminderExtractor(ctrl)
	records := NewMockRecordWriter(ctrl)
	remReader := NewMockReminderReader(ctrl)
	remWriter := NewMockReminderWriter(ctrl)

	svc := NewUploadService(transcriber, summarizer, extractor, records, remReader, remWriter, nil)

	fixed, err := time.ParseInLocation(models.RemindAtLayout, "2026-09-01 12:00", time.Local)
	assert.NoError(t, err)
	svc.now = func() time.Time { return fixed }

	transcriber.EXPECT().Transcribe(gomock.Any(), gomock.Any(), "audio/wav").Return("t", nil)
	summarizer.EXPECT().Summarize(gomock.Any(), "t").Return("s", nil)
	extractor.EXPECT().ExtractReminder(gomock.Any(), "t").
		Return(models.ReminderDetection{Found: true, RemindAt: "2026-09-01 12:00", Message: "now"})
	records.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	// No Exists/Save expectations: the gate drops the reminder first.

	user := models.UserDB{UserID: uuid.New()}
	res, err := svc.Process(context.Background(), user, "sales", "clip.wav", []byte("audio"))
	assert.NoError(t, err)
	assert.True(t, res.Reminder.Found)
}
