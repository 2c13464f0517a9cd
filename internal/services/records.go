package services

import (
	"context"
	"strings"
	"time"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

// RecordInserter persists finished OPD records.
type RecordInserter interface {
	Insert(ctx context.Context, rec *models.OPDRecord) error
}

// FollowUpNotifier is told about every saved record; it decides itself
// whether a reminder goes out.
type FollowUpNotifier interface {
	SendFollowUpReminder(rec *models.OPDRecord)
}

// NewOPDRecord validates the draft and stamps it. Both the manual save
// endpoint and scribe sessions build records through it.
func NewOPDRecord(doctorID string, patient models.PatientDetails, note models.ClinicalNote, transcript, audioURL string, now time.Time) (*models.OPDRecord, error) {
	note.ChiefComplaint = strings.TrimSpace(note.ChiefComplaint)
	if doctorID == "" || !patient.Complete() || note.ChiefComplaint == "" {
		return nil, ErrIncompleteRecord
	}

	return &models.OPDRecord{
		DoctorID:            doctorID,
		PatientDetails:      patient,
		ClinicalNote:        note,
		RecordingTranscript: transcript,
		AudioRecordingURL:   audioURL,
		RecordingDate:       now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}
