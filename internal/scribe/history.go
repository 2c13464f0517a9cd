package scribe

import (
	"fmt"
	"time"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
	"github.com/harentsoaR/lipi-scribe-api/internal/utils"
)

const (
	// DuplicateWindow is how close two history entries may be before the
	// newer one is dropped.
	DuplicateWindow = 30 * time.Second
	// MaxHistoryPerPatient bounds each patient's session history.
	MaxHistoryPerPatient = 50

	AutoSavedVisitType = "OPD Consultation (Auto-saved)"
	SavedVisitType     = "OPD Consultation"
)

// AddHistory prepends e to the patient's history unless an entry within
// DuplicateWindow already exists. It reports whether e was stored.
func AddHistory(history map[string][]models.HistoryEntry, key string, e models.HistoryEntry) bool {
	for _, existing := range history[key] {
		d := existing.Timestamp.Sub(e.Timestamp)
		if d < 0 {
			d = -d
		}
		if d < DuplicateWindow {
			return false
		}
	}

	PrependHistory(history, key, e)
	return true
}

// PrependHistory stores e as the newest entry without the duplicate check.
// Explicit saves use it so an auto-save moments earlier cannot mask them.
func PrependHistory(history map[string][]models.HistoryEntry, key string, e models.HistoryEntry) {
	entries := append([]models.HistoryEntry{e}, history[key]...)
	if len(entries) > MaxHistoryPerPatient {
		entries = entries[:MaxHistoryPerPatient]
	}
	history[key] = entries
}

// NewHistoryEntry snapshots the draft. Empty summary fields get the
// in-progress placeholders shown on the patient dashboard.
func NewHistoryEntry(p models.PatientDetails, note models.ClinicalNote, now time.Time, autoSaved bool) models.HistoryEntry {
	patientID := p.MRN
	if patientID == "" {
		patientID = fmt.Sprintf("temp_%d", now.UnixMilli())
	}
	prefix, visitType := "rec", SavedVisitType
	if autoSaved {
		prefix, visitType = "auto", AutoSavedVisitType
	}

	return models.HistoryEntry{
		ID:           fmt.Sprintf("%s_%d", prefix, now.UnixMilli()),
		PatientID:    patientID,
		Date:         now.Format("2006-01-02"),
		VisitType:    visitType,
		Diagnosis:    orDefault(note.Diagnosis, "In Progress"),
		Prescription: orDefault(note.Treatment, "Treatment plan pending"),
		Notes:        orDefault(note.ChiefComplaint, "Consultation in progress"),
		FollowUp:     orDefault(note.FollowUp, "As needed"),
		IsAutoSaved:  autoSaved,
		Timestamp:    now,
		Snapshot:     note,
	}
}

// HistoryKey is the key a patient's entries are filed under.
func HistoryKey(p models.PatientDetails) string {
	return utils.PatientKey(p.MRN, p.Name)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
