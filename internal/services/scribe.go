package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/lipi-scribe-api/internal/metrics"
	"github.com/harentsoaR/lipi-scribe-api/internal/models"
	"github.com/harentsoaR/lipi-scribe-api/internal/scribe"
	"github.com/harentsoaR/lipi-scribe-api/internal/session"
	"github.com/harentsoaR/lipi-scribe-api/internal/utils"
)

const lockStripes = 64

// ScribeService drives live consultations: it feeds transcript chunks
// through extraction, keeps the draft in the session store and turns it
// into an OPD record on save.
type ScribeService struct {
	store    session.Store
	records  RecordInserter
	notifier FollowUpNotifier
	now      func() time.Time

	// Updates to one session are serialized; sessions hash onto stripes.
	locks [lockStripes]sync.Mutex
}

func NewScribeService(store session.Store, records RecordInserter, notifier FollowUpNotifier) *ScribeService {
	return &ScribeService{
		store:    store,
		records:  records,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TranscriptResult is what one transcript chunk changed.
type TranscriptResult struct {
	Session        *models.ScribeSession  `json:"session"`
	Updates        []scribe.Update        `json:"updates"`
	AutoSaved      bool                   `json:"autoSaved"`
	CreatedPatient *models.SessionPatient `json:"createdPatient,omitempty"`
}

type SaveResult struct {
	Session *models.ScribeSession `json:"session"`
	Record  *models.OPDRecord     `json:"record"`
	Updates []scribe.Update       `json:"updates"`
}

// PatientUpdate is a manual edit of the draft's patient details. Nil
// fields are left alone.
type PatientUpdate struct {
	Name        *string `json:"name"`
	Age         *string `json:"age"`
	Gender      *string `json:"gender"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	MRN         *string `json:"mrn"`
	DateOfBirth *string `json:"dateOfBirth"`
}

func (s *ScribeService) lock(id string) func() {
	h := fnv.New32a()
	h.Write([]byte(id))
	m := &s.locks[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

// load fetches a session and checks it belongs to doctorID.
func (s *ScribeService) load(ctx context.Context, id, doctorID string) (*models.ScribeSession, error) {
	sess, err := s.store.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.DoctorID != doctorID {
		return nil, ErrForbidden
	}
	return sess, nil
}

func (s *ScribeService) Create(ctx context.Context, doctorID string) (*models.ScribeSession, error) {
	now := s.now()
	sess := &models.ScribeSession{
		ID:        uuid.NewString(),
		DoctorID:  doctorID,
		Patients:  []models.SessionPatient{},
		History:   make(map[string][]models.HistoryEntry),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("create scribe session: %w", err)
	}
	log.Info().Str("sessionId", sess.ID).Str("doctorId", doctorID).Msg("scribe session started")
	return sess, nil
}

func (s *ScribeService) Get(ctx context.Context, id, doctorID string) (*models.ScribeSession, error) {
	return s.load(ctx, id, doctorID)
}

// AppendTranscript adds a finalized chunk to the transcript and re-runs
// extraction over the transcript plus the current interim text.
func (s *ScribeService) AppendTranscript(ctx context.Context, id, doctorID, final, interim string) (*TranscriptResult, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if final = strings.TrimSpace(final); final != "" {
		sess.Transcript += final + "\n"
	}
	ex := scribe.Extract(sess.Transcript+strings.TrimSpace(interim), false)

	res := &TranscriptResult{Session: sess}
	res.Updates = append(scribe.MergePatient(&sess.Patient, ex.Patient), scribe.MergeNote(&sess.Note, ex.Fragments)...)

	if ex.Patient.Name != "" && ex.Patient.Age != "" && sess.Patient.MRN == "" {
		res.CreatedPatient = createPatient(sess, now)
	}

	// Only a pass that changed the draft can produce a new snapshot.
	if len(res.Updates) > 0 && scribe.ShouldAutoSave(sess.Patient, sess.Note) {
		entry := scribe.NewHistoryEntry(sess.Patient, sess.Note, now, true)
		res.AutoSaved = scribe.AddHistory(sess.History, scribe.HistoryKey(sess.Patient), entry)
	}

	sess.UpdatedAt = now
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("store scribe session: %w", err)
	}

	for _, u := range res.Updates {
		metrics.ScribeUpdatesTotal.WithLabelValues(u.Field).Inc()
	}
	if res.AutoSaved {
		metrics.ScribeAutoSavesTotal.Inc()
		log.Debug().Str("sessionId", id).Str("patient", scribe.HistoryKey(sess.Patient)).Msg("auto-saved consultation")
	}
	if res.Updates == nil {
		res.Updates = []scribe.Update{}
	}
	return res, nil
}

// createPatient registers the detected patient in the session and gives
// the draft its MRN and approximate date of birth.
func createPatient(sess *models.ScribeSession, now time.Time) *models.SessionPatient {
	age, _ := strconv.Atoi(sess.Patient.Age)
	p := models.SessionPatient{
		ID:          fmt.Sprintf("patient_%d", now.UnixMilli()),
		Name:        sess.Patient.Name,
		Age:         age,
		MRN:         utils.GenerateMRN(now),
		DateOfBirth: utils.ApproximateDOB(now, age),
		Phone:       sess.Patient.PhoneNumber,
		DoctorID:    sess.DoctorID,
		CreatedAt:   now,
	}
	sess.Patients = append(sess.Patients, p)
	sess.Patient.MRN = p.MRN
	if sess.Patient.DateOfBirth == "" {
		sess.Patient.DateOfBirth = p.DateOfBirth
	}
	log.Info().Str("sessionId", sess.ID).Str("mrn", p.MRN).Msg("patient created from transcript")
	return &sess.Patients[len(sess.Patients)-1]
}

func (s *ScribeService) UpdatePatient(ctx context.Context, id, doctorID string, upd PatientUpdate) (*models.ScribeSession, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}

	p := &sess.Patient
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&p.Name, upd.Name},
		{&p.Age, upd.Age},
		{&p.Gender, upd.Gender},
		{&p.PhoneNumber, upd.PhoneNumber},
		{&p.Address, upd.Address},
		{&p.MRN, upd.MRN},
		{&p.DateOfBirth, upd.DateOfBirth},
	} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}

	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("store scribe session: %w", err)
	}
	return sess, nil
}

// Save runs a final extraction that also accepts the last open sentence,
// stores the draft as an OPD record and files it in the patient's history.
func (s *ScribeService) Save(ctx context.Context, id, doctorID string) (*SaveResult, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	ex := scribe.Extract(sess.Transcript, true)
	updates := append(scribe.MergePatient(&sess.Patient, ex.Patient), scribe.MergeNote(&sess.Note, ex.Fragments)...)

	rec, err := NewOPDRecord(sess.DoctorID, sess.Patient, sess.Note, sess.Transcript, "", now)
	if err != nil {
		return nil, err
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert opd record: %w", err)
	}

	entry := scribe.NewHistoryEntry(sess.Patient, sess.Note, now, false)
	entry.RecordID = rec.ID.Hex()
	scribe.PrependHistory(sess.History, scribe.HistoryKey(sess.Patient), entry)
	sess.SavedIDs = append(sess.SavedIDs, rec.ID.Hex())
	sess.UpdatedAt = now

	if err := s.store.Save(ctx, sess); err != nil {
		// The record is already stored; the session only lags behind.
		log.Error().Err(err).Str("sessionId", id).Msg("failed to store session after save")
	}
	if s.notifier != nil {
		s.notifier.SendFollowUpReminder(rec)
	}

	log.Info().Str("sessionId", id).Str("recordId", rec.ID.Hex()).Msg("scribe session saved")
	if updates == nil {
		updates = []scribe.Update{}
	}
	return &SaveResult{Session: sess, Record: rec, Updates: updates}, nil
}

// History returns the session history filed under key, or under the
// current patient's key when key is empty. Newest entries come first.
func (s *ScribeService) History(ctx context.Context, id, doctorID, key string) ([]models.HistoryEntry, error) {
	sess, err := s.load(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = scribe.HistoryKey(sess.Patient)
	}
	entries := sess.History[key]
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

func (s *ScribeService) Patients(ctx context.Context, id, doctorID string) ([]models.SessionPatient, error) {
	sess, err := s.load(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}
	if sess.Patients == nil {
		return []models.SessionPatient{}, nil
	}
	return sess.Patients, nil
}

func (s *ScribeService) Delete(ctx context.Context, id, doctorID string) error {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.load(ctx, id, doctorID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("delete scribe session: %w", err)
	}
	return nil
}
