package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

const DefaultTextbeltURL = "https://textbelt.com/text"

// NotificationService sends SMS through Textbelt. Without an API key it
// only logs.
type NotificationService struct {
	apiKey string
	url    string
	client *http.Client
	wg     sync.WaitGroup
}

func NewNotificationService(apiKey, url string) *NotificationService {
	if url == "" {
		url = DefaultTextbeltURL
	}
	return &NotificationService{
		apiKey: apiKey,
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *NotificationService) Enabled() bool {
	return s.apiKey != ""
}

// SendFollowUpReminder texts the patient the follow-up plan of a saved
// record. Records without a phone number or follow-up are skipped.
func (s *NotificationService) SendFollowUpReminder(rec *models.OPDRecord) {
	phone := rec.PatientDetails.PhoneNumber
	switch {
	case !s.Enabled():
		return
	case phone == "":
		log.Debug().Str("recordId", rec.ID.Hex()).Msg("SMS not sent: patient has no phone number")
		return
	case rec.FollowUp == "":
		return
	}

	body := fmt.Sprintf("Hello %s, your doctor recommends a follow-up: %s. Visit of %s.",
		rec.PatientDetails.Name,
		rec.FollowUp,
		rec.RecordingDate.Format("Jan 2"),
	)

	// Send in a goroutine so it doesn't block the API response.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.send(rec.ID.Hex(), phone, body)
	}()
}

// Wait blocks until in-flight messages are sent.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// send posts one message. Logs carry the record ID, never the phone number.
func (s *NotificationService) send(recordID, phone, message string) {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		log.Error().Err(err).Str("recordId", recordID).Msg("encode textbelt request")
		return
	}

	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(postBody))
	if err != nil {
		log.Error().Err(err).Str("recordId", recordID).Msg("failed to send Textbelt request")
		return
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Error().Err(err).Str("recordId", recordID).Int("status", resp.StatusCode).Msg("unreadable Textbelt response")
		return
	}
	if !result.Success {
		log.Warn().Str("recordId", recordID).Str("reason", result.Error).Msg("Textbelt rejected SMS")
		return
	}
	log.Info().Str("recordId", recordID).Msg("follow-up SMS sent")
}
