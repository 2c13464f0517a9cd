package models

import "time"

// ScribeSession is the live state of one recorded consultation. It lives
// in the session store, not in MongoDB, until it is saved as an OPDRecord.
type ScribeSession struct {
	ID         string                    `json:"id"`
	DoctorID   string                    `json:"doctorId"`
	Transcript string                    `json:"transcript"`
	Patient    PatientDetails            `json:"patientDetails"`
	Note       ClinicalNote              `json:"note"`
	Patients   []SessionPatient          `json:"patients"`
	History    map[string][]HistoryEntry `json:"history"`
	SavedIDs   []string                  `json:"savedRecordIds,omitempty"`
	CreatedAt  time.Time                 `json:"createdAt"`
	UpdatedAt  time.Time                 `json:"updatedAt"`
}

// SessionPatient is a patient created automatically from the transcript.
type SessionPatient struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	MRN         string    `json:"mrn"`
	DateOfBirth string    `json:"dateOfBirth"`
	Phone       string    `json:"phone"`
	DoctorID    string    `json:"doctorId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HistoryEntry is one consultation snapshot in a patient's session history.
type HistoryEntry struct {
	ID           string       `json:"id"`
	PatientID    string       `json:"patientId"`
	Date         string       `json:"date"`
	VisitType    string       `json:"visitType"`
	Diagnosis    string       `json:"diagnosis"`
	Prescription string       `json:"prescription"`
	Notes        string       `json:"notes"`
	FollowUp     string       `json:"followUp"`
	IsAutoSaved  bool         `json:"isAutoSaved"`
	RecordID     string       `json:"recordId,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Snapshot     ClinicalNote `json:"fullRecord"`
}
