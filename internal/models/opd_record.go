package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PatientDetails struct {
	Name        string `bson:"name" json:"name"`
	Age         string `bson:"age" json:"age"`
	Gender      string `bson:"gender" json:"gender"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address     string `bson:"address,omitempty" json:"address,omitempty"`
	MRN         string `bson:"mrn,omitempty" json:"mrn,omitempty"`
	DateOfBirth string `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
}

// Complete reports whether the fields an OPD record requires are present.
func (p PatientDetails) Complete() bool {
	return p.Name != "" && p.Age != "" && p.Gender != ""
}

// ClinicalNote holds the free-text sections of a consultation.
type ClinicalNote struct {
	ChiefComplaint          string `bson:"chiefComplaint" json:"chiefComplaint"`
	HistoryOfPresentIllness string `bson:"historyOfPresentIllness" json:"historyOfPresentIllness"`
	PastMedicalHistory      string `bson:"pastMedicalHistory" json:"pastMedicalHistory"`
	Examination             string `bson:"examination" json:"examination"`
	Diagnosis               string `bson:"diagnosis" json:"diagnosis"`
	Treatment               string `bson:"treatment" json:"treatment"`
	FollowUp                string `bson:"followUp" json:"followUp"`
}

type OPDRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DoctorID       string             `bson:"doctorId" json:"doctorId"`
	PatientDetails PatientDetails     `bson:"patientDetails" json:"patientDetails"`
	ClinicalNote   `bson:",inline"`

	RecordingTranscript string    `bson:"recordingTranscript" json:"recordingTranscript"`
	AudioRecordingURL   string    `bson:"audioRecordingUrl" json:"audioRecordingUrl"`
	RecordingDate       time.Time `bson:"recordingDate" json:"recordingDate"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}
