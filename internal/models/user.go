package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserTypeDoctor  = "doctor"
	UserTypePatient = "patient"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // Hide from JSON responses
	Name     string             `bson:"name" json:"name"`
	UserType string             `bson:"userType" json:"userType"` // "doctor", "patient"

	// Doctor specific fields
	Specialty    string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Organization string `bson:"organization,omitempty" json:"organization,omitempty"`
	License      string `bson:"license,omitempty" json:"license,omitempty"`

	// Patient specific fields
	DateOfBirth         *time.Time `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Phone               string     `bson:"phone,omitempty" json:"phone,omitempty"`
	MedicalRecordNumber string     `bson:"medicalRecordNumber,omitempty" json:"medicalRecordNumber,omitempty"`
	MRN                 string     `bson:"mrn,omitempty" json:"mrn,omitempty"`
	Age                 int        `bson:"age,omitempty" json:"age,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func ValidUserType(t string) bool {
	return t == UserTypeDoctor || t == UserTypePatient
}
