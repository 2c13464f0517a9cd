package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
	"github.com/harentsoaR/lipi-scribe-api/internal/utils"
)

const (
	demoDoctorPassword  = "doctor123"
	demoPatientPassword = "patient123"
)

func date(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func demoUsers() []models.User {
	return []models.User{
		{Email: "sarah.johnson@hospital.com", Name: "Dr. Sarah Johnson", UserType: models.UserTypeDoctor,
			Specialty: "Cardiology", Organization: "City General Hospital", License: "MD12345"},
		{Email: "michael.chen@hospital.com", Name: "Dr. Michael Chen", UserType: models.UserTypeDoctor,
			Specialty: "Internal Medicine", Organization: "City General Hospital", License: "MD12346"},
		{Email: "emily.rodriguez@hospital.com", Name: "Dr. Emily Rodriguez", UserType: models.UserTypeDoctor,
			Specialty: "Pediatrics", Organization: "Children's Hospital", License: "MD12347"},
		{Email: "john.smith@email.com", Name: "John Smith", UserType: models.UserTypePatient,
			DateOfBirth: date("1979-03-15"), Phone: "+1-555-0123", MedicalRecordNumber: "MRN001", MRN: "MRN001", Age: 45},
		{Email: "maria.garcia@email.com", Name: "Maria Garcia", UserType: models.UserTypePatient,
			DateOfBirth: date("1992-07-22"), Phone: "+1-555-0124", MedicalRecordNumber: "MRN002", MRN: "MRN002", Age: 32},
		{Email: "robert.johnson@email.com", Name: "Robert Johnson", UserType: models.UserTypePatient,
			DateOfBirth: date("1957-11-08"), Phone: "+1-555-0125", MedicalRecordNumber: "MRN003", MRN: "MRN003", Age: 67},
	}
}

// SeedDemoUsers inserts three demo doctors and three demo patients when
// the users collection is empty. It returns the number inserted.
func SeedDemoUsers(ctx context.Context, db *mongo.Database, bcryptCost int) (int, error) {
	users := db.Collection(UsersCollection)
	count, err := users.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	doctorHash, err := utils.HashPassword(demoDoctorPassword, bcryptCost)
	if err != nil {
		return 0, err
	}
	patientHash, err := utils.HashPassword(demoPatientPassword, bcryptCost)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, 6)
	for _, u := range demoUsers() {
		u.ID = primitive.NewObjectID()
		u.Password = patientHash
		if u.UserType == models.UserTypeDoctor {
			u.Password = doctorHash
		}
		u.CreatedAt, u.UpdatedAt = now, now
		docs = append(docs, u)
	}

	if _, err := users.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("insert demo users: %w", err)
	}
	log.Info().Int("count", len(docs)).Msg("created demo users")
	return len(docs), nil
}
