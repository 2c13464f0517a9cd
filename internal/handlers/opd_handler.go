package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/lipi-scribe-api/internal/database"
	"github.com/harentsoaR/lipi-scribe-api/internal/models"
	"github.com/harentsoaR/lipi-scribe-api/internal/services"
	"github.com/harentsoaR/lipi-scribe-api/internal/utils"
)

const (
	msgRecordRequired = "Doctor ID, patient details, and chief complaint are required"
	msgRecordNotFound = "OPD record not found"
)

type SaveOPDRequest struct {
	DoctorID       string                 `json:"doctorId"`
	PatientDetails *models.PatientDetails `json:"patientDetails"`
	models.ClinicalNote

	RecordingTranscript string `json:"recordingTranscript"`
	AudioRecordingURL   string `json:"audioRecordingUrl"`
}

type PatientDetailsUpdate struct {
	Name        *string `json:"name"`
	Age         *string `json:"age"`
	Gender      *string `json:"gender"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	MRN         *string `json:"mrn"`
	DateOfBirth *string `json:"dateOfBirth"`
}

// UpdateOPDRequest lists the fields a PUT may change. Nil means unchanged.
type UpdateOPDRequest struct {
	PatientDetails          *PatientDetailsUpdate `json:"patientDetails"`
	ChiefComplaint          *string               `json:"chiefComplaint"`
	HistoryOfPresentIllness *string               `json:"historyOfPresentIllness"`
	PastMedicalHistory      *string               `json:"pastMedicalHistory"`
	Examination             *string               `json:"examination"`
	Diagnosis               *string               `json:"diagnosis"`
	Treatment               *string               `json:"treatment"`
	FollowUp                *string               `json:"followUp"`
	RecordingTranscript     *string               `json:"recordingTranscript"`
	AudioRecordingURL       *string               `json:"audioRecordingUrl"`
}

// fields flattens the request into a $set document. It returns nil when
// the request changes nothing, and an error when a required field would
// be blanked.
func (r UpdateOPDRequest) fields() (bson.M, error) {
	set := bson.M{}
	add := func(key string, v *string, required bool) error {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		if required && s == "" {
			return errors.New(key + " cannot be empty")
		}
		set[key] = s
		return nil
	}

	for _, f := range []struct {
		key      string
		v        *string
		required bool
	}{
		{"chiefComplaint", r.ChiefComplaint, true},
		{"historyOfPresentIllness", r.HistoryOfPresentIllness, false},
		{"pastMedicalHistory", r.PastMedicalHistory, false},
		{"examination", r.Examination, false},
		{"diagnosis", r.Diagnosis, false},
		{"treatment", r.Treatment, false},
		{"followUp", r.FollowUp, false},
		{"recordingTranscript", r.RecordingTranscript, false},
		{"audioRecordingUrl", r.AudioRecordingURL, false},
	} {
		if err := add(f.key, f.v, f.required); err != nil {
			return nil, err
		}
	}

	if p := r.PatientDetails; p != nil {
		for _, f := range []struct {
			key      string
			v        *string
			required bool
		}{
			{"name", p.Name, true},
			{"age", p.Age, true},
			{"gender", p.Gender, true},
			{"phoneNumber", p.PhoneNumber, false},
			{"address", p.Address, false},
			{"mrn", p.MRN, false},
			{"dateOfBirth", p.DateOfBirth, false},
		} {
			if err := add("patientDetails."+f.key, f.v, f.required); err != nil {
				return nil, err
			}
		}
	}

	if len(set) == 0 {
		return nil, nil
	}
	return set, nil
}

// SaveOPDRecord stores a record written outside a scribe session. The
// doctor defaults to the caller; doctors cannot file records for others.
func (h *Handler) SaveOPDRecord(c *gin.Context) {
	var req SaveOPDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	doctorID := req.DoctorID
	if doctorID == "" {
		doctorID = callerID(c)
	}
	if doctorID != callerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
		return
	}

	var patient models.PatientDetails
	if req.PatientDetails != nil {
		patient = *req.PatientDetails
	}
	rec, err := services.NewOPDRecord(doctorID, patient, req.ClinicalNote, req.RecordingTranscript, req.AudioRecordingURL, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgRecordRequired})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Records.Insert(ctx, rec); err != nil {
		internalError(c, "failed to save opd record", err)
		return
	}
	if h.Notifier != nil {
		h.Notifier.SendFollowUpReminder(rec)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"record":  rec,
		"message": "OPD record saved successfully",
	})
}

// GetDoctorRecords lists a doctor's records, newest first, one page at a time.
func (h *Handler) GetDoctorRecords(c *gin.Context) {
	page, limit, err := utils.ParsePage(c.Query("page"), c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.listRecords(c, bson.M{"doctorId": c.Param("doctorId")}, page, limit)
}

// GetPatientRecords lists the records filed under an MRN. Patients may
// only read their own.
func (h *Handler) GetPatientRecords(c *gin.Context) {
	mrn := c.Param("mrn")
	if callerType(c) == models.UserTypePatient {
		user, err := h.currentUser(c)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			internalError(c, "failed to load current user", err)
			return
		}
		if err != nil || user.MedicalRecordNumber != mrn {
			c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
			return
		}
	}

	page, limit, err := utils.ParsePage(c.Query("page"), c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.listRecords(c, bson.M{"patientDetails.mrn": mrn}, page, limit)
}

func (h *Handler) listRecords(c *gin.Context, filter bson.M, page, limit int) {
	ctx, cancel := dbContext(c)
	defer cancel()

	coll := h.DB.Collection(database.RecordsCollection)
	findOptions := options.Find().
		SetSort(bson.D{{Key: "recordingDate", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		internalError(c, "failed to retrieve opd records", err)
		return
	}
	defer cursor.Close(ctx)

	records := make([]models.OPDRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		internalError(c, "failed to decode opd records", err)
		return
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		internalError(c, "failed to count opd records", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"records":    records,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

func recordID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("recordId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return id, false
	}
	return id, true
}

func (h *Handler) GetOPDRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	var rec models.OPDRecord
	err := h.DB.Collection(database.RecordsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgRecordNotFound})
		return
	}
	if err != nil {
		internalError(c, "failed to retrieve opd record", err)
		return
	}

	if callerType(c) == models.UserTypePatient {
		user, err := h.currentUser(c)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			internalError(c, "failed to load current user", err)
			return
		}
		// Same answer as a missing record, so ids cannot be probed.
		if err != nil || rec.PatientDetails.MRN == "" || rec.PatientDetails.MRN != user.MedicalRecordNumber {
			c.JSON(http.StatusNotFound, gin.H{"error": msgRecordNotFound})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "record": rec})
}

func (h *Handler) UpdateOPDRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	var req UpdateOPDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	set, err := req.fields()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if set == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	set["updatedAt"] = time.Now().UTC()

	ctx, cancel := dbContext(c)
	defer cancel()

	var rec models.OPDRecord
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.DB.Collection(database.RecordsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgRecordNotFound})
		return
	}
	if err != nil {
		internalError(c, "failed to update opd record", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"record":  rec,
		"message": "OPD record updated successfully",
	})
}

func (h *Handler) DeleteOPDRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	res, err := h.DB.Collection(database.RecordsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		internalError(c, "failed to delete opd record", err)
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgRecordNotFound})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OPD record deleted successfully"})
}
