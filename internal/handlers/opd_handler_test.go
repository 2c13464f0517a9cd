package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

const recordsNS = "test.opd_records"

func recordDoc(id primitive.ObjectID, doctorID, mrn, diagnosis string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "doctorId", Value: doctorID},
		{Key: "patientDetails", Value: bson.D{
			{Key: "name", Value: "John Smith"},
			{Key: "age", Value: "45"},
			{Key: "gender", Value: "male"},
			{Key: "mrn", Value: mrn},
		}},
		{Key: "chiefComplaint", Value: "headache"},
		{Key: "diagnosis", Value: diagnosis},
		{Key: "recordingDate", Value: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)},
	}
}

func validSaveBody() map[string]any {
	return map[string]any{
		"patientDetails": map[string]any{"name": "John Smith", "age": "45", "gender": "male", "mrn": "MRN001"},
		"chiefComplaint": "severe headache",
		"diagnosis":      "migraine",
	}
}

func TestSaveOPDRecord(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	doctorID := primitive.NewObjectID().Hex()

	mt.Run("saved for caller", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		env := newTestEnv(mt)

		w := env.do(http.MethodPost, "/api/opd/save", env.token(t, doctorID, models.UserTypeDoctor), validSaveBody())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		body := decode(t, w)
		assert.Equal(t, "OPD record saved successfully", body["message"])
		rec := body["record"].(map[string]any)
		assert.Equal(t, doctorID, rec["doctorId"])
		assert.Equal(t, "migraine", rec["diagnosis"])
		assert.Equal(t, "", rec["treatment"])
		assert.NotEmpty(t, rec["id"])
		assert.NotEmpty(t, rec["recordingDate"])
	})

	mt.Run("missing chief complaint", func(mt *mtest.T) {
		env := newTestEnv(mt)
		body := validSaveBody()
		delete(body, "chiefComplaint")

		w := env.do(http.MethodPost, "/api/opd/save", env.token(t, doctorID, models.UserTypeDoctor), body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Doctor ID, patient details, and chief complaint are required"}`, w.Body.String())
	})

	mt.Run("incomplete patient", func(mt *mtest.T) {
		env := newTestEnv(mt)
		body := validSaveBody()
		body["patientDetails"] = map[string]any{"name": "John"}

		w := env.do(http.MethodPost, "/api/opd/save", env.token(t, doctorID, models.UserTypeDoctor), body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	mt.Run("another doctor's id", func(mt *mtest.T) {
		env := newTestEnv(mt)
		body := validSaveBody()
		body["doctorId"] = "someone-else"

		w := env.do(http.MethodPost, "/api/opd/save", env.token(t, doctorID, models.UserTypeDoctor), body)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	mt.Run("patients cannot save", func(mt *mtest.T) {
		env := newTestEnv(mt)
		w := env.do(http.MethodPost, "/api/opd/save", env.token(t, doctorID, models.UserTypePatient), validSaveBody())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetDoctorRecords(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	doctorID := primitive.NewObjectID().Hex()

	mt.Run("paginated", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch,
				recordDoc(primitive.NewObjectID(), doctorID, "MRN001", "migraine"),
				recordDoc(primitive.NewObjectID(), doctorID, "MRN002", "flu"),
			),
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: 12}}),
		)
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, "/api/opd/records/"+doctorID+"?page=2&limit=5", env.token(t, doctorID, models.UserTypeDoctor), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode(t, w)
		assert.Len(t, body["records"], 2)
		assert.Equal(t, map[string]any{
			"currentPage":  float64(2),
			"totalPages":   float64(3),
			"totalRecords": float64(12),
		}, body["pagination"])

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, "find", started.CommandName)
		assert.Equal(t, doctorID, started.Command.Lookup("filter").Document().Lookup("doctorId").StringValue())
	})

	mt.Run("empty", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch),
		)
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, "/api/opd/records/"+doctorID, env.token(t, doctorID, models.UserTypeDoctor), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"success":true,"records":[],"pagination":{"currentPage":1,"totalPages":0,"totalRecords":0}}`, w.Body.String())
	})

	mt.Run("bad page", func(mt *mtest.T) {
		env := newTestEnv(mt)
		w := env.do(http.MethodGet, "/api/opd/records/"+doctorID+"?page=0", env.token(t, doctorID, models.UserTypeDoctor), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetOPDRecord(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	doctorID := primitive.NewObjectID().Hex()
	patientID := primitive.NewObjectID()
	recID := primitive.NewObjectID()
	path := "/api/opd/record/" + recID.Hex()

	mt.Run("doctor reads record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch, recordDoc(recID, doctorID, "MRN001", "migraine")))
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, path, env.token(t, doctorID, models.UserTypeDoctor), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		rec := decode(t, w)["record"].(map[string]any)
		assert.Equal(t, recID.Hex(), rec["id"])
		assert.Equal(t, "migraine", rec["diagnosis"])
	})

	mt.Run("patient reads own record", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch, recordDoc(recID, doctorID, "MRN001", "migraine")),
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, userDoc(t, patientID, "john@x.com", "patient123", models.UserTypePatient)),
		)
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, path, env.token(t, patientID.Hex(), models.UserTypePatient), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	mt.Run("patient cannot read another patient's record", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch, recordDoc(recID, doctorID, "MRN002", "migraine")),
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, userDoc(t, patientID, "john@x.com", "patient123", models.UserTypePatient)),
		)
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, path, env.token(t, patientID.Hex(), models.UserTypePatient), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch))
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, path, env.token(t, doctorID, models.UserTypeDoctor), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"OPD record not found"}`, w.Body.String())
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		env := newTestEnv(mt)
		w := env.do(http.MethodGet, "/api/opd/record/not-an-id", env.token(t, doctorID, models.UserTypeDoctor), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateOPDRecord(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	doctorID := primitive.NewObjectID().Hex()
	recID := primitive.NewObjectID()
	path := "/api/opd/record/" + recID.Hex()

	mt.Run("updated", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: recordDoc(recID, doctorID, "MRN001", "tension headache")}))
		env := newTestEnv(mt)

		w := env.do(http.MethodPut, path, env.token(t, doctorID, models.UserTypeDoctor), map[string]any{
			"diagnosis":      "tension headache",
			"patientDetails": map[string]any{"phoneNumber": "+1-555-0199"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "OPD record updated successfully", body["message"])
		assert.Equal(t, "tension headache", body["record"].(map[string]any)["diagnosis"])

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		set := started.Command.Lookup("update").Document().Lookup("$set").Document()
		assert.Equal(t, "tension headache", set.Lookup("diagnosis").StringValue())
		assert.Equal(t, "+1-555-0199", set.Lookup("patientDetails.phoneNumber").StringValue())
		_, err := set.LookupErr("chiefComplaint")
		assert.Error(t, err, "untouched fields stay out of $set")
	})

	mt.Run("nothing to update", func(mt *mtest.T) {
		env := newTestEnv(mt)
		w := env.do(http.MethodPut, path, env.token(t, doctorID, models.UserTypeDoctor), map[string]any{"unknown": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"No fields to update"}`, w.Body.String())
	})

	mt.Run("required field blanked", func(mt *mtest.T) {
		env := newTestEnv(mt)
		w := env.do(http.MethodPut, path, env.token(t, doctorID, models.UserTypeDoctor), map[string]any{"chiefComplaint": " "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		env := newTestEnv(mt)

		w := env.do(http.MethodPut, path, env.token(t, doctorID, models.UserTypeDoctor), map[string]any{"diagnosis": "flu"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteOPDRecord(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	doctorID := primitive.NewObjectID().Hex()
	path := "/api/opd/record/" + primitive.NewObjectID().Hex()

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		env := newTestEnv(mt)

		w := env.do(http.MethodDelete, path, env.token(t, doctorID, models.UserTypeDoctor), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"OPD record deleted successfully"}`, w.Body.String())
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		env := newTestEnv(mt)

		w := env.do(http.MethodDelete, path, env.token(t, doctorID, models.UserTypeDoctor), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	mt.Run("patients cannot delete", func(mt *mtest.T) {
		env := newTestEnv(mt)
		w := env.do(http.MethodDelete, path, env.token(t, doctorID, models.UserTypePatient), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetPatientRecords(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	doctorID := primitive.NewObjectID().Hex()
	patientID := primitive.NewObjectID()

	mt.Run("patient reads own history", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, userDoc(t, patientID, "john@x.com", "patient123", models.UserTypePatient)),
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch, recordDoc(primitive.NewObjectID(), doctorID, "MRN001", "migraine")),
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, "/api/opd/patient/MRN001/records", env.token(t, patientID.Hex(), models.UserTypePatient), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decode(t, w)["records"], 1)
	})

	mt.Run("patient cannot read another MRN", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, userDoc(t, patientID, "john@x.com", "patient123", models.UserTypePatient)),
		)
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, "/api/opd/patient/MRN002/records", env.token(t, patientID.Hex(), models.UserTypePatient), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	mt.Run("doctor reads any MRN", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, recordsNS, mtest.FirstBatch),
		)
		env := newTestEnv(mt)

		w := env.do(http.MethodGet, "/api/opd/patient/MRN002/records", env.token(t, doctorID, models.UserTypeDoctor), nil)
		require.Equal(t, http.StatusOK, w.Code)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, "MRN002", started.Command.Lookup("filter").Document().Lookup("patientDetails.mrn").StringValue())
	})
}
