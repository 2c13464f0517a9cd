package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/lipi-scribe-api/internal/metrics"
	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

// RecordStore writes OPD records. Reads stay in the handlers, which build
// their own filters.
type RecordStore struct {
	coll *mongo.Collection
}

func NewRecordStore(db *mongo.Database) *RecordStore {
	return &RecordStore{coll: db.Collection(RecordsCollection)}
}

// Insert assigns rec an ID when it has none and stores it.
func (r *RecordStore) Insert(ctx context.Context, rec *models.OPDRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	start := time.Now()
	_, err := r.coll.InsertOne(ctx, rec)
	metrics.MongoOperationDuration.WithLabelValues("insert", RecordsCollection).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MongoErrorsTotal.WithLabelValues("insert", RecordsCollection).Inc()
		return err
	}
	return nil
}
