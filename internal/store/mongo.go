package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"call-assessment-service/internal/config"
	"call-assessment-service/internal/models"
	"call-assessment-service/internal/observability/metrics"
)

// MongoStore implements Store on a MongoDB (or wire-compatible) database.
// The client is constructed once per process and reused.
type MongoStore struct {
	client      *mongo.Client
	transcripts *mongo.Collection
	assessments *mongo.Collection
	metrics     *metrics.Metrics
}

// NewMongoStore connects to the configured database and verifies the
// connection with a ping.
func NewMongoStore(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	db := client.Database(cfg.Database)
	return &MongoStore{
		client:      client,
		transcripts: db.Collection(cfg.TranscriptCollection),
		assessments: db.Collection(cfg.AssessmentCollection),
		metrics:     metrics.DefaultMetrics,
	}, nil
}

// InsertTranscript writes one transcript record.
func (s *MongoStore) InsertTranscript(ctx context.Context, rec models.TranscriptRecord) error {
	if _, err := s.transcripts.InsertOne(ctx, rec); err != nil {
		s.metrics.RecordStoreError("insert_transcript")
		return err
	}
	return nil
}

// InsertAssessment writes one assessment record.
func (s *MongoStore) InsertAssessment(ctx context.Context, rec models.AssessmentRecord) error {
	if _, err := s.assessments.InsertOne(ctx, rec); err != nil {
		s.metrics.RecordStoreError("insert_assessment")
		return err
	}
	return nil
}

// ListTranscripts returns all transcripts projected to id, call_id and
// transcript.
func (s *MongoStore) ListTranscripts(ctx context.Context) ([]models.TranscriptView, error) {
	proj := options.Find().SetProjection(bson.D{
		{Key: "_id", Value: 1},
		{Key: "call_id", Value: 1},
		{Key: "transcript", Value: 1},
	})

	cursor, err := s.transcripts.Find(ctx, bson.D{}, proj)
	if err != nil {
		s.metrics.RecordStoreError("list_transcripts")
		return nil, err
	}
	defer cursor.Close(ctx)

	views := make([]models.TranscriptView, 0)
	if err := cursor.All(ctx, &views); err != nil {
		s.metrics.RecordStoreError("list_transcripts")
		return nil, err
	}
	return views, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
