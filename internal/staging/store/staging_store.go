package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/revops/revenue-sync-service/internal/staging/model"
)

// StagingRepository handles MongoDB operations for the raw record staging area.
type StagingRepository struct {
	Collection *mongo.Collection
}

// NewStagingRepository initializes a repository for the staging collection.
func NewStagingRepository(db *mongo.Database, collectionName string) *StagingRepository {
	return &StagingRepository{
		Collection: db.Collection(collectionName),
	}
}

// EnsureIndexes creates the uniqueness and TTL indexes the staging area
// relies on. Safe to call on every startup.
func (repo *StagingRepository) EnsureIndexes(ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source", Value: 1}, {Key: "external_id", Value: 1}, {Key: "sync_run_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "staged_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		},
	}
	_, err := repo.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// StageRecord upserts one raw record keyed by (source, external_id, run).
// $setOnInsert keeps the first staged copy when a page is replayed.
func (repo *StagingRepository) StageRecord(record model.StagedRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{
		"source":      record.Source,
		"external_id": record.ExternalId,
		"sync_run_id": record.SyncRunId,
	}
	update := bson.M{"$setOnInsert": record}
	opts := options.Update().SetUpsert(true)

	_, err := repo.Collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// StageRecords upserts a full page.
func (repo *StagingRepository) StageRecords(records []model.StagedRecord) error {
	for _, record := range records {
		if err := repo.StageRecord(record); err != nil {
			return err
		}
	}
	return nil
}

// MarkProcessed flags every staged record of a page as merged.
func (repo *StagingRepository) MarkProcessed(syncRunId string, externalIds []string) error {
	if len(externalIds) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{
		"sync_run_id": syncRunId,
		"external_id": bson.M{"$in": externalIds},
	}
	_, err := repo.Collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"processed": true}})
	return err
}

// FindUnprocessed returns the staged records of a run the merge never reached.
func (repo *StagingRepository) FindUnprocessed(syncRunId string) ([]model.StagedRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := repo.Collection.Find(ctx, bson.M{"sync_run_id": syncRunId, "processed": false})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.StagedRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// PurgeRun drops all staged records of a finished run ahead of the TTL.
func (repo *StagingRepository) PurgeRun(syncRunId string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := repo.Collection.DeleteMany(ctx, bson.M{"sync_run_id": syncRunId})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
