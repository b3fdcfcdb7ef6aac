// Package mongostore implements db.Store on MongoDB using the document layout
// of the legacy deployment: workers and managers in "people", hotels in
// "Workplace" and result documents in "result".
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/db"
)

const (
	peopleCollection = "people"
	hotelCollection  = "Workplace"
	resultCollection = "result"
)

// Week markers as stored in the result collection
const (
	markerNow = "Now"
	markerOld = "Old"
)

var _ db.Store = (*Store)(nil)

// Store provides database operations using MongoDB
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client, pings the server and selects the database
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, db.ErrNotFound)
	}
	return fmt.Errorf("failed to query %s: %w", what, err)
}

// GetManager retrieves a person by id. The person must be a shift manager.
func (s *Store) GetManager(ctx context.Context, id model.WorkerID) (*model.Manager, error) {
	var doc struct {
		model.Manager `bson:",inline"`
		ShiftManager  bool `bson:"ShiftManager"`
	}
	err := s.db.Collection(peopleCollection).FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("manager %d", id))
	}
	if !doc.ShiftManager {
		return nil, fmt.Errorf("manager %d: %w", id, db.ErrNotFound)
	}
	m := doc.Manager
	return &m, nil
}

// GetWorkers retrieves every person whose workplace is the given hotel
func (s *Store) GetWorkers(ctx context.Context, workplace string) ([]model.Worker, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(peopleCollection).Find(ctx, bson.M{"Workplace": workplace}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer cursor.Close(ctx)

	workers := []model.Worker{}
	if err := cursor.All(ctx, &workers); err != nil {
		return nil, fmt.Errorf("failed to decode workers: %w", err)
	}
	return workers, nil
}

// GetWorker retrieves a single person
func (s *Store) GetWorker(ctx context.Context, id model.WorkerID) (*model.Worker, error) {
	var w model.Worker
	err := s.db.Collection(peopleCollection).FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&w)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("worker %d", id))
	}
	return &w, nil
}

// SetAvailability replaces a person's selected days
func (s *Store) SetAvailability(ctx context.Context, id model.WorkerID, days []model.DayAvailability) error {
	if days == nil {
		days = []model.DayAvailability{}
	}
	res, err := s.db.Collection(peopleCollection).UpdateOne(ctx,
		bson.M{"_id": int64(id)},
		bson.M{"$set": bson.M{"selectedDays": days}})
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("worker %d: %w", id, db.ErrNotFound)
	}
	return nil
}

// GetHotel retrieves a workplace document by hotel name
func (s *Store) GetHotel(ctx context.Context, name string) (*model.Hotel, error) {
	var hotel model.Hotel
	err := s.db.Collection(hotelCollection).FindOne(ctx, bson.M{"hotelName": name}).Decode(&hotel)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("hotel %q", name))
	}
	return &hotel, nil
}

// SaveRequirements creates or replaces a workplace's requirement table
func (s *Store) SaveRequirements(ctx context.Context, hotel string, table model.RequirementTable) error {
	_, err := s.db.Collection(hotelCollection).UpdateOne(ctx,
		bson.M{"hotelName": hotel},
		bson.M{"$set": bson.M{"schedule": table}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save requirements: %w", err)
	}
	return nil
}

// toStored maps a document's marker onto the stored Now/Old values
func toStored(doc model.ResultDocument) model.ResultDocument {
	switch doc.WeekMarker {
	case model.WeekPrevious:
		doc.WeekMarker = markerOld
	default:
		doc.WeekMarker = markerNow
	}
	if doc.Notes == nil {
		doc.Notes = []model.Note{}
	}
	return doc
}

func fromStored(doc *model.ResultDocument) *model.ResultDocument {
	switch doc.WeekMarker {
	case markerNow:
		doc.WeekMarker = model.WeekCurrent
	case markerOld:
		doc.WeekMarker = model.WeekPrevious
	}
	doc.GeneratedAt = doc.GeneratedAt.UTC()
	return doc
}

// GetResult retrieves the result of a hotel for the week starting on weekStart
func (s *Store) GetResult(ctx context.Context, hotel, weekStart string) (*model.ResultDocument, error) {
	var doc model.ResultDocument
	err := s.db.Collection(resultCollection).FindOne(ctx,
		bson.M{"hotelName": hotel, "relevantWeekStartDate": weekStart}).Decode(&doc)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("result for %q week %s", hotel, weekStart))
	}
	return fromStored(&doc), nil
}

// GetLatestResult retrieves the most recently generated result of a hotel
func (s *Store) GetLatestResult(ctx context.Context, hotel string) (*model.ResultDocument, error) {
	var doc model.ResultDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	err := s.db.Collection(resultCollection).FindOne(ctx, bson.M{"hotelName": hotel}, opts).Decode(&doc)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("latest result for %q", hotel))
	}
	return fromStored(&doc), nil
}

// SaveResult marks the hotel's current results Old and upserts doc as the new
// current result, keyed by hotel and week start. The two writes are not
// transactional; a failed upsert leaves the hotel without a current result.
func (s *Store) SaveResult(ctx context.Context, doc *model.ResultDocument) error {
	results := s.db.Collection(resultCollection)

	_, err := results.UpdateMany(ctx,
		bson.M{"hotelName": doc.HotelName, "Week": markerNow},
		bson.M{"$set": bson.M{"Week": markerOld}})
	if err != nil {
		return fmt.Errorf("failed to demote current result: %w", err)
	}

	current := *doc
	current.WeekMarker = model.WeekCurrent
	_, err = results.ReplaceOne(ctx,
		bson.M{"hotelName": doc.HotelName, "relevantWeekStartDate": doc.RelevantWeekStartDate},
		toStored(current),
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}

	doc.WeekMarker = model.WeekCurrent
	return nil
}
