package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Participants == nil {
		event.Participants = []primitive.ObjectID{}
	}

	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("error inserting event: %w", err)
	}
	return event, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var event Event
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context, filter EventFilter, offset, limit int) ([]Event, int, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %w", err)
	}

	query := bson.M{}
	if !filter.Host.IsZero() {
		query["host"] = filter.Host
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "eventStartDate", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, fmt.Errorf("error decoding events: %w", err)
	}
	return events, int(total), nil
}

// SearchFilter matches query as a literal, case-insensitive substring of name or description.
func SearchFilter(query string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		},
	}
}

func (mdb *MongodbRepo) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "eventStartDate", Value: 1}})
	cursor, err := col.Find(ctx, SearchFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("error searching events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}
	return events, nil
}

func patchSet(patch EventPatch) bson.M {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = patch.Category
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.EventStartDate != nil {
		set["eventStartDate"] = *patch.EventStartDate
	}
	if patch.EventEndDate != nil {
		set["eventEndDate"] = *patch.EventEndDate
	}
	if patch.LastDateToJoin != nil {
		set["lastDateToJoin"] = *patch.LastDateToJoin
	}
	if patch.MaximumParticipants != nil {
		set["maximumParticipants"] = *patch.MaximumParticipants
	}
	if patch.ImgPoster != nil {
		set["imgPoster"] = *patch.ImgPoster
	}
	return set
}

// UpdateFilter selects the event only for its host and only while the stored
// fields the patch leaves alone still agree with the patched ones: the
// participants fit a new maximum and the schedule stays ordered. Ordering
// among fields the patch sets together is checked before the call.
func UpdateFilter(id, host primitive.ObjectID, patch EventPatch) bson.M {
	filter := bson.M{"_id": id, "host": host}
	if patch.MaximumParticipants != nil {
		filter["$expr"] = bson.M{
			"$lte": bson.A{
				bson.M{"$size": bson.M{"$ifNull": bson.A{"$participants", bson.A{}}}},
				*patch.MaximumParticipants,
			},
		}
	}

	start, last, end := patch.EventStartDate, patch.LastDateToJoin, patch.EventEndDate
	if last != nil && start == nil {
		filter["eventStartDate"] = bson.M{"$gte": *last}
	}
	if end != nil && start == nil {
		// Combined with the clause above when both are set.
		cond, _ := filter["eventStartDate"].(bson.M)
		if cond == nil {
			cond = bson.M{}
		}
		cond["$lt"] = *end
		filter["eventStartDate"] = cond
	}
	if start != nil && last == nil {
		filter["lastDateToJoin"] = bson.M{"$lte": *start}
	}
	if start != nil && end == nil {
		filter["$or"] = bson.A{
			bson.M{"eventEndDate": nil},
			bson.M{"eventEndDate": bson.M{"$gt": *start}},
		}
	}
	return filter
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id, host primitive.ObjectID, patch EventPatch) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	if err := col.FindOneAndUpdate(ctx, UpdateFilter(id, host, patch), bson.M{"$set": patchSet(patch)}, opts).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id, host primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var event Event
	if err := col.FindOneAndDelete(ctx, bson.M{"_id": id, "host": host}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error deleting event: %w", err)
	}
	return &event, nil
}

// JoinFilter selects the event only while userID may still join it at now.
func JoinFilter(id, userID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"_id":            id,
		"lastDateToJoin": bson.M{"$gt": now},
		"participants":   bson.M{"$ne": userID},
		"$expr": bson.M{
			"$lt": bson.A{
				bson.M{"$size": bson.M{"$ifNull": bson.A{"$participants", bson.A{}}}},
				"$maximumParticipants",
			},
		},
	}
}

func (mdb *MongodbRepo) JoinEvent(ctx context.Context, id, userID primitive.ObjectID, now time.Time) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$set":      bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	if err := col.FindOneAndUpdate(ctx, JoinFilter(id, userID, now), update, opts).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error joining event: %w", err)
	}
	return &event, nil
}

func (mdb *MongodbRepo) LeaveEvent(ctx context.Context, id, userID primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{
		"$pull": bson.M{"participants": userID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error leaving event: %w", err)
	}
	return &event, nil
}

// CategoryPipeline groups events by each distinct tag they carry. Tags are
// de-duplicated per event first so no event lands in a bucket twice.
func CategoryPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"tags": bson.M{"$setUnion": bson.A{bson.M{"$ifNull": bson.A{"$category", bson.A{}}}, bson.A{}}}}}},
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$sort", Value: bson.D{{Key: "eventStartDate", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tags",
			"documents": bson.M{"$push": "$$ROOT"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{"documents.tags": 0}}},
	}
}

func (mdb *MongodbRepo) GroupByCategory(ctx context.Context) ([]CategoryGroup, error) {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	cursor, err := col.Aggregate(ctx, CategoryPipeline())
	if err != nil {
		return nil, fmt.Errorf("error aggregating categories: %w", err)
	}
	defer cursor.Close(ctx)

	groups := []CategoryGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("error decoding categories: %w", err)
	}
	return groups, nil
}

func (mdb *MongodbRepo) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"weeklyViews": 1}}); err != nil {
		return fmt.Errorf("error incrementing views: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) SetWeeklyViews(ctx context.Context, id primitive.ObjectID, views int64) error {
	col, err := mdb.GetCollection(ctx, EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"weeklyViews": views}}); err != nil {
		return fmt.Errorf("error setting views: %w", err)
	}
	return nil
}
