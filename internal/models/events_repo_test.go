package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testNS = "eventful.events"

func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func sampleEvent() Event {
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	return Event{
		ID:                  primitive.NewObjectID(),
		Name:                "Jazz Night",
		Description:         "Live jazz by the lagoon",
		Category:            []string{CategoryMusic},
		Location:            "Accra",
		EventStartDate:      start,
		LastDateToJoin:      start.Add(-24 * time.Hour),
		Host:                primitive.NewObjectID(),
		Participants:        []primitive.ObjectID{},
		MaximumParticipants: 20,
	}
}

func TestMongodbRepo_GetEventByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		ev := sampleEvent()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, toDoc(t, ev)))

		got, err := repo.GetEventByID(context.Background(), ev.ID)
		require.NoError(t, err)
		assert.Equal(t, ev.ID, got.ID)
		assert.Equal(t, "Jazz Night", got.Name)
		assert.Equal(t, ev.Host, got.Host)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		_, err := repo.GetEventByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMongodbRepo_DeleteEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		ev := sampleEvent()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: toDoc(t, ev)},
		})

		got, err := repo.DeleteEvent(context.Background(), ev.ID, ev.Host)
		require.NoError(t, err)
		assert.Equal(t, ev.ID, got.ID)
	})

	mt.Run("no match is not found", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		_, err := repo.DeleteEvent(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMongodbRepo_JoinEvent_NoMatch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("conditions not met", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		_, err := repo.JoinEvent(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), time.Now())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMongodbRepo_SearchEvents(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns matches", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		a, b := sampleEvent(), sampleEvent()
		b.Name = "Jazz Brunch"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, toDoc(t, a), toDoc(t, b)))

		got, err := repo.SearchEvents(context.Background(), "jazz")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Jazz Brunch", got[1].Name)
	})

	mt.Run("empty result is an empty slice", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		got, err := repo.SearchEvents(context.Background(), "polka")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestMongodbRepo_GroupByCategory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes groups", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		ev := sampleEvent()
		group := bson.D{
			{Key: "_id", Value: CategoryMusic},
			{Key: "documents", Value: bson.A{toDoc(t, ev)}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, group))

		groups, err := repo.GroupByCategory(context.Background())
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, CategoryMusic, groups[0].Category)
		require.Len(t, groups[0].Events, 1)
		assert.Equal(t, ev.ID, groups[0].Events[0].ID)
	})
}

func TestMongodbRepo_CreateUser_Duplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.CreateUser(context.Background(), &User{Email: "ada@example.com", Username: "ada"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	mt.Run("inserted", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.CreateUser(context.Background(), &User{Email: " Ada@Example.com ", Username: "ada"})
		require.NoError(t, err)
		assert.False(t, u.ID.IsZero())
		assert.Equal(t, "ada@example.com", u.Email)
		assert.NotNil(t, u.Interests)
	})
}

func TestCategoryPipelineStages(t *testing.T) {
	p := CategoryPipeline()
	require.Len(t, p, 6)
	assert.Equal(t, "$set", p[0][0].Key)
	assert.Equal(t, "$unwind", p[1][0].Key)
	assert.Equal(t, "$group", p[3][0].Key)
}

func TestUpdateFilter(t *testing.T) {
	id, host := primitive.NewObjectID(), primitive.NewObjectID()
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	last := start.Add(-time.Hour)
	end := start.Add(3 * time.Hour)
	capacity := 4

	t.Run("name only", func(t *testing.T) {
		name := "Late Jazz"
		assert.Equal(t, bson.M{"_id": id, "host": host}, UpdateFilter(id, host, EventPatch{Name: &name}))
	})

	t.Run("capacity", func(t *testing.T) {
		f := UpdateFilter(id, host, EventPatch{MaximumParticipants: &capacity})
		expr := f["$expr"].(bson.M)["$lte"].(bson.A)
		assert.Equal(t, capacity, expr[1])
	})

	t.Run("deadline and end against stored start", func(t *testing.T) {
		f := UpdateFilter(id, host, EventPatch{LastDateToJoin: &last, EventEndDate: &end})
		assert.Equal(t, bson.M{"$gte": last, "$lt": end}, f["eventStartDate"])
		assert.NotContains(t, f, "lastDateToJoin")
	})

	t.Run("start against stored deadline and end", func(t *testing.T) {
		f := UpdateFilter(id, host, EventPatch{EventStartDate: &start})
		assert.Equal(t, bson.M{"$lte": start}, f["lastDateToJoin"])
		assert.Len(t, f["$or"], 2)
		assert.NotContains(t, f, "eventStartDate")
	})

	t.Run("whole schedule", func(t *testing.T) {
		f := UpdateFilter(id, host, EventPatch{EventStartDate: &start, LastDateToJoin: &last, EventEndDate: &end})
		assert.Equal(t, bson.M{"_id": id, "host": host}, f)
	})
}

func TestMongodbRepo_UpdateEvent_NoMatch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("conditions not met", func(mt *mtest.T) {
		repo := MongodbNewRepo(mt.Client, "eventful")
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		capacity := 1
		_, err := repo.UpdateEvent(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), EventPatch{MaximumParticipants: &capacity})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
