package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var summaryProjection = bson.M{"_id": 1, "username": 1, "fullname": 1, "profile_pic": 1}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Interests == nil {
		user.Interests = []string{}
	}

	if _, err := col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}
	return user, nil
}

func (mdb *MongodbRepo) findOneUser(ctx context.Context, filter bson.M) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var user User
	if err := col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return mdb.findOneUser(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return mdb.findOneUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (mdb *MongodbRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return mdb.findOneUser(ctx, bson.M{"username": username})
}

func (mdb *MongodbRepo) GetUserSummaries(ctx context.Context, ids []primitive.ObjectID) ([]UserSummary, error) {
	if len(ids) == 0 {
		return []UserSummary{}, nil
	}
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(summaryProjection))
	if err != nil {
		return nil, fmt.Errorf("error finding users: %w", err)
	}
	defer cursor.Close(ctx)

	var found []UserSummary
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("error decoding users: %w", err)
	}
	return OrderSummaries(ids, found), nil
}

// OrderSummaries returns summaries in the order of ids, dropping ids with no match.
func OrderSummaries(ids []primitive.ObjectID, found []UserSummary) []UserSummary {
	byID := make(map[primitive.ObjectID]UserSummary, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (mdb *MongodbRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	set := bson.M{"updatedAt": time.Now()}
	if update.FullName != nil {
		set["fullname"] = *update.FullName
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Interests != nil {
		set["interests"] = *update.Interests
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) SetProfilePic(ctx context.Context, id primitive.ObjectID, url string) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	update := bson.M{"$set": bson.M{"profile_pic": url, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var previous User
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&previous); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating profile picture: %w", err)
	}
	return &previous, nil
}
