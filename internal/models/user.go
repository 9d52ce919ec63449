package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"fullname" json:"fullname" validate:"required,min=2,max=100"`
	Email      string             `bson:"email" json:"email" validate:"required,email"`
	Username   string             `bson:"username" json:"username" validate:"required,username"`
	Password   string             `bson:"password" json:"-"`
	Bio        string             `bson:"bio" json:"bio" validate:"max=500"`
	Interests  []string           `bson:"interests" json:"interests" validate:"max=20,dive,max=50"`
	ProfilePic string             `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the public view of a user embedded in event payloads.
type UserSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Username   string             `bson:"username" json:"username"`
	FullName   string             `bson:"fullname" json:"fullname"`
	ProfilePic string             `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`
}

// PublicProfile is what anyone can see on /users/profile/:username.
type PublicProfile struct {
	UserSummary `bson:",inline"`
	Bio         string    `bson:"bio" json:"bio"`
	Interests   []string  `bson:"interests" json:"interests"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
	}
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{
		UserSummary: u.Summary(),
		Bio:         u.Bio,
		Interests:   u.Interests,
		CreatedAt:   u.CreatedAt,
	}
}

// ProfileUpdate carries the optional fields of a profile edit; nil means unchanged.
type ProfileUpdate struct {
	FullName  *string   `validate:"omitempty,min=2,max=100"`
	Bio       *string   `validate:"omitempty,max=500"`
	Interests *[]string `validate:"omitempty,max=20,dive,max=50"`
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.FullName == nil && p.Bio == nil && p.Interests == nil
}

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserSummaries(ctx context.Context, ids []primitive.ObjectID) ([]UserSummary, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*User, error)
	// SetProfilePic stores url and returns the user as it was before the change.
	SetProfilePic(ctx context.Context, id primitive.ObjectID, url string) (*User, error)
}
