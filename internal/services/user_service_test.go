package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/media/mediatest"
	"github.com/joshua-takyi/eventful/internal/models"
	"github.com/joshua-takyi/eventful/internal/models/modelstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(users *modelstest.UserRepo, store *mediatest.Store) (*UserService, *helpers.Tokens) {
	tokens := helpers.NewTokens("test-secret", time.Hour)
	return NewUserService(users, tokens, store, discardLogger()), tokens
}

func signupInput() SignupInput {
	return SignupInput{
		FullName: "Ada Lovelace",
		Email:    " Ada@Example.com ",
		Username: "ada",
		Password: "Str0ng!pass",
	}
}

func TestSignup(t *testing.T) {
	users := modelstest.NewUserRepo()
	svc, _ := newUserService(users, &mediatest.Store{})

	user, err := svc.Signup(context.Background(), signupInput())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "Str0ng!pass", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Str0ng!pass")))

	cost, err := bcrypt.Cost([]byte(user.Password))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestSignup_Rejections(t *testing.T) {
	existing := models.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Username: "someone"}
	taken := models.User{ID: primitive.NewObjectID(), Email: "other@example.com", Username: "ada"}

	t.Run("duplicate email", func(t *testing.T) {
		svc, _ := newUserService(modelstest.NewUserRepo(existing), &mediatest.Store{})
		_, err := svc.Signup(context.Background(), signupInput())
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.Equal(t, "User already exists with that email", err.Error())
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _ := newUserService(modelstest.NewUserRepo(taken), &mediatest.Store{})
		_, err := svc.Signup(context.Background(), signupInput())
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("weak password", func(t *testing.T) {
		svc, _ := newUserService(modelstest.NewUserRepo(), &mediatest.Store{})
		in := signupInput()
		in.Password = "password"
		_, err := svc.Signup(context.Background(), in)
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc, _ := newUserService(modelstest.NewUserRepo(), &mediatest.Store{})
		in := signupInput()
		in.Email = "nope"
		_, err := svc.Signup(context.Background(), in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestLogin(t *testing.T) {
	users := modelstest.NewUserRepo()
	svc, tokens := newUserService(users, &mediatest.Store{})
	ctx := context.Background()

	created, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "ADA@example.com", "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID.Hex(), claims.UserID)
	assert.Equal(t, "ada", claims.Username)

	_, _, err = svc.Login(ctx, "ada@example.com", "Wr0ng!pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetProfile(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Username: "ada", FullName: "Ada", Bio: "maths", Password: "secret"}
	svc, _ := newUserService(modelstest.NewUserRepo(u), &mediatest.Store{})

	profile, err := svc.GetProfile(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "maths", profile.Bio)
	assert.Equal(t, u.ID, profile.ID)

	_, err = svc.GetProfile(context.Background(), "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Username: "ada", FullName: "Ada", Bio: "old"}
	users := modelstest.NewUserRepo(u)
	svc, _ := newUserService(users, &mediatest.Store{})
	ctx := context.Background()

	bio := "new bio"
	interests := []string{" chess ", "", "jazz"}
	updated, err := svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Bio: &bio, Interests: &interests})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	assert.Equal(t, []string{"chess", "jazz"}, updated.Interests)
	assert.Equal(t, "Ada", updated.FullName, "unsupplied fields are untouched")

	var verr *ValidationError
	_, err = svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{})
	assert.ErrorAs(t, err, &verr)

	long := strings.Repeat("x", 501)
	_, err = svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Bio: &long})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateProfile(ctx, primitive.NewObjectID(), models.ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetProfilePicture(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Username: "ada", ProfilePic: "https://images.test/old.jpg"}
	users := modelstest.NewUserRepo(u)
	store := &mediatest.Store{}
	svc, _ := newUserService(users, store)

	updated, err := svc.SetProfilePicture(context.Background(), u.ID, Upload{File: strings.NewReader("img"), Filename: "me.jpg"})
	require.NoError(t, err)
	require.Len(t, store.Uploads, 1)
	assert.Equal(t, store.Uploads[0], updated.ProfilePic)
	assert.Equal(t, []string{"https://images.test/old.jpg"}, store.Deletes)

	stored, _ := users.Get(u.ID)
	assert.Equal(t, store.Uploads[0], stored.ProfilePic)
}

func TestSetProfilePicture_UnknownUserRemovesUpload(t *testing.T) {
	store := &mediatest.Store{}
	svc, _ := newUserService(modelstest.NewUserRepo(), store)

	_, err := svc.SetProfilePicture(context.Background(), primitive.NewObjectID(), Upload{File: strings.NewReader("img"), Filename: "me.jpg"})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, store.Uploads, store.Deletes)
}
