package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/media"
	"github.com/joshua-takyi/eventful/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

type SignupInput struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserService struct {
	users  models.UserRepo
	tokens *helpers.Tokens
	store  media.Store
	logger *slog.Logger
}

func NewUserService(users models.UserRepo, tokens *helpers.Tokens, store media.Store, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		store:  store,
		logger: logger,
	}
}

func (us *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		FullName:  strings.TrimSpace(in.FullName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Username:  strings.TrimSpace(in.Username),
		Interests: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := models.Validate.Struct(user); err != nil {
		return nil, validationError(err)
	}
	if !helpers.IsPasswordStrong(in.Password) {
		return nil, ErrWeakPassword
	}

	if _, err := us.users.GetUserByEmail(ctx, user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)

	created, err := us.users.CreateUser(ctx, user)
	if errors.Is(err, models.ErrDuplicate) {
		// Lost a race, or the username is the clash.
		if _, lookupErr := us.users.GetUserByEmail(ctx, user.Email); lookupErr == nil {
			return nil, ErrEmailTaken
		}
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	us.logger.Info("user signed up", "user_id", created.ID.Hex())
	return created, nil
}

// Login checks the credentials and issues a session token. Unknown email and
// wrong password are reported the same way.
func (us *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := us.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := us.tokens.Issue(user.ID.Hex(), user.Username, user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (us *UserService) TokenTTL() time.Duration {
	return us.tokens.TTL()
}

func (us *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return us.users.GetUserByID(ctx, id)
}

func (us *UserService) GetProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username is required")
	}
	user, err := us.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		update.FullName = &name
	}
	if update.Interests != nil {
		cleaned := make([]string, 0, len(*update.Interests))
		for _, interest := range *update.Interests {
			if s := strings.TrimSpace(interest); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		update.Interests = &cleaned
	}
	if update.IsEmpty() {
		return nil, invalid("nothing to update")
	}
	if err := models.Validate.Struct(update); err != nil {
		return nil, validationError(err)
	}
	return us.users.UpdateProfile(ctx, id, update)
}

// SetProfilePicture stores the new picture and deletes the one it replaces.
func (us *UserService) SetProfilePicture(ctx context.Context, id primitive.ObjectID, image Upload) (*models.User, error) {
	url, err := us.store.Upload(ctx, image.File, image.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	previous, err := us.users.SetProfilePic(ctx, id, url)
	if err != nil {
		if delErr := us.store.Delete(ctx, url); delErr != nil {
			us.logger.Warn("failed to delete image", "url", url, "error", delErr)
		}
		return nil, err
	}

	if previous.ProfilePic != "" && previous.ProfilePic != url {
		if err := us.store.Delete(ctx, previous.ProfilePic); err != nil {
			us.logger.Warn("failed to delete image", "url", previous.ProfilePic, "error", err)
		}
	}
	updated := *previous
	updated.ProfilePic = url
	return &updated, nil
}
