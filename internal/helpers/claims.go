package helpers

import (
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ObjectID returns the caller's user id. Tokens from an external issuer may
// only carry sub, so that is used when userId is empty.
func (sc *SessionClaims) ObjectID() (primitive.ObjectID, error) {
	id := sc.UserID
	if id == "" {
		id = sc.Subject
	}
	return primitive.ObjectIDFromHex(id)
}

func (sc *SessionClaims) IsOwner(userID primitive.ObjectID) bool {
	id, err := sc.ObjectID()
	return err == nil && id == userID
}
