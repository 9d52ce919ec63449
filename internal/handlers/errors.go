package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/models"
	"github.com/joshua-takyi/eventful/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps a service error to a status. Errors with no mapping are
// attached to the context for ErrorHandler to log and answer with a 500.
func respondError(c *gin.Context, err error, notFound string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse(verr.Msg))
	case errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrNotHost):
		c.JSON(http.StatusForbidden, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, helpers.ErrorResponse(notFound))
	case errors.Is(err, services.ErrDeadlinePassed),
		errors.Is(err, services.ErrEventFull):
		c.JSON(http.StatusConflict, helpers.ErrorResponse(err.Error()))
	default:
		_ = c.Error(err)
	}
}

func parseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(helpers.StringTrim(raw))
	if err != nil {
		return primitive.NilObjectID, services.ErrInvalidID
	}
	return id, nil
}
