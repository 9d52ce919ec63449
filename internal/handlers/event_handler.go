package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/middleware"
	"github.com/joshua-takyi/eventful/internal/models"
	"github.com/joshua-takyi/eventful/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	eventNotFound = "Event Not Found"
	maxImageSize  = 5 << 20
)

// eventForm is the create/update payload, accepted as multipart form or JSON.
// Dates are parsed by helpers.ParseTime.
type eventForm struct {
	Name                *string      `form:"name" json:"name"`
	Description         *string      `form:"description" json:"description"`
	Category            []string     `form:"category" json:"category"`
	Location            *string      `form:"location" json:"location"`
	EventStartDate      *string      `form:"eventStartDate" json:"eventStartDate"`
	EventEndDate        *string      `form:"eventEndDate" json:"eventEndDate"`
	LastDateToJoin      *string      `form:"lastDateToJoin" json:"lastDateToJoin"`
	MaximumParticipants *numberField `form:"maximumParticipants" json:"maximumParticipants"`
}

// numberField holds a numeric field as sent. Forms send it as text and may
// leave it blank; JSON may send a number or a string.
type numberField string

func (n *numberField) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = numberField(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = numberField(num)
	return nil
}

// parseOptionalInt treats a blank value as not supplied.
func parseOptionalInt(field string, raw *numberField) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(string(*raw))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %q", field, s)
	}
	return &v, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (f eventForm) input() (models.EventInput, error) {
	in := models.EventInput{
		Name:        deref(f.Name),
		Description: deref(f.Description),
		Category:    f.Category,
		Location:    deref(f.Location),
	}
	capacity, err := parseOptionalInt("maximumParticipants", f.MaximumParticipants)
	if err != nil {
		return in, err
	}
	if capacity != nil {
		in.MaximumParticipants = *capacity
	}
	if f.EventStartDate != nil {
		if in.EventStartDate, err = helpers.ParseTime(*f.EventStartDate); err != nil {
			return in, fmt.Errorf("eventStartDate: %w", err)
		}
	}
	if f.LastDateToJoin != nil {
		if in.LastDateToJoin, err = helpers.ParseTime(*f.LastDateToJoin); err != nil {
			return in, fmt.Errorf("lastDateToJoin: %w", err)
		}
	}
	if in.EventEndDate, err = parseOptionalTime("eventEndDate", f.EventEndDate); err != nil {
		return in, err
	}
	return in, nil
}

// present treats a blank form value as not supplied.
func present(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func parseOptionalTime(field string, raw *string) (*time.Time, error) {
	if present(raw) == nil {
		return nil, nil
	}
	t, err := helpers.ParseTime(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &t, nil
}

func (f eventForm) patch() (models.EventPatch, error) {
	p := models.EventPatch{
		Name:                present(f.Name),
		Description:         present(f.Description),
		Category:            f.Category,
		Location:            present(f.Location),
	}
	var err error
	if p.MaximumParticipants, err = parseOptionalInt("maximumParticipants", f.MaximumParticipants); err != nil {
		return p, err
	}
	if p.EventStartDate, err = parseOptionalTime("eventStartDate", f.EventStartDate); err != nil {
		return p, err
	}
	if p.EventEndDate, err = parseOptionalTime("eventEndDate", f.EventEndDate); err != nil {
		return p, err
	}
	if p.LastDateToJoin, err = parseOptionalTime("lastDateToJoin", f.LastDateToJoin); err != nil {
		return p, err
	}
	return p, nil
}

// imageUpload opens the optional image in field. The returned closer is never nil.
func imageUpload(c *gin.Context, field string) (*services.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("invalid %s upload", field)
	}
	if err := checkImage(fh); err != nil {
		return nil, noop, err
	}
	file, err := fh.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("invalid %s upload", field)
	}
	return &services.Upload{File: file, Filename: fh.Filename}, func() { file.Close() }, nil
}

func checkImage(fh *multipart.FileHeader) error {
	if fh.Size > maxImageSize {
		return fmt.Errorf("image must be smaller than %d MB", maxImageSize>>20)
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("file must be an image")
	}
	return nil
}

// caller returns the authenticated user id or answers 401.
func caller(c *gin.Context) (primitive.ObjectID, bool) {
	uid, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("no auth token"))
		return uid, false
	}
	return uid, true
}

// CreateEvent godoc
// @Summary Create an event
// @Description The caller becomes the host. Accepts multipart/form-data (with an optional imgPoster file) or JSON.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Success 201 {object} helpers.ApiResponse
// @Failure 400 {object} helpers.ApiResponse
// @Failure 401 {object} helpers.ApiResponse
// @Router /events [post]
func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID, ok := caller(c)
		if !ok {
			return
		}

		var form eventForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("Data Invalid: "+err.Error()))
			return
		}
		in, err := form.input()
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("Data Invalid: "+err.Error()))
			return
		}
		poster, closePoster, err := imageUpload(c, "imgPoster")
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		defer closePoster()

		event, err := es.CreateEvent(c.Request.Context(), hostID, in, poster)
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(event, "Event created"))
	}
}

// ListEvents godoc
// @Summary List events
// @Description Sorted by start date. Optional category filter.
// @Tags events
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "offset" default(0)
// @Param category query string false "category"
// @Success 200 {object} helpers.ApiResponse
// @Router /events [get]
func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset, err := helpers.ParsePagination(c.Query("limit"), c.Query("offset"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		filter := models.EventFilter{Category: strings.TrimSpace(c.Query("category"))}

		events, total, err := es.ListEvents(c.Request.Context(), filter, offset, limit)
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(events, helpers.Page(offset, limit), limit, total))
	}
}

// ListHostedEvents godoc
// @Summary List events hosted by a user
// @Tags events
// @Produce json
// @Param hostId path string true "host id"
// @Success 200 {object} helpers.ApiResponse
// @Router /events/hosted/{hostId} [get]
func ListHostedEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID, err := parseID(c.Param("hostId"))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		limit, offset, err := helpers.ParsePagination(c.Query("limit"), c.Query("offset"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		events, total, err := es.ListEvents(c.Request.Context(), models.EventFilter{Host: hostID}, offset, limit)
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(events, helpers.Page(offset, limit), limit, total))
	}
}

// viewer identifies who is looking at a page for view de-duplication.
func viewer(c *gin.Context) string {
	if id, ok := middleware.CallerID(c); ok {
		return "user:" + id.Hex()
	}
	return "ip:" + c.ClientIP()
}

// GetEvent godoc
// @Summary Get an event
// @Description Host and participants are resolved to public user summaries. Counts a view.
// @Tags events
// @Produce json
// @Param id path string true "event id"
// @Success 200 {object} helpers.ApiResponse
// @Failure 404 {object} helpers.ApiResponse
// @Router /events/{id} [get]
func GetEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		event, err := es.GetEvent(c.Request.Context(), id, viewer(c))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(event, ""))
	}
}

// GetHostedEvent godoc
// @Summary Get an event as its host
// @Tags events
// @Produce json
// @Security CookieAuth
// @Param id path string true "event id"
// @Success 200 {object} helpers.ApiResponse
// @Failure 403 {object} helpers.ApiResponse
// @Router /events/host/{id} [get]
func GetHostedEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c)
		if !ok {
			return
		}
		id, err := parseID(c.Param("id"))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		event, err := es.GetHostedEvent(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(event, ""))
	}
}

// SearchEvents godoc
// @Summary Search events
// @Description Case-insensitive substring match on name and description.
// @Tags events
// @Produce json
// @Param q query string true "search text"
// @Success 200 {object} helpers.ApiResponse
// @Failure 400 {object} helpers.ApiResponse
// @Router /events/search [get]
func SearchEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := es.SearchEvents(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		if len(events) == 0 {
			c.JSON(http.StatusOK, helpers.ApiResponse{Success: true, Message: "No results found...", Data: []models.Event{}})
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(events, "results found.."))
	}
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partial update by the host. A new imgPoster replaces the old image.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param id path string true "event id"
// @Success 200 {object} helpers.ApiResponse
// @Failure 400 {object} helpers.ApiResponse
// @Failure 403 {object} helpers.ApiResponse
// @Failure 404 {object} helpers.ApiResponse
// @Router /events/{id} [put]
func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c)
		if !ok {
			return
		}
		id, err := parseID(c.Param("id"))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}

		var form eventForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("Data Invalid: "+err.Error()))
			return
		}
		patch, err := form.patch()
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("Data Invalid: "+err.Error()))
			return
		}
		poster, closePoster, err := imageUpload(c, "imgPoster")
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		defer closePoster()

		event, err := es.UpdateEvent(c.Request.Context(), id, userID, patch, poster)
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(event, "Event updated"))
	}
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Only the host can delete. A foreign event reports not found.
// @Tags events
// @Produce json
// @Security CookieAuth
// @Param id path string true "event id"
// @Success 200 {object} helpers.ApiResponse
// @Failure 404 {object} helpers.ApiResponse
// @Router /events/{id} [delete]
func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c)
		if !ok {
			return
		}
		id, err := parseID(c.Param("id"))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		if err := es.DeleteEvent(c.Request.Context(), id, userID); err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Event Deleted"))
	}
}

type participantsPayload struct {
	Participants []models.UserSummary `json:"participants"`
}

// JoinEvent godoc
// @Summary Join an event
// @Tags events
// @Produce json
// @Security CookieAuth
// @Param id path string true "event id"
// @Success 200 {object} helpers.ApiResponse
// @Failure 404 {object} helpers.ApiResponse
// @Failure 409 {object} helpers.ApiResponse
// @Router /events/join/{id} [put]
func JoinEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c)
		if !ok {
			return
		}
		id, err := parseID(c.Param("id"))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		participants, err := es.JoinEvent(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(participantsPayload{participants}, "Joined event"))
	}
}

// LeaveEvent godoc
// @Summary Leave an event
// @Tags events
// @Produce json
// @Security CookieAuth
// @Param id path string true "event id"
// @Success 200 {object} helpers.ApiResponse
// @Failure 404 {object} helpers.ApiResponse
// @Router /events/leave/{id} [put]
func LeaveEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := caller(c)
		if !ok {
			return
		}
		id, err := parseID(c.Param("id"))
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		participants, err := es.LeaveEvent(c.Request.Context(), id, userID)
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(participantsPayload{participants}, "Left event"))
	}
}

// EventsByCategory godoc
// @Summary Events grouped by category
// @Description An event appears once under each distinct category it carries.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.ApiResponse
// @Router /events/getEventsByCategory [get]
func EventsByCategory(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := es.EventsByCategory(c.Request.Context())
		if err != nil {
			respondError(c, err, eventNotFound)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(groups, ""))
	}
}
