package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/eventful/internal/media"
	"github.com/joshua-takyi/eventful/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload is an image received with a request.
type Upload struct {
	File     io.Reader
	Filename string
}

type ViewRecorder interface {
	RecordView(ctx context.Context, eventID, viewer string) (int64, bool, error)
}

type EventService struct {
	events models.EventRepo
	users  models.UserRepo
	store  media.Store
	views  ViewRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewEventService builds the service. views may be nil, in which case views
// are counted directly on the event document.
func NewEventService(events models.EventRepo, users models.UserRepo, store media.Store, views ViewRecorder, logger *slog.Logger) *EventService {
	return &EventService{
		events: events,
		users:  users,
		store:  store,
		views:  views,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for deadlines.
func (es *EventService) SetClock(now func() time.Time) {
	es.now = now
}

func checkSchedule(e models.Event) error {
	if e.LastDateToJoin.After(e.EventStartDate) {
		return invalid("lastDateToJoin must not be after eventStartDate")
	}
	if e.EventEndDate != nil && !e.EventEndDate.After(e.EventStartDate) {
		return invalid("eventEndDate must be after eventStartDate")
	}
	return nil
}

// checkPatched validates an event as it would be after a patch.
func checkPatched(e models.Event) error {
	if err := checkSchedule(e); err != nil {
		return err
	}
	if e.MaximumParticipants < len(e.Participants) {
		return invalid("maximumParticipants cannot be below the current %d participants", len(e.Participants))
	}
	return nil
}

func (es *EventService) upload(ctx context.Context, poster *Upload) (string, error) {
	if poster == nil {
		return "", nil
	}
	url, err := es.store.Upload(ctx, poster.File, poster.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to upload poster: %w", err)
	}
	return url, nil
}

// discardImage removes an image whose record is gone or replaced. Failures are only logged.
func (es *EventService) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := es.store.Delete(ctx, url); err != nil {
		es.logger.Warn("failed to delete image", "url", url, "error", err)
	}
}

func (es *EventService) CreateEvent(ctx context.Context, hostID primitive.ObjectID, in models.EventInput, poster *Upload) (*models.Event, error) {
	in.Category = models.NormalizeCategories(in.Category)
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if err := models.Validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	now := es.now()
	event := models.Event{
		ID:                  primitive.NewObjectID(),
		Name:                in.Name,
		Description:         in.Description,
		Category:            in.Category,
		Location:            in.Location,
		EventStartDate:      in.EventStartDate,
		EventEndDate:        in.EventEndDate,
		LastDateToJoin:      in.LastDateToJoin,
		Host:                hostID,
		Participants:        []primitive.ObjectID{},
		MaximumParticipants: in.MaximumParticipants,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := checkSchedule(event); err != nil {
		return nil, err
	}

	url, err := es.upload(ctx, poster)
	if err != nil {
		return nil, err
	}
	event.ImgPoster = url

	created, err := es.events.CreateEvent(ctx, &event)
	if err != nil {
		es.discardImage(ctx, url)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	es.logger.Info("event created", "event_id", created.ID.Hex(), "host", hostID.Hex())
	return created, nil
}

func (es *EventService) details(ctx context.Context, event *models.Event) (*models.EventDetails, error) {
	ids := append([]primitive.ObjectID{event.Host}, event.Participants...)
	summaries, err := es.users.GetUserSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	byID := make(map[primitive.ObjectID]models.UserSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}

	out := &models.EventDetails{Event: *event, Participants: []models.UserSummary{}}
	if host, ok := byID[event.Host]; ok {
		out.Host = &host
	}
	for _, p := range event.Participants {
		if s, ok := byID[p]; ok {
			out.Participants = append(out.Participants, s)
		}
	}
	return out, nil
}

// GetEvent returns the event with host and participants resolved and records
// a view by viewer. View tracking never fails the read.
func (es *EventService) GetEvent(ctx context.Context, id primitive.ObjectID, viewer string) (*models.EventDetails, error) {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer != "" {
		event.WeeklyViews = es.recordView(ctx, event, viewer)
	}
	return es.details(ctx, event)
}

func (es *EventService) recordView(ctx context.Context, event *models.Event, viewer string) int64 {
	if es.views == nil {
		if err := es.events.IncrementViews(ctx, event.ID); err != nil {
			es.logger.Warn("failed to count view", "event_id", event.ID.Hex(), "error", err)
			return event.WeeklyViews
		}
		return event.WeeklyViews + 1
	}

	total, counted, err := es.views.RecordView(ctx, event.ID.Hex(), viewer)
	if err != nil {
		es.logger.Warn("failed to count view", "event_id", event.ID.Hex(), "error", err)
		return event.WeeklyViews
	}
	if !counted {
		return event.WeeklyViews
	}
	if err := es.events.SetWeeklyViews(ctx, event.ID, total); err != nil {
		es.logger.Warn("failed to store weekly views", "event_id", event.ID.Hex(), "error", err)
	}
	return total
}

// GetHostedEvent returns the event only to its host.
func (es *EventService) GetHostedEvent(ctx context.Context, id, caller primitive.ObjectID) (*models.EventDetails, error) {
	event, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsHost(caller) {
		return nil, ErrNotHost
	}
	return es.details(ctx, event)
}

func (es *EventService) ListEvents(ctx context.Context, filter models.EventFilter, offset, limit int) ([]models.Event, int, error) {
	if filter.Category != "" && !models.IsCategory(filter.Category) {
		return nil, 0, invalid("unknown category %q", filter.Category)
	}
	return es.events.ListEvents(ctx, filter, offset, limit)
}

func (es *EventService) SearchEvents(ctx context.Context, query string) ([]models.Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("search query is required")
	}
	if len(query) > 100 {
		return nil, invalid("search query is too long")
	}
	return es.events.SearchEvents(ctx, query)
}

// UpdateEvent applies patch for the host. A new poster replaces the old one,
// which is deleted once the record points at the new URL.
func (es *EventService) UpdateEvent(ctx context.Context, id, caller primitive.ObjectID, patch models.EventPatch, poster *Upload) (*models.Event, error) {
	patch.ImgPoster = nil
	if patch.Category != nil {
		patch.Category = models.NormalizeCategories(patch.Category)
		if len(patch.Category) == 0 {
			return nil, invalid("category cannot be empty")
		}
	}
	if patch.IsEmpty() && poster == nil {
		return nil, invalid("nothing to update")
	}
	if err := models.Validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}

	current, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsHost(caller) {
		return nil, ErrNotHost
	}

	if err := checkPatched(patch.Apply(*current)); err != nil {
		return nil, err
	}

	url, err := es.upload(ctx, poster)
	if err != nil {
		return nil, err
	}
	if url != "" {
		patch.ImgPoster = &url
	}

	updated, err := es.events.UpdateEvent(ctx, id, caller, patch)
	if errors.Is(err, models.ErrNotFound) {
		err = es.rejectedUpdate(ctx, id, caller, patch)
	} else if err != nil {
		err = fmt.Errorf("failed to update event: %w", err)
	}
	if err != nil {
		es.discardImage(ctx, url)
		return nil, err
	}

	if url != "" && current.ImgPoster != url {
		es.discardImage(ctx, current.ImgPoster)
	}
	return updated, nil
}

// rejectedUpdate explains a conditional update that matched nothing, from a
// fresh read of the event.
func (es *EventService) rejectedUpdate(ctx context.Context, id, caller primitive.ObjectID, patch models.EventPatch) error {
	current, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.IsHost(caller) {
		return ErrNotHost
	}
	if err := checkPatched(patch.Apply(*current)); err != nil {
		return err
	}
	return fmt.Errorf("update of event %s did not apply", id.Hex())
}

// DeleteEvent removes the event when caller hosts it. A missing event and a
// foreign one both report models.ErrNotFound.
func (es *EventService) DeleteEvent(ctx context.Context, id, caller primitive.ObjectID) error {
	deleted, err := es.events.DeleteEvent(ctx, id, caller)
	if err != nil {
		return err
	}
	es.discardImage(ctx, deleted.ImgPoster)
	es.logger.Info("event deleted", "event_id", id.Hex(), "host", caller.Hex())
	return nil
}

// JoinEvent adds caller to the participants and returns the resulting list.
// Joining an event twice is not an error.
func (es *EventService) JoinEvent(ctx context.Context, id, caller primitive.ObjectID) ([]models.UserSummary, error) {
	now := es.now()
	event, err := es.events.JoinEvent(ctx, id, caller, now)
	if errors.Is(err, models.ErrNotFound) {
		// No match: find out which condition failed.
		event, err = es.events.GetEventByID(ctx, id)
		if err != nil {
			return nil, err
		}
		switch {
		case event.IsParticipant(caller):
		case !event.AcceptsJoinsAt(now):
			return nil, ErrDeadlinePassed
		case event.IsFull():
			return nil, ErrEventFull
		default:
			return nil, fmt.Errorf("join of event %s did not apply", id.Hex())
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to join event: %w", err)
	}
	return es.participants(ctx, event)
}

// LeaveEvent removes caller from the participants. Leaving an event one is
// not part of is not an error.
func (es *EventService) LeaveEvent(ctx context.Context, id, caller primitive.ObjectID) ([]models.UserSummary, error) {
	event, err := es.events.LeaveEvent(ctx, id, caller)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to leave event: %w", err)
	}
	return es.participants(ctx, event)
}

func (es *EventService) participants(ctx context.Context, event *models.Event) ([]models.UserSummary, error) {
	if len(event.Participants) == 0 {
		return []models.UserSummary{}, nil
	}
	summaries, err := es.users.GetUserSummaries(ctx, event.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	return summaries, nil
}

func (es *EventService) EventsByCategory(ctx context.Context) ([]models.CategoryGroup, error) {
	groups, err := es.events.GroupByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to group events: %w", err)
	}
	return groups, nil
}
