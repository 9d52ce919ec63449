package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name                string               `bson:"name" json:"name"`
	Description         string               `bson:"description" json:"description"`
	Category            []string             `bson:"category" json:"category"`
	Location            string               `bson:"location" json:"location"`
	EventStartDate      time.Time            `bson:"eventStartDate" json:"eventStartDate"`
	EventEndDate        *time.Time           `bson:"eventEndDate,omitempty" json:"eventEndDate,omitempty"`
	LastDateToJoin      time.Time            `bson:"lastDateToJoin" json:"lastDateToJoin"`
	ImgPoster           string               `bson:"imgPoster,omitempty" json:"imgPoster,omitempty"`
	Host                primitive.ObjectID   `bson:"host" json:"host"`
	Participants        []primitive.ObjectID `bson:"participants" json:"participants"`
	MaximumParticipants int                  `bson:"maximumParticipants" json:"maximumParticipants"`
	WeeklyViews         int64                `bson:"weeklyViews" json:"weeklyViews"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (e *Event) IsHost(userID primitive.ObjectID) bool {
	return !userID.IsZero() && e.Host == userID
}

func (e *Event) IsParticipant(userID primitive.ObjectID) bool {
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func (e *Event) IsFull() bool {
	return len(e.Participants) >= e.MaximumParticipants
}

// Consistent reports whether the schedule is ordered and the participants fit
// the capacity.
func (e *Event) Consistent() bool {
	if e.LastDateToJoin.After(e.EventStartDate) {
		return false
	}
	if e.EventEndDate != nil && !e.EventEndDate.After(e.EventStartDate) {
		return false
	}
	return len(e.Participants) <= e.MaximumParticipants
}

// AcceptsJoinsAt reports whether the join deadline is still ahead of now.
func (e *Event) AcceptsJoinsAt(now time.Time) bool {
	return now.Before(e.LastDateToJoin)
}

// EventDetails is an event with host and participants resolved to user summaries.
type EventDetails struct {
	Event
	Host         *UserSummary  `json:"host"`
	Participants []UserSummary `json:"participants"`
}

// CategoryGroup is one bucket of the category aggregation.
type CategoryGroup struct {
	Category string  `bson:"_id" json:"category"`
	Events   []Event `bson:"documents" json:"events"`
}

// EventInput is a validated create payload.
type EventInput struct {
	Name                string     `validate:"required,min=3,max=120"`
	Description         string     `validate:"required,max=5000"`
	Category            []string   `validate:"required,min=1,max=10,dive,category"`
	Location            string     `validate:"required,max=200"`
	EventStartDate      time.Time  `validate:"required"`
	EventEndDate        *time.Time `validate:"omitempty"`
	LastDateToJoin      time.Time  `validate:"required"`
	MaximumParticipants int        `validate:"required,gte=1,lte=100000"`
}

// EventPatch is a validated partial update; nil fields are left untouched.
type EventPatch struct {
	Name                *string    `validate:"omitempty,min=3,max=120"`
	Description         *string    `validate:"omitempty,max=5000"`
	Category            []string   `validate:"omitempty,min=1,max=10,dive,category"`
	Location            *string    `validate:"omitempty,max=200"`
	EventStartDate      *time.Time `validate:"omitempty"`
	EventEndDate        *time.Time `validate:"omitempty"`
	LastDateToJoin      *time.Time `validate:"omitempty"`
	MaximumParticipants *int       `validate:"omitempty,gte=1,lte=100000"`
	ImgPoster           *string    `validate:"-"`
}

func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil && p.Location == nil &&
		p.EventStartDate == nil && p.EventEndDate == nil && p.LastDateToJoin == nil &&
		p.MaximumParticipants == nil && p.ImgPoster == nil
}

// Apply returns a copy of e with the patch applied.
func (p EventPatch) Apply(e Event) Event {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = p.Category
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.EventStartDate != nil {
		e.EventStartDate = *p.EventStartDate
	}
	if p.EventEndDate != nil {
		e.EventEndDate = p.EventEndDate
	}
	if p.LastDateToJoin != nil {
		e.LastDateToJoin = *p.LastDateToJoin
	}
	if p.MaximumParticipants != nil {
		e.MaximumParticipants = *p.MaximumParticipants
	}
	if p.ImgPoster != nil {
		e.ImgPoster = *p.ImgPoster
	}
	return e
}

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, offset, limit int) ([]Event, int, error)
	SearchEvents(ctx context.Context, query string) ([]Event, error)
	// UpdateEvent patches the event only when host matches and the patched
	// event stays consistent; ErrNotFound otherwise.
	UpdateEvent(ctx context.Context, id, host primitive.ObjectID, patch EventPatch) (*Event, error)
	// DeleteEvent removes the event only when host matches; ErrNotFound otherwise.
	DeleteEvent(ctx context.Context, id, host primitive.ObjectID) (*Event, error)
	// JoinEvent adds userID when the deadline is after now, the event is not
	// full and the user is not already in; ErrNotFound when any condition fails.
	JoinEvent(ctx context.Context, id, userID primitive.ObjectID, now time.Time) (*Event, error)
	LeaveEvent(ctx context.Context, id, userID primitive.ObjectID) (*Event, error)
	GroupByCategory(ctx context.Context) ([]CategoryGroup, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	SetWeeklyViews(ctx context.Context, id primitive.ObjectID, views int64) error
}

type EventFilter struct {
	Host     primitive.ObjectID
	Category string
}
