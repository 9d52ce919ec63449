// Package modelstest provides in-memory implementations of the repo
// interfaces for service and handler tests.
package modelstest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joshua-takyi/eventful/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventRepo struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]models.Event
	// Err, when set, is returned by every call.
	Err error
}

func NewEventRepo(events ...models.Event) *EventRepo {
	r := &EventRepo{events: make(map[primitive.ObjectID]models.Event)}
	for _, e := range events {
		if e.ID.IsZero() {
			e.ID = primitive.NewObjectID()
		}
		r.events[e.ID] = e
	}
	return r
}

// Get returns a copy of the stored event, for assertions.
func (r *EventRepo) Get(id primitive.ObjectID) (models.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	return clone(e), ok
}

func (r *EventRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func clone(e models.Event) models.Event {
	e.Participants = append([]primitive.ObjectID{}, e.Participants...)
	e.Category = append([]string(nil), e.Category...)
	return e
}

func (r *EventRepo) CreateEvent(_ context.Context, event *models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Participants == nil {
		event.Participants = []primitive.ObjectID{}
	}
	r.events[event.ID] = clone(*event)
	return event, nil
}

func (r *EventRepo) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.events[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	e = clone(e)
	return &e, nil
}

func (r *EventRepo) sorted() []models.Event {
	out := make([]models.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, clone(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventStartDate.Equal(out[j].EventStartDate) {
			return out[i].ID.Hex() < out[j].ID.Hex()
		}
		return out[i].EventStartDate.Before(out[j].EventStartDate)
	})
	return out
}

func (r *EventRepo) ListEvents(_ context.Context, filter models.EventFilter, offset, limit int) ([]models.Event, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}
	matched := []models.Event{}
	for _, e := range r.sorted() {
		if !filter.Host.IsZero() && e.Host != filter.Host {
			continue
		}
		if filter.Category != "" && !contains(e.Category, filter.Category) {
			continue
		}
		matched = append(matched, e)
	}
	total := len(matched)
	if offset >= total {
		return []models.Event{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *EventRepo) SearchEvents(_ context.Context, query string) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	q := strings.ToLower(query)
	out := []models.Event{}
	for _, e := range r.sorted() {
		if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.Description), q) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *EventRepo) UpdateEvent(_ context.Context, id, host primitive.ObjectID, patch models.EventPatch) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.events[id]
	if !ok || e.Host != host {
		return nil, models.ErrNotFound
	}
	e = patch.Apply(e)
	if !e.Consistent() {
		return nil, models.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	r.events[id] = clone(e)
	return &e, nil
}

func (r *EventRepo) DeleteEvent(_ context.Context, id, host primitive.ObjectID) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.events[id]
	if !ok || e.Host != host {
		return nil, models.ErrNotFound
	}
	delete(r.events, id)
	return &e, nil
}

func (r *EventRepo) JoinEvent(_ context.Context, id, userID primitive.ObjectID, now time.Time) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.events[id]
	if !ok || !e.AcceptsJoinsAt(now) || e.IsFull() || e.IsParticipant(userID) {
		return nil, models.ErrNotFound
	}
	e = clone(e)
	e.Participants = append(e.Participants, userID)
	e.UpdatedAt = now
	r.events[id] = clone(e)
	return &e, nil
}

func (r *EventRepo) LeaveEvent(_ context.Context, id, userID primitive.ObjectID) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	e, ok := r.events[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	kept := []primitive.ObjectID{}
	for _, p := range e.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	e.Participants = kept
	r.events[id] = clone(e)
	return &e, nil
}

func (r *EventRepo) GroupByCategory(_ context.Context) ([]models.CategoryGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	byTag := map[string][]models.Event{}
	for _, e := range r.sorted() {
		for _, tag := range models.NormalizeCategories(e.Category) {
			byTag[tag] = append(byTag[tag], e)
		}
	}
	groups := make([]models.CategoryGroup, 0, len(byTag))
	for tag, events := range byTag {
		groups = append(groups, models.CategoryGroup{Category: tag, Events: events})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups, nil
}

func (r *EventRepo) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if e, ok := r.events[id]; ok {
		e.WeeklyViews++
		r.events[id] = e
	}
	return nil
}

func (r *EventRepo) SetWeeklyViews(_ context.Context, id primitive.ObjectID, views int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if e, ok := r.events[id]; ok {
		e.WeeklyViews = views
		r.events[id] = e
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type UserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
	Err   error
}

func NewUserRepo(users ...models.User) *UserRepo {
	r := &UserRepo{users: make(map[primitive.ObjectID]models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *UserRepo) Get(id primitive.ObjectID) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *UserRepo) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, models.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Interests == nil {
		user.Interests = []string{}
	}
	r.users[user.ID] = *user
	return user, nil
}

func (r *UserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *UserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *UserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UserRepo) GetUserSummaries(_ context.Context, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	found := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			found = append(found, u.Summary())
		}
	}
	return models.OrderSummaries(ids, found), nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.Interests != nil {
		u.Interests = *update.Interests
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return &u, nil
}

func (r *UserRepo) SetProfilePic(_ context.Context, id primitive.ObjectID, url string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	previous := u
	u.ProfilePic = url
	r.users[id] = u
	return &previous, nil
}
