// Package web renders the HTML pages: category listings, search and the
// event detail page with join and leave actions.
package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/middleware"
	"github.com/joshua-takyi/eventful/internal/models"
	"github.com/joshua-takyi/eventful/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

//go:embed templates/*.html
var templateFS embed.FS

// PlaceholderCategory is shown when there is nothing real to list.
const PlaceholderCategory = "Test404Category"

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Local().Format("Mon 2 Jan 2006 at 15:04")
	},
	"dateptr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Local().Format("Mon 2 Jan 2006 at 15:04")
	},
	"hex": func(id primitive.ObjectID) string {
		return id.Hex()
	},
}

func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

type Pages struct {
	events *services.EventService
	logger *slog.Logger
	now    func() time.Time
}

// Register mounts the pages on r. optionalAuth attaches the session when present.
func Register(r *gin.Engine, events *services.EventService, optionalAuth gin.HandlerFunc, logger *slog.Logger) *Pages {
	p := &Pages{events: events, logger: logger, now: time.Now}
	r.SetHTMLTemplate(Templates())

	r.GET("/", optionalAuth, p.Home)
	r.GET("/categories", optionalAuth, p.Categories)
	r.GET("/search", optionalAuth, p.Search)
	r.GET("/events/:id", optionalAuth, p.Event)
	return p
}

type CategoryView struct {
	Name   string
	Events []models.Event
}

func placeholderCategories() []CategoryView {
	return []CategoryView{{
		Name: PlaceholderCategory,
		Events: []models.Event{{
			Name:      "Testing404Event",
			Location:  "Click to test 404 event",
			ImgPoster: "https://picsum.photos/id/1/200/150",
		}},
	}}
}

// CategoryViews turns aggregation groups into listings, falling back to the
// placeholder when the aggregation failed or came back empty.
func CategoryViews(groups []models.CategoryGroup, err error) []CategoryView {
	if err != nil || len(groups) == 0 {
		return placeholderCategories()
	}
	out := make([]CategoryView, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategoryView{Name: g.Category, Events: g.Events})
	}
	return out
}

func (p *Pages) page(c *gin.Context, status int, name string, data gin.H) {
	_, data["LoggedIn"] = middleware.CallerID(c)
	if _, ok := data["Query"]; !ok {
		data["Query"] = ""
	}
	c.HTML(status, name, data)
}

func (p *Pages) Home(c *gin.Context) {
	events, _, err := p.events.ListEvents(c.Request.Context(), models.EventFilter{}, 0, 12)
	if err != nil {
		p.logger.Error("failed to list events", "error", err)
		events = []models.Event{}
	}
	p.page(c, http.StatusOK, "home.html", gin.H{"Title": "Upcoming events", "Events": events})
}

func (p *Pages) Categories(c *gin.Context) {
	groups, err := p.events.EventsByCategory(c.Request.Context())
	if err != nil {
		p.logger.Error("failed to group events", "error", err)
	}
	p.page(c, http.StatusOK, "categories.html", gin.H{"Title": "Categories", "Categories": CategoryViews(groups, err)})
}

func (p *Pages) Search(c *gin.Context) {
	q := c.Query("q")
	data := gin.H{"Title": "Search", "Query": q}
	if q == "" {
		p.page(c, http.StatusOK, "search.html", data)
		return
	}

	events, err := p.events.SearchEvents(c.Request.Context(), q)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		data["Message"] = verr.Msg
	case err != nil:
		p.logger.Error("search failed", "error", err)
		data["Message"] = "Search is unavailable right now"
	case len(events) == 0:
		data["Message"] = "No results found..."
	default:
		data["Message"] = "results found.."
		data["Events"] = events
	}
	p.page(c, http.StatusOK, "search.html", data)
}

// JoinView decides which participation control the detail page shows.
type JoinView struct {
	IsHost        bool
	IsParticipant bool
	CanJoin       bool
	NeedsLogin    bool
	DeadlinePast  bool
	Full          bool
}

func NewJoinView(e *models.Event, viewer primitive.ObjectID, loggedIn bool, now time.Time) JoinView {
	open := e.AcceptsJoinsAt(now)
	v := JoinView{
		IsHost:        loggedIn && e.IsHost(viewer),
		IsParticipant: loggedIn && e.IsParticipant(viewer),
		DeadlinePast:  !open,
		Full:          e.IsFull(),
	}
	if v.IsParticipant {
		return v
	}
	if open && !v.Full {
		v.CanJoin = loggedIn
		v.NeedsLogin = !loggedIn
	}
	return v
}

func viewerKey(c *gin.Context) string {
	if id, ok := middleware.CallerID(c); ok {
		return "user:" + id.Hex()
	}
	return "ip:" + c.ClientIP()
}

func (p *Pages) Event(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(helpers.StringTrim(c.Param("id")))
	if err != nil {
		p.page(c, http.StatusNotFound, "notfound.html", gin.H{"Title": "Not found"})
		return
	}

	event, err := p.events.GetEvent(c.Request.Context(), id, viewerKey(c))
	if errors.Is(err, models.ErrNotFound) {
		p.page(c, http.StatusNotFound, "notfound.html", gin.H{"Title": "Not found"})
		return
	}
	if err != nil {
		p.logger.Error("failed to load event", "event_id", id.Hex(), "error", err)
		p.page(c, http.StatusInternalServerError, "notfound.html", gin.H{"Title": "Something went wrong"})
		return
	}

	viewer, loggedIn := middleware.CallerID(c)
	p.page(c, http.StatusOK, "event.html", gin.H{
		"Title":  event.Name,
		"Event":  event,
		"Join":   NewJoinView(&event.Event, viewer, loggedIn, p.now()),
		"Viewer": viewer.Hex(),
	})
}
