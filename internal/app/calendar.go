package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarEvent is a Google Calendar event reduced to what the planner needs.
type CalendarEvent struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

func (a *App) googleOAuthConfig() *oauth2.Config {
	g := a.Cfg.Google
	if g.ClientID == "" || g.ClientSecret == "" || g.RedirectURL == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{calendar.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// GET /api/calendar/auth
func (a *App) GoogleAuthHandler(c *gin.Context) {
	conf := a.googleOAuthConfig()
	if conf == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}
	state := fmt.Sprintf("planner_%d", time.Now().Unix())
	c.JSON(http.StatusOK, gin.H{
		"auth_url": conf.AuthCodeURL(state, oauth2.AccessTypeOffline),
		"state":    state,
	})
}

// GET /oauth2callback
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	conf := a.googleOAuthConfig()
	if conf == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}
	token, err := conf.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}
	tokenJSON, _ := json.Marshal(token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Authorization successful",
		"state":   c.Query("state"),
		"token":   string(tokenJSON),
	})
}

func (a *App) calendarService(ctx context.Context, tokenJSON string) (*calendar.Service, error) {
	conf := a.googleOAuthConfig()
	if conf == nil {
		return nil, fmt.Errorf("Google Calendar not configured")
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenJSON), &token); err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}
	client := conf.Client(ctx, &token)
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

// GET /api/calendar/events?calendar_id=&time_min=&time_max=
func (a *App) GetGoogleCalendarEvents(c *gin.Context) {
	tokenStr := c.GetHeader("X-Google-Token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google token required in X-Google-Token header"})
		return
	}
	ctx := c.Request.Context()
	srv, err := a.calendarService(ctx, tokenStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	call := srv.Events.List(c.DefaultQuery("calendar_id", "primary")).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250)
	if timeMin := c.Query("time_min"); timeMin != "" {
		call = call.TimeMin(timeMin)
	}
	if timeMax := c.Query("time_max"); timeMax != "" {
		call = call.TimeMax(timeMax)
	}

	events, err := call.Do()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to retrieve events: %v", err)})
		return
	}

	out := make([]CalendarEvent, 0, len(events.Items))
	for _, item := range events.Items {
		out = append(out, convertEvent(item))
	}
	c.JSON(http.StatusOK, gin.H{"events": out, "count": len(out)})
}

// GET /api/calendar/calendars
func (a *App) GetGoogleCalendarList(c *gin.Context) {
	tokenStr := c.GetHeader("X-Google-Token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google token required in X-Google-Token header"})
		return
	}
	srv, err := a.calendarService(c.Request.Context(), tokenStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := srv.CalendarList.List().Do()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to retrieve calendars: %v", err)})
		return
	}

	type calendarInfo struct {
		ID         string `json:"id"`
		Summary    string `json:"summary"`
		Primary    bool   `json:"primary"`
		AccessRole string `json:"access_role"`
	}
	var calendars []calendarInfo
	for _, item := range list.Items {
		calendars = append(calendars, calendarInfo{
			ID:         item.Id,
			Summary:    item.Summary,
			Primary:    item.Primary,
			AccessRole: item.AccessRole,
		})
	}
	c.JSON(http.StatusOK, gin.H{"calendars": calendars, "count": len(calendars)})
}

func convertEvent(item *calendar.Event) CalendarEvent {
	event := CalendarEvent{
		ID:      item.Id,
		Summary: item.Summary,
		Status:  item.Status,
	}
	if item.Start != nil {
		event.StartTime = parseEventTime(item.Start.DateTime, item.Start.Date)
	}
	if item.End != nil {
		event.EndTime = parseEventTime(item.End.DateTime, item.End.Date)
	}
	return event
}

func parseEventTime(dateTime, date string) time.Time {
	if dateTime != "" {
		if t, err := time.Parse(time.RFC3339, dateTime); err == nil {
			return t
		}
	}
	if date != "" {
		if t, err := time.Parse("2006-01-02", date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// calendarBusySessions fetches the user's calendar events in [from, to) and
// converts them to session-shaped busy intervals, so external commitments
// take part in conflict filtering and scoring like any planned session.
// Cancelled and malformed events are skipped.
func (a *App) calendarBusySessions(ctx context.Context, tokenJSON string, from, to time.Time) ([]Session, error) {
	srv, err := a.calendarService(ctx, tokenJSON)
	if err != nil {
		return nil, err
	}
	events, err := srv.Events.List("primary").
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		MaxResults(250).
		Do()
	if err != nil {
		return nil, err
	}

	var busy []Session
	for _, item := range events.Items {
		if item.Status == "cancelled" {
			continue
		}
		ev := convertEvent(item)
		if ev.StartTime.IsZero() || ev.EndTime.IsZero() || !ev.EndTime.After(ev.StartTime) {
			continue
		}
		busy = append(busy, Session{
			ID:        "gcal:" + ev.ID,
			StartTime: ev.StartTime,
			EndTime:   ev.EndTime,
			// Mid priority so imported events block slots without
			// tripping the high-priority fatigue counter.
			SessionType: SessionType{Name: ev.Summary, Priority: 3},
		})
	}
	a.Log.Debug("imported calendar busy intervals", zap.Int("count", len(busy)))
	return busy, nil
}
