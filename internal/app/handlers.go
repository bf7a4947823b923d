package app

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"session-planner/internal/cache"
)

const (
	defaultDurationMins  = 60
	defaultLookAheadDays = 7
	defaultTopLimit      = 5
)

func (a *App) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		a.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// invalidateSuggestions is called after any session or availability write.
func (a *App) invalidateSuggestions(c *gin.Context) {
	if a.Cache == nil {
		return
	}
	if err := a.Cache.Invalidate(c.Request.Context()); err != nil {
		a.Log.Warn("suggestion cache invalidation failed", zap.Error(err))
	}
}

// --- session types ---

// POST /api/session-types
func (a *App) CreateSessionTypeHandler(c *gin.Context) {
	var payload SessionType
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.InsertSessionType(c.Request.Context(), &payload); err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

// GET /api/session-types
func (a *App) ListSessionTypesHandler(c *gin.Context) {
	types, err := a.ListSessionTypes(c.Request.Context())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	if types == nil {
		types = []SessionType{}
	}
	c.JSON(http.StatusOK, types)
}

// GET /api/session-types/:id
func (a *App) GetSessionTypeHandler(c *gin.Context) {
	t, err := a.GetSessionType(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// PUT /api/session-types/:id
func (a *App) UpdateSessionTypeHandler(c *gin.Context) {
	var payload SessionType
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload.ID = c.Param("id")
	if err := a.UpdateSessionType(c.Request.Context(), &payload); err != nil {
		a.abortWithError(c, err)
		return
	}
	// priority feeds the scorer, so cached suggestions are stale now
	a.invalidateSuggestions(c)
	c.JSON(http.StatusOK, payload)
}

// DELETE /api/session-types/:id
func (a *App) DeleteSessionTypeHandler(c *gin.Context) {
	if err := a.DeleteSessionType(c.Request.Context(), c.Param("id")); err != nil {
		a.abortWithError(c, err)
		return
	}
	a.invalidateSuggestions(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- availability windows ---

// POST /api/availability
// Accepts a list of windows so a whole weekly calendar saves in one call.
func (a *App) CreateAvailabilityHandler(c *gin.Context) {
	var payload []AvailabilityWindow
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	var saved []AvailabilityWindow
	for i := range payload {
		if err := a.InsertAvailabilityWindow(ctx, &payload[i]); err != nil {
			a.abortWithError(c, err)
			return
		}
		saved = append(saved, payload[i])
	}
	a.invalidateSuggestions(c)
	c.JSON(http.StatusCreated, saved)
}

// GET /api/availability
func (a *App) ListAvailabilityHandler(c *gin.Context) {
	windows, err := a.ListAvailabilityWindows(c.Request.Context())
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	if windows == nil {
		windows = []AvailabilityWindow{}
	}
	c.JSON(http.StatusOK, windows)
}

// PUT /api/availability/:id
func (a *App) UpdateAvailabilityHandler(c *gin.Context) {
	var payload AvailabilityWindow
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload.ID = c.Param("id")
	if err := a.UpdateAvailabilityWindow(c.Request.Context(), &payload); err != nil {
		a.abortWithError(c, err)
		return
	}
	a.invalidateSuggestions(c)
	c.JSON(http.StatusOK, payload)
}

// DELETE /api/availability/:id
func (a *App) DeleteAvailabilityHandler(c *gin.Context) {
	if err := a.DeleteAvailabilityWindow(c.Request.Context(), c.Param("id")); err != nil {
		a.abortWithError(c, err)
		return
	}
	a.invalidateSuggestions(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- sessions ---

type sessionReq struct {
	SessionTypeID string `json:"session_type_id" binding:"required"`
	StartTimeStr  string `json:"start_time" binding:"required"` // RFC3339
	EndTimeStr    string `json:"end_time" binding:"required"`
	Completed     bool   `json:"completed"`
}

func (r *sessionReq) times() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, r.StartTimeStr)
	if err != nil {
		return time.Time{}, time.Time{}, invalidField("start_time", "must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, r.EndTimeStr)
	if err != nil {
		return time.Time{}, time.Time{}, invalidField("end_time", "must be RFC3339")
	}
	return start.UTC(), end.UTC(), nil
}

// POST /api/sessions
func (a *App) CreateSessionHandler(c *gin.Context) {
	var req sessionReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, end, err := req.times()
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	session := Session{
		SessionTypeID: req.SessionTypeID,
		StartTime:     start,
		EndTime:       end,
		Completed:     req.Completed,
	}
	if err := a.InsertSession(c.Request.Context(), &session); err != nil {
		a.abortWithError(c, err)
		return
	}
	a.invalidateSuggestions(c)
	c.JSON(http.StatusCreated, session)
}

// GET /api/sessions?from=ISO&to=ISO&completed=true|false
func (a *App) ListSessionsHandler(c *gin.Context) {
	var (
		from, to  *time.Time
		completed *bool
	)
	if fromStr := c.Query("from"); fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		from = &t
	}
	if toStr := c.Query("to"); toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before to"})
		return
	}
	if doneStr := c.Query("completed"); doneStr != "" {
		done, err := strconv.ParseBool(doneStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid completed"})
			return
		}
		completed = &done
	}

	sessions, err := a.ListSessions(c.Request.Context(), from, to, completed)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	if sessions == nil {
		sessions = []Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/sessions/:id
func (a *App) GetSessionHandler(c *gin.Context) {
	session, err := a.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// PUT /api/sessions/:id
func (a *App) UpdateSessionHandler(c *gin.Context) {
	var req sessionReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, end, err := req.times()
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	session := Session{
		ID:            c.Param("id"),
		SessionTypeID: req.SessionTypeID,
		StartTime:     start,
		EndTime:       end,
		Completed:     req.Completed,
	}
	if err := a.UpdateSession(c.Request.Context(), &session); err != nil {
		a.abortWithError(c, err)
		return
	}
	a.invalidateSuggestions(c)
	c.JSON(http.StatusOK, session)
}

// POST /api/sessions/:id/complete
func (a *App) CompleteSessionHandler(c *gin.Context) {
	session, err := a.CompleteSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DELETE /api/sessions/:id
func (a *App) DeleteSessionHandler(c *gin.Context) {
	if err := a.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		a.abortWithError(c, err)
		return
	}
	a.invalidateSuggestions(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- suggestions & stats ---

// GET /api/suggestions?session_type_id=&duration_minutes=&look_ahead_days=
//
// With an X-Google-Token header the user's calendar events inside the
// look-ahead horizon are merged into the session list as busy intervals
// before the engine runs; those responses bypass the cache.
func (a *App) GetSuggestionsHandler(c *gin.Context) {
	typeID := c.Query("session_type_id")
	if typeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_type_id required"})
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("duration_minutes", strconv.Itoa(defaultDurationMins)))
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be a positive integer"})
		return
	}
	lookAhead, err := strconv.Atoi(c.DefaultQuery("look_ahead_days", strconv.Itoa(defaultLookAheadDays)))
	if err != nil || lookAhead < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "look_ahead_days must be a non-negative integer"})
		return
	}

	ctx := c.Request.Context()
	googleToken := c.GetHeader("X-Google-Token")
	key := cache.Key(typeID, duration, lookAhead)

	if a.Cache != nil && googleToken == "" {
		var cached []SessionSuggestion
		ok, err := a.Cache.Get(ctx, key, &cached)
		if err != nil {
			a.Log.Warn("suggestion cache read failed", zap.Error(err))
		} else if ok {
			c.JSON(http.StatusOK, gin.H{"suggestions": cached, "count": len(cached)})
			return
		}
	}

	st, err := a.GetSessionType(ctx, typeID)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	sessions, err := a.ListSessions(ctx, nil, nil, nil)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	windows, err := a.ListAvailabilityWindows(ctx)
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	if googleToken != "" {
		busy, err := a.calendarBusySessions(ctx, googleToken, now, now.AddDate(0, 0, lookAhead))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sessions = append(sessions, busy...)
	}

	suggestions := GenerateSuggestions(now, st, sessions, windows, duration, lookAhead)
	if suggestions == nil {
		suggestions = []SessionSuggestion{}
	}

	if a.Cache != nil && googleToken == "" {
		if err := a.Cache.Set(ctx, key, suggestions); err != nil {
			a.Log.Warn("suggestion cache write failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "count": len(suggestions)})
}

// GET /api/suggestions/top?limit=&duration_minutes=&look_ahead_days=
//
// Fans out one engine run per session type and merges the best slots across
// all of them. The runs share no state, so they can go in parallel.
func (a *App) GetTopSuggestionsHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultTopLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("duration_minutes", strconv.Itoa(defaultDurationMins)))
	if err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be a positive integer"})
		return
	}
	lookAhead, err := strconv.Atoi(c.DefaultQuery("look_ahead_days", strconv.Itoa(defaultLookAheadDays)))
	if err != nil || lookAhead < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "look_ahead_days must be a non-negative integer"})
		return
	}

	ctx := c.Request.Context()
	types, err := a.ListSessionTypes(ctx)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	sessions, err := a.ListSessions(ctx, nil, nil, nil)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	windows, err := a.ListAvailabilityWindows(ctx)
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	now := time.Now().UTC()
	combined := []SessionSuggestion{}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, st := range types {
		wg.Add(1)
		go func(st SessionType) {
			defer wg.Done()
			result := GenerateSuggestions(now, st, sessions, windows, duration, lookAhead)
			mu.Lock()
			combined = append(combined, result...)
			mu.Unlock()
		}(st)
	}
	wg.Wait()

	sort.SliceStable(combined, func(i, j int) bool { return combined[i].Score > combined[j].Score })
	if len(combined) > limit {
		combined = combined[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": combined, "count": len(combined)})
}

// GET /api/stats/progress
func (a *App) GetProgressStatsHandler(c *gin.Context) {
	sessions, err := a.ListSessions(c.Request.Context(), nil, nil, nil)
	if err != nil {
		a.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, CalculateProgressStats(sessions))
}
