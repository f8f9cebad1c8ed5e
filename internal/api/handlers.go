package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cantine-planner/internal/app"
	"cantine-planner/internal/ghost"
	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, planner.ErrInvalidWeek),
		errors.Is(err, planner.ErrCourseMismatch),
		errors.Is(err, planner.ErrUnknownRecipe),
		errors.Is(err, planner.ErrSameWeek),
		errors.Is(err, recipe.ErrInvalidRecipe):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNoTextGenerator), errors.Is(err, ghost.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("API error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// week resolves the :week path parameter ("2026-W43", "current", "next").
func (h *Handler) week(c *gin.Context) (string, bool) {
	weekID, err := h.app.ResolveWeek(c.Param("week"))
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return weekID, true
}

// slot parses the :day and :course path parameters. Days are indexes 0-4
// or English weekday names.
func slot(c *gin.Context) (int, recipe.Course, bool) {
	day, err := parseDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, "", false
	}
	course, err := recipe.ParseCourse(c.Param("course"))
	if err != nil {
		writeError(c, err)
		return 0, "", false
	}
	return day, course, true
}

func parseDay(s string) (int, error) {
	if d, err := strconv.Atoi(s); err == nil {
		if d < 0 || d >= planner.DaysPerWeek {
			return 0, errors.New("day must be between 0 and 4")
		}
		return d, nil
	}
	for i, name := range planner.DayNames {
		if strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, errors.New("unknown day " + strconv.Quote(s))
}

func (h *Handler) listWeeks(c *gin.Context) {
	weeks, err := h.app.Weeks(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

func (h *Handler) getPlan(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	plan, err := h.app.Plan(ctx, weekID)
	if err != nil {
		writeError(c, err)
		return
	}
	comp, err := h.app.Compliance(ctx, weekID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan, "compliance": comp})
}

func (h *Handler) autoFill(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	plan, report, err := h.app.AutoFill(c.Request.Context(), weekID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan, "report": report})
}

func (h *Handler) finalize(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	plan, err := h.app.Finalize(c.Request.Context(), weekID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *Handler) duplicate(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	var req struct {
		To string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: 'to' week is required"})
		return
	}
	to, err := h.app.ResolveWeek(req.To)
	if err != nil {
		writeError(c, err)
		return
	}
	plan, err := h.app.Duplicate(c.Request.Context(), weekID, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

func (h *Handler) clearWeek(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	if err := h.app.ClearWeek(c.Request.Context(), weekID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setSlot(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	day, course, ok := slot(c)
	if !ok {
		return
	}
	var req struct {
		RecipeID string `json:"recipe_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: recipe_id is required"})
		return
	}
	plan, err := h.app.SetSlot(c.Request.Context(), weekID, day, course, req.RecipeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *Handler) clearSlot(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	day, course, ok := slot(c)
	if !ok {
		return
	}
	plan, err := h.app.ClearSlot(c.Request.Context(), weekID, day, course)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *Handler) summary(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	s, err := h.app.Summary(c.Request.Context(), weekID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) advice(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	res, err := h.app.Advice(c.Request.Context(), weekID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Advice)
}

func (h *Handler) needs(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	covers := 0
	if v := c.Query("covers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "covers must be a positive integer"})
			return
		}
		covers = n
	}
	list, err := h.app.Needs(c.Request.Context(), weekID, covers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) listRecipes(c *gin.Context) {
	var course recipe.Course
	if v := c.Query("course"); v != "" {
		parsed, err := recipe.ParseCourse(v)
		if err != nil {
			writeError(c, err)
			return
		}
		course = parsed
	}
	recipes, err := h.app.Recipes(c.Request.Context(), course)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *Handler) clipRecipe(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: url is required"})
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must start with http:// or https://"})
		return
	}
	res, err := h.app.ClipRecipe(c.Request.Context(), req.URL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": res.Recipe})
}

func (h *Handler) alerts(c *gin.Context) {
	alerts, err := h.app.Alerts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) usage(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}
	usage, err := h.app.DailyUsage(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

func (h *Handler) publish(c *gin.Context) {
	weekID, ok := h.week(c)
	if !ok {
		return
	}
	live := c.Query("live") == "true"
	post, err := h.app.PublishMenu(c.Request.Context(), weekID, live)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *Handler) ghostImport(c *gin.Context) {
	stats, err := h.app.ImportFromGhost(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
