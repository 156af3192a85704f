// Package api exposes the HTTP surface: the three server-rendered pages
// and the JSON endpoints their scripts call.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rosterdev/roster-store/internal/dashboard"
	"github.com/rosterdev/roster-store/internal/flow"
	"github.com/rosterdev/roster-store/internal/form"
	"github.com/rosterdev/roster-store/internal/store"
	"github.com/rosterdev/roster-store/internal/validate"
	"github.com/rosterdev/roster-store/pkg/schema"
)

// Handler serves the pages and the API over the record store and flows.
type Handler struct {
	Roster *store.Roster
	Flows  *flow.Service
	Form   *form.Form
	Log    *slog.Logger
}

// Mount registers every route on the gin engine.
func (h *Handler) Mount(r *gin.Engine) {
	r.GET("/", h.Index)
	r.GET("/register", h.RegisterPage)
	r.GET("/login", h.LoginPage)
	r.GET("/dashboard", h.DashboardPage)

	api := r.Group("/api")
	{
		api.GET("/schema", h.Schema)
		api.GET("/form", h.FormWidgets)
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/students", h.Students)
		api.DELETE("/students/:index", h.DeleteStudent)
		api.GET("/dashboard", h.Dashboard)
	}
}

// Index routes by session state: logged-in users land on the dashboard,
// everyone else on the registration form.
func (h *Handler) Index(c *gin.Context) {
	if _, ok := h.Roster.GetSession(); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/register")
}

func (h *Handler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"Widgets": h.Form.Widgets})
}

func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// DashboardPage requires an active session; without one the visitor is
// sent to the login page. A guard, not a failure.
func (h *Handler) DashboardPage(c *gin.Context) {
	email, ok := h.Roster.GetSession()
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"Email": email})
}

func (h *Handler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, h.Form.Schema)
}

func (h *Handler) FormWidgets(c *gin.Context) {
	c.JSON(http.StatusOK, h.Form.Widgets)
}

func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Fields map[string]schema.FieldValue `json:"fields" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.Flows.Register(h.Form.Schema, input.Fields)
	if err != nil {
		var ve *validate.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Messages()})
			return
		}
		h.Log.Error("registration write failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered", "id": record.ID})
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Flows.Login(input.Email, input.Password)
	switch {
	case errors.Is(err, flow.ErrNoAccount), errors.Is(err, flow.ErrWrongPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case err != nil:
		h.Log.Error("login failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "logged in"})
	}
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Flows.Logout(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *Handler) Students(c *gin.Context) {
	if !h.requireSession(c) {
		return
	}
	c.JSON(http.StatusOK, h.Roster.ListStudents())
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	if !h.requireSession(c) {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	if err := h.Roster.DeleteStudent(index); err != nil {
		if errors.Is(err, store.ErrIndexOutOfRange) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.Log.Error("delete failed", "index", index, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) Dashboard(c *gin.Context) {
	if !h.requireSession(c) {
		return
	}
	students := h.Roster.ListStudents()
	c.JSON(http.StatusOK, gin.H{
		"students":     students,
		"summary":      dashboard.Summarize(students),
		"month_labels": dashboard.MonthLabels,
	})
}

func (h *Handler) requireSession(c *gin.Context) bool {
	if _, ok := h.Roster.GetSession(); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return false
	}
	return true
}
