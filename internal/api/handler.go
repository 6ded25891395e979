package api

import (
	"embed"
	"errors"
	"log"
	"net/http"
	"time"

	"bullet-relay/server/config"
	"bullet-relay/server/internal/app"
	"bullet-relay/server/internal/data"
	"bullet-relay/server/internal/model"
	"bullet-relay/server/internal/relay"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var webFS embed.FS

// StatsSource reports relay connection health.
type StatsSource interface {
	Stats() relay.Stats
}

type Handler struct {
	Svc       *app.Service
	Waypoints data.WaypointRepo
	Relay     StatsSource
	Cfg       *config.Config
	// WS serves the duplex command stream.
	WS http.Handler
}

func NewHandler(svc *app.Service, waypoints data.WaypointRepo, rel StatsSource, ws http.Handler, cfg *config.Config) *Handler {
	return &Handler{Svc: svc, Waypoints: waypoints, Relay: rel, WS: ws, Cfg: cfg}
}

func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.Cfg.Auth.Enable {
			c.Next()
			return
		}
		token := c.GetHeader("Authorization")
		if token == "" {
			// Browsers cannot set headers on a websocket handshake.
			token = c.Query("token")
		}
		if token != h.Cfg.Auth.Token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (h *Handler) SetupRoutes(r *gin.Engine) {
	r.GET("/", h.Index)
	r.GET("/healthz", h.Health)
	if h.Cfg.Server.StaticDir != "" {
		r.Static("/static", h.Cfg.Server.StaticDir)
	}

	authed := r.Group("")
	authed.Use(h.AuthMiddleware())
	authed.POST("/command", h.Command)
	if h.WS != nil {
		authed.GET("/ws", gin.WrapH(h.WS))
	}

	wp := authed.Group("/waypoints")
	wp.GET("", h.ListWaypoints)
	wp.GET("/:name", h.GetWaypoint)
	wp.PUT("/:name", h.PutWaypoint)
	wp.DELETE("/:name", h.DeleteWaypoint)
}

func (h *Handler) Index(c *gin.Context) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"relay":  h.Relay.Stats(),
	})
}

type commandBody struct {
	Command string `json:"command" binding:"required"`
}

// Command translates and dispatches one free-text command. Command
// failures are reported in the body, never through the status code.
func (h *Handler) Command(c *gin.Context) {
	ctx, id := model.EnsureRequestID(c.Request.Context())

	var body commandBody
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Printf("[API] %s Bad command body: %v", id, err)
		c.JSON(http.StatusOK, model.CommandResponse{Success: false, Message: "Error: " + err.Error()})
		return
	}

	log.Printf("[API] %s Received command: %s", id, body.Command)
	res := h.Svc.HandleText(ctx, body.Command)
	log.Printf("[API] %s Command result: %s %+v", id, res.Kind, res.Response)
	c.JSON(http.StatusOK, res.Response)
}

func (h *Handler) ListWaypoints(c *gin.Context) {
	list, err := h.Waypoints.ListWaypoints(c.Request.Context())
	if err != nil {
		h.waypointError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetWaypoint(c *gin.Context) {
	w, err := h.Waypoints.GetWaypoint(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.waypointError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

type waypointBody struct {
	Position []float64 `json:"position" binding:"required,len=3"`
}

func (h *Handler) PutWaypoint(c *gin.Context) {
	var body waypointBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w := &data.Waypoint{
		Name:      c.Param("name"),
		Position:  [3]float64{body.Position[0], body.Position[1], body.Position[2]},
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Waypoints.SaveWaypoint(c.Request.Context(), w); err != nil {
		h.waypointError(c, err)
		return
	}
	log.Printf("[API] Saved waypoint %s at %v", w.Name, w.Position)
	c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteWaypoint(c *gin.Context) {
	if err := h.Waypoints.DeleteWaypoint(c.Request.Context(), c.Param("name")); err != nil {
		h.waypointError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) waypointError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, data.ErrWaypointNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, data.ErrInvalidWaypoint):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[API] Waypoint store error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
