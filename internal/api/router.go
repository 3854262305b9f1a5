package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"satta-service/internal/middleware"
	"satta-service/internal/service"
	"satta-service/internal/service/game"
	"satta-service/internal/ws"
	pkgAuth "satta-service/pkg/auth"
	appErr "satta-service/pkg/errors"
	"satta-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Game)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/satta/v1")
	{
		v1.POST("/games", handler.CreateGame)
		v1.GET("/history", handler.ListHistory)
		v1.GET("/leaderboard", handler.Leaderboard)

		gameGroup := v1.Group("/games/:id")
		gameGroup.Use(middleware.SessionRequired())
		{
			gameGroup.GET("", handler.GetGame)
			gameGroup.DELETE("", handler.CloseGame)
			gameGroup.POST("/hit", handler.Hit)
			gameGroup.POST("/shuffle", handler.Shuffle)
			gameGroup.POST("/pause", handler.TogglePause)
			gameGroup.POST("/resume", handler.Resume)
			gameGroup.POST("/reset", handler.Reset)
			gameGroup.POST("/restart", handler.Restart)
		}
	}

	r.GET("/ws/games/:id", wsHandler.HandleGameWS)
}

type startGameBody struct {
	PlayerNames []string `json:"playerNames" binding:"required"`
	PlayerCount int      `json:"playerCount" binding:"required"`
}

type playerActionBody struct {
	PlayerID string `json:"playerId" binding:"required"`
}

type createGameResponse struct {
	SessionID string    `json:"sessionId"`
	Code      string    `json:"code"`
	Token     string    `json:"token"`
	State     game.View `json:"state"`
}

func (h *Handler) CreateGame(c *gin.Context) {
	var body startGameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	rt, err := h.services.Game.CreateSession(c.Request.Context(), body.PlayerNames, body.PlayerCount)
	if err != nil {
		response.Fail(c, err, nil)
		return
	}
	token, err := pkgAuth.GenerateSessionToken(rt.ID())
	if err != nil {
		_ = h.services.Game.CloseSession(rt.ID())
		response.Error(c, http.StatusInternalServerError, "failed to issue session token")
		return
	}

	response.Success(c, createGameResponse{
		SessionID: rt.ID(),
		Code:      rt.Code(),
		Token:     token,
		State:     rt.View(),
	})
}

func (h *Handler) GetGame(c *gin.Context) {
	rt, ok := h.runtime(c)
	if !ok {
		return
	}
	response.Success(c, rt.View())
}

func (h *Handler) CloseGame(c *gin.Context) {
	if err := h.services.Game.CloseSession(c.Param("id")); err != nil {
		response.Fail(c, err, nil)
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "session closed")
}

func (h *Handler) Hit(c *gin.Context) {
	h.playerAction(c, (*game.Runtime).Play)
}

func (h *Handler) Shuffle(c *gin.Context) {
	h.playerAction(c, (*game.Runtime).ShuffleHand)
}

func (h *Handler) TogglePause(c *gin.Context) {
	h.tableAction(c, (*game.Runtime).TogglePause)
}

func (h *Handler) Resume(c *gin.Context) {
	h.tableAction(c, (*game.Runtime).Resume)
}

func (h *Handler) Reset(c *gin.Context) {
	rt, ok := h.runtime(c)
	if !ok {
		return
	}
	response.Success(c, rt.Reset())
}

func (h *Handler) Restart(c *gin.Context) {
	var body startGameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	rt, ok := h.runtime(c)
	if !ok {
		return
	}
	view, err := rt.Start(body.PlayerNames, body.PlayerCount)
	if err != nil {
		response.Fail(c, err, view)
		return
	}
	response.Success(c, view)
}

func (h *Handler) ListHistory(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parsePositiveIntQuery(c, "size", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Game.ListHistory(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(c, gin.H{
		"items": result.Items,
		"total": result.Total,
		"page":  page,
		"size":  size,
	})
}

func (h *Handler) Leaderboard(c *gin.Context) {
	limit, err := parsePositiveIntQuery(c, "limit", 10)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := h.services.Game.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, err, nil)
		return
	}
	response.Success(c, gin.H{"items": entries})
}

func (h *Handler) playerAction(c *gin.Context, fn func(*game.Runtime, string) (game.View, error)) {
	var body playerActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	rt, ok := h.runtime(c)
	if !ok {
		return
	}
	view, err := fn(rt, strings.TrimSpace(body.PlayerID))
	if err != nil {
		response.Fail(c, err, view)
		return
	}
	response.Success(c, view)
}

func (h *Handler) tableAction(c *gin.Context, fn func(*game.Runtime) (game.View, error)) {
	rt, ok := h.runtime(c)
	if !ok {
		return
	}
	view, err := fn(rt)
	if err != nil {
		response.Fail(c, err, view)
		return
	}
	response.Success(c, view)
}

func (h *Handler) runtime(c *gin.Context) (*game.Runtime, bool) {
	rt, err := h.services.Game.GetRuntime(c.Param("id"))
	if err != nil {
		if errors.Is(err, appErr.ErrSessionNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return nil, false
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rt, true
}

func parsePositiveIntQuery(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return v, nil
}
