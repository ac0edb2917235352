package roomhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coderoomsgo/internal/matchlog"
	"coderoomsgo/internal/problems"
	"coderoomsgo/internal/services/room"
)

type Handler struct {
	rooms   room.IRoomService
	catalog *problems.Catalog
	matches *matchlog.Store
}

func New(rooms room.IRoomService, catalog *problems.Catalog, matches *matchlog.Store) *Handler {
	return &Handler{rooms: rooms, catalog: catalog, matches: matches}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/rooms/:id", h.peek)
	r.GET("/problems", h.problems)
	r.GET("/matches", h.list)
}

// @Summary		Peek at a room
// @Description	Returns whether a room exists, how many members it has and whether a round is running. Used by the join page.
// @Tags			Rooms
// @Param			id	path		string	true	"Room ID"
// @Success		200	{object}	room.Snapshot
// @Failure		404	{object}	ErrorResponse
// @Router			/rooms/{id} [get]
func (h *Handler) peek(c *gin.Context) {
	snap, ok := h.rooms.Snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary		List problems
// @Description	Returns the full problem catalog this instance serves rounds from.
// @Tags			Problems
// @Success		200	{array}	problems.Problem
// @Router			/problems [get]
func (h *Handler) problems(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.List())
}

// @Summary		List recent matches
// @Description	Retrieves a paginated list of concluded rounds, most recent first.
// @Tags			Matches
// @Param			limit	query		int	false	"Max results (0-100)"	minimum(0)	maximum(100)	default(10)
// @Param			offset	query		int	false	"Offset for pagination"	minimum(0)	default(0)
// @Success		200		{array}		matchlog.MatchDTO
// @Failure		400		{object}	ErrorResponse
// @Failure		500		{object}	ErrorResponse
// @Router			/matches [get]
func (h *Handler) list(c *gin.Context) {
	var q ListMatchesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	out, err := h.matches.List(c, q.Limit, q.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}
