package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rmatsuoka/gameserver/internal/api/http/converter"
	"github.com/rmatsuoka/gameserver/internal/domain"
	"github.com/rmatsuoka/gameserver/internal/service"
)

type RoomController struct {
	rooms service.RoomInteractor
}

func NewRoomController(rooms service.RoomInteractor) *RoomController {
	return &RoomController{rooms: rooms}
}

func (c *RoomController) CreateRoom(ctx *gin.Context) {
	type request struct {
		LiveID           int64 `json:"live_id"`
		SelectDifficulty int   `json:"select_difficulty" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	roomID, err := c.rooms.CreateRoom(ctx.Request.Context(), authToken(ctx), req.LiveID, domain.LiveDifficulty(req.SelectDifficulty))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

func (c *RoomController) ListRooms(ctx *gin.Context) {
	type request struct {
		LiveID int64 `json:"live_id"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rooms, err := c.rooms.ListRooms(ctx.Request.Context(), req.LiveID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"room_info_list": rooms})
}

func (c *RoomController) JoinRoom(ctx *gin.Context) {
	type request struct {
		RoomID           int64 `json:"room_id" binding:"required"`
		SelectDifficulty int   `json:"select_difficulty" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := c.rooms.JoinRoom(ctx.Request.Context(), authToken(ctx), req.RoomID, domain.LiveDifficulty(req.SelectDifficulty))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"join_room_result": result})
}

func (c *RoomController) WaitRoom(ctx *gin.Context) {
	type request struct {
		RoomID int64 `json:"room_id" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status, members, err := c.rooms.WaitRoom(ctx.Request.Context(), authToken(ctx), req.RoomID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":         status,
		"room_user_list": converter.MembersToApi(members),
	})
}

func (c *RoomController) StartRoom(ctx *gin.Context) {
	type request struct {
		RoomID int64 `json:"room_id" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := c.rooms.StartRoom(ctx.Request.Context(), authToken(ctx), req.RoomID); err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}

func (c *RoomController) EndRoom(ctx *gin.Context) {
	type request struct {
		RoomID         int64 `json:"room_id" binding:"required"`
		JudgeCountList []int `json:"judge_count_list"`
		Score          int   `json:"score"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := c.rooms.EndRoom(ctx.Request.Context(), authToken(ctx), req.RoomID, req.JudgeCountList, req.Score); err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}

func (c *RoomController) ResultRoom(ctx *gin.Context) {
	type request struct {
		RoomID int64 `json:"room_id" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	results, err := c.rooms.ResultRoom(ctx.Request.Context(), req.RoomID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"result_user_list": results})
}

func (c *RoomController) LeaveRoom(ctx *gin.Context) {
	type request struct {
		RoomID int64 `json:"room_id" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := c.rooms.LeaveRoom(ctx.Request.Context(), authToken(ctx), req.RoomID); err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}

func writeServiceError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotRoomOwner):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrNotRoomMember):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidDifficulty):
		status = http.StatusBadRequest
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
