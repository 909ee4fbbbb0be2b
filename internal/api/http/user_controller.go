package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rmatsuoka/gameserver/internal/service"
)

type UserController struct {
	users service.UserInteractor
}

func NewUserController(users service.UserInteractor) *UserController {
	return &UserController{users: users}
}

func (c *UserController) CreateUser(ctx *gin.Context) {
	type request struct {
		UserName     string `json:"user_name" binding:"required"`
		LeaderCardID int64  `json:"leader_card_id"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := c.users.CreateUser(ctx.Request.Context(), req.UserName, req.LeaderCardID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user_token": token})
}

func (c *UserController) Me(ctx *gin.Context) {
	user, err := c.users.GetUserByToken(ctx.Request.Context(), authToken(ctx))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidToken) {
			status = http.StatusUnauthorized
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (c *UserController) UpdateUser(ctx *gin.Context) {
	type request struct {
		UserName     string `json:"user_name" binding:"required"`
		LeaderCardID int64  `json:"leader_card_id"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := c.users.UpdateUser(ctx.Request.Context(), authToken(ctx), req.UserName, req.LeaderCardID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidToken) {
			status = http.StatusUnauthorized
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}
