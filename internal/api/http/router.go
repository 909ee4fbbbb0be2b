package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(roomController *RoomController, userController *UserController) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	if userController != nil {
		user := router.Group("/user")
		user.POST("/create", userController.CreateUser)

		authed := user.Group("", AuthRequired())
		authed.GET("/me", userController.Me)
		authed.POST("/update", userController.UpdateUser)
	}

	if roomController != nil {
		room := router.Group("/room", AuthRequired())
		room.POST("/create", roomController.CreateRoom)
		room.POST("/list", roomController.ListRooms)
		room.POST("/join", roomController.JoinRoom)
		room.POST("/wait", roomController.WaitRoom)
		room.POST("/start", roomController.StartRoom)
		room.POST("/end", roomController.EndRoom)
		room.POST("/result", roomController.ResultRoom)
		room.POST("/leave", roomController.LeaveRoom)
	}

	return router
}
