package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/metrics"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services groups what the HTTP layer depends on.
type Services struct {
	Auth     service.AuthService
	User     service.UserService
	Activity service.ActivityService
	Session  service.SessionService
	CheckIn  service.CheckInService
	Tutorial service.TutorialService
	Forum    service.ForumService
	Media    service.MediaService
}

func SetupRoutes(router *gin.Engine, services Services, maxUploadBytes int64) {
	authHandler := NewAuthHandler(services.Auth)
	userHandler := NewUserHandler(services.User)
	activityHandler := NewActivityHandler(services.Activity)
	sessionHandler := NewSessionHandler(services.Session)
	checkInHandler := NewCheckInHandler(services.CheckIn)
	tutorialHandler := NewTutorialHandler(services.Tutorial)
	forumHandler := NewForumHandler(services.Forum)
	mediaHandler := NewMediaHandler(services.Media, maxUploadBytes)

	authMiddleware := AuthMiddleware(services.Auth)

	router.Use(RequestLogger(), metrics.PrometheusMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", metrics.Handler())

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		me := protected.Group("/me")
		{
			me.GET("", userHandler.GetMe)
			me.PUT("/profile", userHandler.UpdateProfile)
			me.POST("/checkins", checkInHandler.CheckIn)
			me.GET("/checkins", checkInHandler.History)
		}

		protected.GET("/activities", activityHandler.ListActivities)
		protected.GET("/activities/:id", activityHandler.GetActivity)

		protected.GET("/sessions", sessionHandler.ListSessions)
		protected.GET("/sessions/:id", sessionHandler.GetSession)
		protected.POST("/sessions/:id/join", sessionHandler.JoinSession)

		protected.GET("/tutorials", tutorialHandler.ListTutorials)
		protected.GET("/tutorials/:id", tutorialHandler.GetTutorial)

		forum := protected.Group("/forum")
		{
			forum.GET("/posts", forumHandler.ListPosts)
			forum.POST("/posts", forumHandler.CreatePost)
			forum.GET("/posts/:id", forumHandler.GetPost)
			forum.PUT("/posts/:id", forumHandler.UpdatePost)
			forum.DELETE("/posts/:id", forumHandler.DeletePost)
			forum.GET("/posts/:id/comments", forumHandler.ListComments)
			forum.POST("/posts/:id/comments", forumHandler.AddComment)
			forum.POST("/posts/:id/like", forumHandler.LikePost)
			forum.DELETE("/posts/:id/like", forumHandler.UnlikePost)
			forum.DELETE("/comments/:id", forumHandler.DeleteComment)
		}

		// Back office. Trainers manage content; only admins manage accounts.
		admin := protected.Group("/admin")
		admin.Use(RoleMiddleware(domain.RoleAdmin, domain.RoleTrainer))
		{
			admin.POST("/activities", activityHandler.CreateActivity)
			admin.PUT("/activities/:id", activityHandler.UpdateActivity)
			admin.DELETE("/activities/:id", activityHandler.DeleteActivity)

			admin.POST("/sessions", sessionHandler.CreateSession)
			admin.PUT("/sessions/:id", sessionHandler.UpdateSession)
			admin.DELETE("/sessions/:id", sessionHandler.DeleteSession)
			admin.GET("/sessions/:id/participants", sessionHandler.ListParticipants)

			admin.POST("/tutorials", tutorialHandler.CreateTutorial)
			admin.PUT("/tutorials/:id", tutorialHandler.UpdateTutorial)
			admin.DELETE("/tutorials/:id", tutorialHandler.DeleteTutorial)
			admin.POST("/tutorials/:id/exercises", tutorialHandler.AddExercise)
			admin.PUT("/tutorials/:id/exercises/:exerciseId", tutorialHandler.UpdateExercise)
			admin.DELETE("/tutorials/:id/exercises/:exerciseId", tutorialHandler.RemoveExercise)
			admin.POST("/tutorials/:id/diet-plans", tutorialHandler.AddDietPlan)
			admin.PUT("/tutorials/:id/diet-plans/:planId", tutorialHandler.UpdateDietPlan)
			admin.DELETE("/tutorials/:id/diet-plans/:planId", tutorialHandler.RemoveDietPlan)

			admin.POST("/media", mediaHandler.UploadFile)
			admin.GET("/media", mediaHandler.ListUploads)
			admin.POST("/media/presign", mediaHandler.PresignUpload)
			admin.POST("/media/confirm", mediaHandler.ConfirmUpload)
			admin.GET("/media/:id", mediaHandler.GetUpload)
			admin.DELETE("/media/:id", mediaHandler.DeleteUpload)

			users := admin.Group("/users")
			users.Use(RoleMiddleware(domain.RoleAdmin))
			{
				users.GET("", userHandler.ListUsers)
				users.POST("", userHandler.CreateUser)
				users.GET("/:id", userHandler.GetUser)
				users.PUT("/:id", userHandler.UpdateUser)
				users.DELETE("/:id", userHandler.DeleteUser)
				users.PUT("/:id/access", userHandler.SetAccessStatus)
				users.POST("/:id/access/toggle", userHandler.ToggleAccessStatus)
				users.POST("/:id/credits", userHandler.AdjustCredits)
			}
		}
	}
}
