package api

import (
	"net/http"

	"healthmate/recovery-app/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers onto the router.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	symptomService service.SymptomService,
	recoveryService service.RecoveryService,
	chatService service.ChatService,
) {
	authHandler := NewAuthHandler(authService)
	symptomHandler := NewSymptomHandler(symptomService)
	planHandler := NewPlanHandler(recoveryService)
	chatHandler := NewChatHandler(chatService)

	authMiddleware := AuthMiddleware(jwtSecret)

	// The iOS client talks to the API directly; permissive CORS keeps local
	// development simple.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr})
		})

		// --- Symptom Routes ---
		symptomGroup := protected.Group("/symptoms")
		{
			symptomGroup.POST("", symptomHandler.CreateSymptom)
			symptomGroup.GET("", symptomHandler.GetSymptoms)
			symptomGroup.PUT("/:id", symptomHandler.UpdateSymptom)
			symptomGroup.DELETE("/:id", symptomHandler.DeleteSymptom)
			symptomGroup.POST("/:id/severities", symptomHandler.AddSeverity)
			symptomGroup.POST("/:id/attachments", symptomHandler.RequestAttachmentUpload)
			symptomGroup.GET("/:id/attachments", symptomHandler.GetAttachments)
		}

		// --- Recovery Plan Routes ---
		// POST /recovery-plan generates (and optionally persists); the plan
		// save path stays a separate endpoint because the client mutates the
		// generated plan locally before committing it.
		protected.POST("/recovery-plan", planHandler.GeneratePlan)
		protected.POST("/save-recovery-plan", planHandler.SavePlan)
		protected.GET("/recovery-plan", planHandler.GetPlan)
		protected.POST("/recovery-plan/complete", planHandler.MarkComplete)

		// --- Chat Routes ---
		protected.POST("/chat", chatHandler.SendMessage)
		protected.GET("/chat", chatHandler.GetHistory)
	}
}
