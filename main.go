package main

import (
	"fmt"
	"log"
	"os"

	_ "queue_hack/docs"
	"queue_hack/internal/auth"
	"queue_hack/internal/handlers"
	"queue_hack/internal/models"
	"queue_hack/internal/storage"
	"queue_hack/internal/tasks"
	"queue_hack/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Электронная очередь с обменом местами
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(
		&models.User{},
		&models.Institution{},
		&models.Queue{},
		&models.Token{},
		&models.SwapRequest{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/user/register", handlers.RegisterUser)
		authGroup.POST("/user/login", handlers.LoginUser)
		authGroup.POST("/institution/register", handlers.RegisterInstitution)
		authGroup.POST("/institution/login", handlers.LoginInstitution)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	public := r.Group("/api")
	{
		public.GET("/institutions", handlers.SearchInstitutionsHandler)
		public.GET("/queues/:id/state", handlers.GetQueueBoardHandler)
		public.GET("/queues/:id/ws", ws.QueueWebSocketHandler)
	}

	userAPI := r.Group("/api", auth.UserAuthMiddleware())
	{
		userAPI.POST("/queues/:id/book", handlers.BookTokenHandler)
		userAPI.POST("/tokens/:id/confirm", handlers.ConfirmTokenHandler)
		userAPI.POST("/tokens/:id/snooze", handlers.SnoozeTokenHandler)
		userAPI.POST("/tokens/:id/cancel", handlers.CancelTokenHandler)
		userAPI.POST("/tokens/:id/move-back", handlers.MoveBackHandler)
		userAPI.POST("/tokens/:id/swap/tiered", handlers.ProposeTieredHandler)
		userAPI.POST("/tokens/:id/swap/direct", handlers.ProposeDirectHandler)
		userAPI.POST("/swaps/:id/accept", handlers.AcceptSwapHandler)
		userAPI.POST("/swaps/:id/reject", handlers.RejectSwapHandler)
		userAPI.GET("/user/dashboard", handlers.UserDashboardHandler)
	}

	instAPI := r.Group("/api", auth.InstitutionAuthMiddleware())
	{
		instAPI.POST("/queues", handlers.CreateQueueHandler)
		instAPI.POST("/queues/:id/pause", handlers.PauseQueueHandler)
		instAPI.POST("/queues/:id/resume", handlers.ResumeQueueHandler)
		instAPI.POST("/queues/:id/close", handlers.CloseQueueHandler)
		instAPI.POST("/queues/:id/call-next", handlers.CallNextHandler)
		instAPI.GET("/institution/dashboard", handlers.InstitutionDashboardHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
