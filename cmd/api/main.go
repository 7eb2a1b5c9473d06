package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/config"
	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/handler"
	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/middleware"
	pgRepo "github.com/yourusername/lms-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/lms-api/internal/repository/redis"
	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/service/content"
	ws "github.com/yourusername/lms-api/internal/websocket"
	"github.com/yourusername/lms-api/pkg/auth"
	"github.com/yourusername/lms-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	isProduction := gin.Mode() == gin.ReleaseMode

	// Контекст жизненного цикла фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db, database.DefaultMigrationsSource); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Репозитории
	userRepo := pgRepo.NewUserRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	courseRepo := pgRepo.NewCourseRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	completionRepo := pgRepo.NewCompletionRepo(db)
	enrollmentRepo := pgRepo.NewEnrollmentRepo(db)
	gamificationRepo := pgRepo.NewGamificationRepo(db)
	forumRepo := pgRepo.NewForumRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cfg.JWT.WSTicketExpirySec)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Письма отправляются только при наличии ключа Resend
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.ResendAPIKey != "" {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	} else {
		log.Println("RESEND_API_KEY не задан, письма отправляться не будут")
	}

	// WebSocket
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)
	wsManager := ws.NewManager(wsHub)

	// Сервисы
	viewers := content.DefaultRegistry()
	oembed := content.NewOEmbedClient(cfg.OEmbed.Timeout, cfg.OEmbed.YouTubeURL, cfg.OEmbed.VimeoURL)

	authService, err := service.NewAuthService(userRepo, sessionRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	userService := service.NewUserService(userRepo)
	gamificationService := service.NewGamificationService(gamificationRepo, userRepo, attemptRepo, forumRepo, cacheRepo, wsManager, cfg.Quiz.CacheTTL)
	quizService := service.NewQuizService(quizRepo, questionRepo, courseRepo, cacheRepo, cfg.Quiz.DraftTTL, cfg.Quiz.CacheTTL)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, cacheRepo, viewers, oembed, cfg.Quiz.CacheTTL)
	progressService := service.NewProgressService(courseRepo, completionRepo, enrollmentRepo, userRepo, viewers, gamificationService, emailService)
	attemptService := service.NewAttemptService(attemptRepo, userRepo, quizService, progressService, gamificationService, emailService)
	forumService := service.NewForumService(forumRepo, courseRepo, enrollmentRepo, gamificationService, wsManager)

	scheduler := service.NewScheduler(service.SchedulerConfig{
		LeaderboardSpec: cfg.Scheduler.LeaderboardSpec,
		CleanupSpec:     cfg.Scheduler.CleanupSpec,
		StaleAttemptTTL: cfg.Scheduler.StaleAttemptTTL,
		StaleSessionTTL: cfg.Scheduler.StaleSessionTTL,
		JobTimeout:      cfg.Scheduler.JobTimeout,
	}, gamificationService, attemptService, authService)

	// Обработчики
	if err := dto.RegisterValidators(); err != nil {
		log.Printf("Failed to register validators: %v", err)
		os.Exit(1)
	}
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	quizHandler := handler.NewQuizHandler(quizService, attemptService)
	attemptHandler := handler.NewAttemptHandler(attemptService)
	courseHandler := handler.NewCourseHandler(courseService)
	progressHandler := handler.NewProgressHandler(progressService)
	gamificationHandler := handler.NewGamificationHandler(gamificationService)
	forumHandler := handler.NewForumHandler(forumService)
	wsHandler := handler.NewWSHandler(wsHub, wsManager, quizService, attemptService, jwtService, cfg.Server.CORSOrigins)

	authMiddleware := middleware.NewAuthMiddleware(jwtService, sessionRepo)
	rateLimiter := middleware.NewRateLimiter(redisClient)
	authors := authMiddleware.RequireRole(entity.RoleInstructor, entity.RoleAdmin)

	router := gin.Default()

	// В production не доверяем прокси-заголовкам (защита от IP spoofing)
	trustedProxies := []string{"127.0.0.1", "::1"}
	if isProduction {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			strict := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strict, authHandler.Register)
			authGroup.POST("/login", strict, authHandler.Login)

			authed := authGroup.Group("")
			authed.Use(authMiddleware.RequireAuth())
			{
				authed.POST("/logout", authHandler.Logout)
				authed.POST("/ws-ticket", authHandler.GetWSTicket)
				authed.GET("/me", authHandler.GetMe)
			}
		}

		me := api.Group("/users/me")
		me.Use(authMiddleware.RequireAuth())
		{
			me.PUT("", userHandler.UpdateProfile)
			me.PUT("/language", userHandler.SetLanguage)
			me.GET("/courses", courseHandler.MyCourses)
			me.GET("/attempts", attemptHandler.MyAttempts)
			me.GET("/stats", gamificationHandler.MyStats)
		}

		api.GET("/leaderboard", gamificationHandler.GlobalLeaderboard)

		// Курсы
		api.GET("/courses", courseHandler.ListCourses)
		api.POST("/courses", authMiddleware.RequireAuth(), authors, courseHandler.CreateCourse)
		course := api.Group("/courses/:id")
		course.Use(middleware.ExtractUintParam("id", "courseID"))
		{
			course.GET("", courseHandler.GetCourse)
			course.GET("/leaderboard", gamificationHandler.CourseLeaderboard)

			authedCourse := course.Group("")
			authedCourse.Use(authMiddleware.RequireAuth())
			{
				authedCourse.POST("/enroll", courseHandler.Enroll)
				authedCourse.GET("/progress", progressHandler.GetProgress)
				authedCourse.POST("/progress/complete", progressHandler.MarkComplete)
				authedCourse.POST("/progress/signal", progressHandler.ReportSignal)
				authedCourse.GET("/threads", forumHandler.ListThreads)
				authedCourse.POST("/threads", forumHandler.CreateThread)
				authedCourse.PUT("", authors, courseHandler.UpdateCourse)
				authedCourse.DELETE("", authors, courseHandler.DeleteCourse)
			}
		}

		module := api.Group("/modules/:id")
		module.Use(middleware.ExtractUintParam("id", "moduleID"), authMiddleware.RequireAuth())
		{
			module.GET("/resources", courseHandler.ModuleResources)
			module.POST("/videos", authors, courseHandler.AddVideo)
			module.POST("/documents", authors, courseHandler.AddDocument)
			module.PUT("/final-quiz", authors, quizHandler.SetFinalQuiz)
		}

		api.GET("/contents/:id", middleware.ExtractUintParam("id", "contentID"), authMiddleware.RequireAuth(), courseHandler.GetContent)

		// Викторины
		quizzes := api.Group("/quizzes")
		quizzes.Use(authMiddleware.RequireAuth())
		{
			quizzes.GET("", quizHandler.ListQuizzes)
			quizzes.POST("", authors, quizHandler.CreateQuiz)
			quizzes.GET("/draft", authors, quizHandler.GetDraft)
			quizzes.PUT("/draft", authors, quizHandler.SaveDraft)
			quizzes.DELETE("/draft", authors, quizHandler.DeleteDraft)

			quiz := quizzes.Group("/:id")
			quiz.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quiz.GET("", quizHandler.GetQuiz)
				quiz.POST("/attempts", attemptHandler.StartAttempt)
				quiz.PUT("", authors, quizHandler.UpdateQuiz)
				quiz.DELETE("", authors, quizHandler.DeleteQuiz)
				quiz.POST("/questions", authors, quizHandler.AddQuestions)
				quiz.GET("/results", authors, quizHandler.GetQuizResults)
				quiz.GET("/results/export", authors, quizHandler.ExportQuizResults)
			}
		}
		api.DELETE("/questions/:id", middleware.ExtractUintParam("id", "questionID"), authMiddleware.RequireAuth(), authors, quizHandler.DeleteQuestion)

		// Попытки
		attempt := api.Group("/attempts/:id")
		attempt.Use(middleware.ExtractUintParam("id", "attemptID"), authMiddleware.RequireAuth())
		{
			attempt.GET("", attemptHandler.GetAttempt)
			attempt.PUT("/answers", rateLimiter.LimitByUser(middleware.AnswerRateLimitConfig(cfg.Server.AnswersPerMinute)), attemptHandler.SubmitAnswer)
			attempt.POST("/complete", attemptHandler.CompleteAttempt)
			attempt.GET("/review", attemptHandler.ReviewAttempt)
		}
		api.PATCH("/answers/:id/grade", middleware.ExtractUintParam("id", "answerID"), authMiddleware.RequireAuth(), authors, attemptHandler.GradeAnswer)

		// Форум
		thread := api.Group("/threads/:id")
		thread.Use(middleware.ExtractUintParam("id", "threadID"), authMiddleware.RequireAuth())
		{
			thread.GET("", forumHandler.GetThread)
			thread.POST("/posts", forumHandler.Reply)
			thread.PATCH("", authors, forumHandler.SetClosed)
		}
	}

	router.GET("/ws", wsHandler.HandleConnection)

	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start scheduler: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	scheduler.Stop(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Останавливаем хаб после HTTP-сервера, чтобы закрыть оставшиеся соединения
	cancel()
	<-wsHub.Done()

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		sqlDB.Close()
	}

	log.Println("Server exited properly")
}
