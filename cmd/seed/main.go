// Команда seed загружает каталог курсов из YAML:
//
//	seed -file seed/courses.yaml
//
// Преподаватель из каталога создается, если его еще нет.
// Курсы проходят те же проверки, что и при создании через API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/yourusername/lms-api/internal/config"
	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	pgRepo "github.com/yourusername/lms-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/lms-api/internal/repository/redis"
	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/service/content"
	"github.com/yourusername/lms-api/pkg/auth"
	"github.com/yourusername/lms-api/pkg/database"
)

func main() {
	file := flag.String("file", "seed/courses.yaml", "YAML catalog to load")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	flag.Parse()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	catalog, err := ParseCatalog(f)
	f.Close()
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), false)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.MigrateDB(db, database.DefaultMigrationsSource); err != nil {
		log.Fatal(err)
	}
	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Fatal(err)
	}
	userRepo := pgRepo.NewUserRepo(db)
	courseRepo := pgRepo.NewCourseRepo(db)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cfg.JWT.WSTicketExpirySec)
	if err != nil {
		log.Fatal(err)
	}
	authService, err := service.NewAuthService(userRepo, pgRepo.NewSessionRepo(db), jwtService)
	if err != nil {
		log.Fatal(err)
	}
	oembed := content.NewOEmbedClient(cfg.OEmbed.Timeout, cfg.OEmbed.YouTubeURL, cfg.OEmbed.VimeoURL)
	courseService := service.NewCourseService(courseRepo, pgRepo.NewEnrollmentRepo(db), cacheRepo, content.DefaultRegistry(), oembed, cfg.Quiz.CacheTTL)
	quizService := service.NewQuizService(pgRepo.NewQuizRepo(db), pgRepo.NewQuestionRepo(db), courseRepo, cacheRepo, cfg.Quiz.DraftTTL, cfg.Quiz.CacheTTL)

	instructor, err := ensureInstructor(ctx, authService, userRepo, catalog.Instructor)
	if err != nil {
		log.Fatalf("Failed to prepare instructor: %v", err)
	}
	p := &auth.Principal{UserID: instructor.ID, Email: instructor.Email, Role: entity.RoleInstructor}

	for _, cs := range catalog.Courses {
		if err := seedCourse(ctx, courseService, quizService, p, cs); err != nil {
			log.Fatalf("Failed to seed course %q: %v", cs.Title, err)
		}
	}
	log.Printf("[Seed] Загружено курсов: %d", len(catalog.Courses))
}

func ensureInstructor(ctx context.Context, authService *service.AuthService, userRepo repository.UserRepository, seed InstructorSeed) (*entity.User, error) {
	user, err := userRepo.GetByEmail(ctx, seed.Email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = authService.Register(ctx, service.RegisterInput{
			Username: seed.Username,
			Email:    seed.Email,
			Password: seed.Password,
			FullName: seed.FullName,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("[Seed] Создан пользователь %s (ID=%d)", user.Email, user.ID)
	case err != nil:
		return nil, err
	}

	if user.Role != entity.RoleInstructor && user.Role != entity.RoleAdmin {
		if err := userRepo.UpdateProfile(ctx, user.ID, map[string]interface{}{"role": entity.RoleInstructor}); err != nil {
			return nil, err
		}
		user.Role = entity.RoleInstructor
	}
	return user, nil
}

func seedCourse(ctx context.Context, courses *service.CourseService, quizzes *service.QuizService, p *auth.Principal, cs CourseSeed) error {
	course := cs.ToEntity()
	if err := courses.CreateCourse(ctx, p, course); err != nil {
		return err
	}

	for i, ms := range cs.Modules {
		moduleID := course.Modules[i].ID
		for _, qs := range ms.Quizzes {
			quiz, err := quizzes.SubmitWizard(ctx, p, qs.Draft(moduleID))
			if err != nil {
				return err
			}
			if qs.Final {
				if err := quizzes.SetFinalQuiz(ctx, p, moduleID, &quiz.ID); err != nil {
					return err
				}
			}
		}
	}
	log.Printf("[Seed] Курс %q создан (ID=%d)", course.Title, course.ID)
	return nil
}
