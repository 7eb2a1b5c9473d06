package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/service/progress"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

// MockQuizRepository реализует repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) CreateWithQuestions(ctx context.Context, quiz *entity.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetQuestionRows(ctx context.Context, quizID uint) ([]entity.QuestionRow, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuestionRow), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, quiz *entity.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) ListWithFilters(ctx context.Context, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	args := m.Called(ctx, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByQuizID(ctx context.Context, quizID uint) ([]entity.Question, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) AppendToQuiz(ctx context.Context, quizID uint, questions []entity.Question) error {
	args := m.Called(ctx, quizID, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCourseRepository реализует repository.CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) CreateWithModules(ctx context.Context, course *entity.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uint) (*entity.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseRepository) GetStructure(ctx context.Context, id uint) (*entity.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseRepository) List(ctx context.Context, filters repository.CourseFilters, limit, offset int) ([]entity.Course, int64, error) {
	args := m.Called(ctx, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Course), args.Get(1).(int64), args.Error(2)
}

func (m *MockCourseRepository) Update(ctx context.Context, course *entity.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCourseRepository) GetModule(ctx context.Context, id uint) (*entity.Module, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Module), args.Error(1)
}

func (m *MockCourseRepository) SetModuleFinalQuiz(ctx context.Context, moduleID uint, quizID *uint) error {
	args := m.Called(ctx, moduleID, quizID)
	return args.Error(0)
}

func (m *MockCourseRepository) AddVideo(ctx context.Context, video *entity.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockCourseRepository) AddDocument(ctx context.Context, document *entity.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *MockCourseRepository) GetVideo(ctx context.Context, id uint) (*entity.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Video), args.Error(1)
}

func (m *MockCourseRepository) GetDocument(ctx context.Context, id uint) (*entity.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Document), args.Error(1)
}

func (m *MockCourseRepository) GetContent(ctx context.Context, id uint) (*entity.LessonContent, uint, uint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, 0, 0, args.Error(3)
	}
	return args.Get(0).(*entity.LessonContent), args.Get(1).(uint), args.Get(2).(uint), args.Error(3)
}

func (m *MockCourseRepository) GetLesson(ctx context.Context, id uint) (*entity.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lesson), args.Error(1)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

// MockAttemptRepository реализует repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *entity.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*entity.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetWithAnswers(ctx context.Context, id uint) (*entity.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) UpsertAnswer(ctx context.Context, answer *entity.Answer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetAnswerByID(ctx context.Context, id uint) (*entity.Answer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Answer), args.Error(1)
}

func (m *MockAttemptRepository) SaveGrade(ctx context.Context, attempt *entity.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) Finish(ctx context.Context, attempt *entity.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	args := m.Called(ctx, quizID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) ListAllByQuiz(ctx context.Context, quizID uint) ([]entity.Attempt, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) CountPassedByUser(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) DeleteUnfinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID uint, updates map[string]interface{}) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

// MockSessionRepository реализует repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepository) Close(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockSessionRepository) CloseStale(ctx context.Context, before time.Time, at time.Time) (int64, error) {
	args := m.Called(ctx, before, at)
	return args.Get(0).(int64), args.Error(1)
}

// MockCompletionRepository реализует repository.CompletionRepository
type MockCompletionRepository struct {
	mock.Mock
}

func (m *MockCompletionRepository) Upsert(ctx context.Context, completion *entity.Completion) (bool, error) {
	args := m.Called(ctx, completion)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompletionRepository) ListByUserAndCourse(ctx context.Context, userID, courseID uint) ([]entity.Completion, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Completion), args.Error(1)
}

// MockEnrollmentRepository реализует repository.EnrollmentRepository
type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) Get(ctx context.Context, userID, courseID uint) (*entity.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Enrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) UpdateProgress(ctx context.Context, enrollment *entity.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

// MockGamificationRepository реализует repository.GamificationRepository
type MockGamificationRepository struct {
	mock.Mock
}

func (m *MockGamificationRepository) AwardPoints(ctx context.Context, entry *entity.PointsEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockGamificationRepository) ListPointsHistory(ctx context.Context, userID uint, limit int) ([]entity.PointsEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PointsEntry), args.Error(1)
}

func (m *MockGamificationRepository) GetBadgeByCode(ctx context.Context, code string) (*entity.Badge, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Badge), args.Error(1)
}

func (m *MockGamificationRepository) AwardBadge(ctx context.Context, userID, badgeID uint) (bool, error) {
	args := m.Called(ctx, userID, badgeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGamificationRepository) ListUserBadges(ctx context.Context, userID uint) ([]entity.UserBadge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserBadge), args.Error(1)
}

func (m *MockGamificationRepository) Leaderboard(ctx context.Context, courseID uint, limit int) ([]entity.LeaderboardEntry, error) {
	args := m.Called(ctx, courseID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeaderboardEntry), args.Error(1)
}

func (m *MockGamificationRepository) LeaderboardSince(ctx context.Context, courseID uint, since time.Time, limit int) ([]entity.LeaderboardEntry, error) {
	args := m.Called(ctx, courseID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeaderboardEntry), args.Error(1)
}

func (m *MockGamificationRepository) RecomputeRanks(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockForumRepository реализует repository.ForumRepository
type MockForumRepository struct {
	mock.Mock
}

func (m *MockForumRepository) CreateThread(ctx context.Context, thread *entity.ForumThread) error {
	args := m.Called(ctx, thread)
	return args.Error(0)
}

func (m *MockForumRepository) GetThread(ctx context.Context, id uint) (*entity.ForumThread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ForumThread), args.Error(1)
}

func (m *MockForumRepository) GetThreadWithPosts(ctx context.Context, id uint) (*entity.ForumThread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ForumThread), args.Error(1)
}

func (m *MockForumRepository) ListThreads(ctx context.Context, courseID uint, limit, offset int) ([]entity.ForumThread, int64, error) {
	args := m.Called(ctx, courseID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.ForumThread), args.Get(1).(int64), args.Error(2)
}

func (m *MockForumRepository) CreatePost(ctx context.Context, post *entity.ForumPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockForumRepository) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockForumRepository) SetClosed(ctx context.Context, threadID uint, closed bool) error {
	args := m.Called(ctx, threadID, closed)
	return args.Error(0)
}

// ============================================================================
// Моки зависимостей сервисов
// ============================================================================

// MockRewarder реализует Rewarder
type MockRewarder struct {
	mock.Mock
}

func (m *MockRewarder) OnContentCompleted(ctx context.Context, userID, courseID uint, item progress.Item) {
	m.Called(ctx, userID, courseID, item)
}

func (m *MockRewarder) OnQuizPassed(ctx context.Context, userID, courseID uint, attempt *entity.Attempt, firstPass bool) {
	m.Called(ctx, userID, courseID, attempt, firstPass)
}

func (m *MockRewarder) OnCourseCompleted(ctx context.Context, userID, courseID uint) {
	m.Called(ctx, userID, courseID)
}

func (m *MockRewarder) OnForumPost(ctx context.Context, userID, courseID, postID uint) {
	m.Called(ctx, userID, courseID, postID)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendQuizResult(ctx context.Context, toEmail, name, quizTitle string, percentage int, passed bool) error {
	args := m.Called(ctx, toEmail, name, quizTitle, percentage, passed)
	return args.Error(0)
}

func (m *MockEmailService) SendCourseCompleted(ctx context.Context, toEmail, name, courseTitle string) error {
	args := m.Called(ctx, toEmail, name, courseTitle)
	return args.Error(0)
}

// MockQuizReader реализует QuizReader
type MockQuizReader struct {
	mock.Mock
}

func (m *MockQuizReader) GetQuiz(ctx context.Context, quizID uint) (*entity.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

// MockQuizPassRecorder реализует QuizPassRecorder
type MockQuizPassRecorder struct {
	mock.Mock
}

func (m *MockQuizPassRecorder) RecordQuizPassed(ctx context.Context, userID uint, quiz *entity.Quiz) (bool, uint, error) {
	args := m.Called(ctx, userID, quiz)
	return args.Bool(0), args.Get(1).(uint), args.Error(2)
}

// recordingNotifier запоминает отправленные события
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

type notifiedEvent struct {
	UserID uint
	Type   string
	Data   interface{}
}

func (n *recordingNotifier) NotifyUser(userID uint, eventType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifiedEvent{UserID: userID, Type: eventType, Data: data})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

// stubEnricher заполняет видео фиксированными метаданными
type stubEnricher struct {
	title string
}

func (s stubEnricher) Enrich(ctx context.Context, video *entity.Video) {
	if video.Title == "" {
		video.Title = s.title
	}
	if video.Type == "" {
		video.Type = entity.VideoTypeYouTube
	}
}

func uintPtr(v uint) *uint { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
