package testutils

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lecture-terrace/live-qa/internal/model/course"
	"lecture-terrace/live-qa/internal/model/question"
	"lecture-terrace/live-qa/internal/model/session"
	"lecture-terrace/live-qa/internal/model/user"
)

// CreateTestUser creates a test user with unique utorid/email
func CreateTestUser(db *gorm.DB, opts ...UserOption) *user.User {
	uniqueID := uuid.New().String()
	utorid := fmt.Sprintf("test%s", uniqueID[:8])
	email := fmt.Sprintf("test_%s@example.com", uniqueID)

	// Default password hash
	passwordHash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

	testUser := &user.User{
		Utorid:       utorid,
		Email:        email,
		Name:         "Test User",
		PasswordHash: string(passwordHash),
		Role:         user.RoleStudent,
	}

	for _, opt := range opts {
		opt(testUser)
	}

	if err := db.Create(testUser).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test user: %v", err))
	}

	return testUser
}

// UserOption configures test user
type UserOption func(*user.User)

// WithRole sets the global role
func WithRole(role string) UserOption {
	return func(u *user.User) {
		u.Role = role
	}
}

// WithUtorid sets the utorid
func WithUtorid(utorid string) UserOption {
	return func(u *user.User) {
		u.Utorid = utorid
	}
}

// CreateTestCourse creates a course owned by the given professor
func CreateTestCourse(db *gorm.DB, createdBy uint) *course.Course {
	testCourse := &course.Course{
		Code:      fmt.Sprintf("CSC%s", uuid.New().String()[:5]),
		Name:      "Test Course",
		Semester:  "2026F",
		CreatedBy: createdBy,
	}
	if err := db.Create(testCourse).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test course: %v", err))
	}
	return testCourse
}

// EnrollUser enrolls a user into a course with the given course-level role
func EnrollUser(db *gorm.DB, courseID, userID uint, role string) *course.CourseEnrollment {
	enrollment := &course.CourseEnrollment{
		UserID:   userID,
		CourseID: courseID,
		Role:     role,
	}
	if err := db.Create(enrollment).Error; err != nil {
		panic(fmt.Sprintf("Failed to create enrollment: %v", err))
	}
	return enrollment
}

// CreateTestSession creates a session in the given course
func CreateTestSession(db *gorm.DB, courseID, createdBy uint, opts ...SessionOption) *session.Session {
	testSession := &session.Session{
		CourseID:             courseID,
		Title:                "Test Session",
		JoinCode:             uuid.New().String()[:8],
		Status:               session.StatusActive,
		IsSubmissionsEnabled: true,
		CreatedBy:            createdBy,
	}

	for _, opt := range opts {
		opt(testSession)
	}

	if err := db.Create(testSession).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test session: %v", err))
	}
	return testSession
}

// SessionOption configures test session
type SessionOption func(*session.Session)

// WithStatus sets the session status
func WithStatus(status string) SessionOption {
	return func(s *session.Session) {
		s.Status = status
	}
}

// WithSubmissionsDisabled disables new question submissions
func WithSubmissionsDisabled() SessionOption {
	return func(s *session.Session) {
		s.IsSubmissionsEnabled = false
	}
}

// CreateTestSlide creates a slide in the given session
func CreateTestSlide(db *gorm.DB, sessionID uint, number int) *session.Slide {
	slide := &session.Slide{
		SessionID:   sessionID,
		SlideNumber: number,
		ContentRef:  fmt.Sprintf("slides/%d.png", number),
	}
	if err := db.Create(slide).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test slide: %v", err))
	}
	return slide
}

// CreateTestQuestion creates a question in the given session
func CreateTestQuestion(db *gorm.DB, sessionID uint, authorID *uint, opts ...QuestionOption) *question.Question {
	testQuestion := &question.Question{
		SessionID:  sessionID,
		AuthorID:   authorID,
		Content:    "What does this slide mean?",
		Visibility: question.VisibilityPublic,
		Status:     question.StatusOpen,
	}

	for _, opt := range opts {
		opt(testQuestion)
	}

	if err := db.Create(testQuestion).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test question: %v", err))
	}
	return testQuestion
}

// QuestionOption configures test question
type QuestionOption func(*question.Question)

// WithVisibility sets question visibility
func WithVisibility(visibility string) QuestionOption {
	return func(q *question.Question) {
		q.Visibility = visibility
	}
}

// WithQuestionStatus sets question status
func WithQuestionStatus(status string) QuestionOption {
	return func(q *question.Question) {
		q.Status = status
	}
}

// WithAnonymous marks the question anonymous and clears the author
func WithAnonymous() QuestionOption {
	return func(q *question.Question) {
		q.IsAnonymous = true
		q.AuthorID = nil
	}
}

// CreateTestAnswer creates an answer to the given question
func CreateTestAnswer(db *gorm.DB, questionID, authorID uint) *question.Answer {
	answer := &question.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    "Here is an explanation.",
	}
	if err := db.Create(answer).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test answer: %v", err))
	}
	return answer
}
