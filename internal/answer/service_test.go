package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	questionModel "lecture-terrace/live-qa/internal/model/question"
	sessionModel "lecture-terrace/live-qa/internal/model/session"
	"lecture-terrace/live-qa/internal/model/user"
	"lecture-terrace/live-qa/internal/permission"
	"lecture-terrace/live-qa/internal/question"
	"lecture-terrace/live-qa/internal/ratelimit"
	"lecture-terrace/live-qa/internal/session"
	"lecture-terrace/live-qa/internal/testutils"
	"lecture-terrace/live-qa/pkg/response"
)

// fakeLimiter 内存限流器，记录调用次数并可模拟超限/后端故障
type fakeLimiter struct {
	calls       int
	exceeded    bool
	unavailable bool
}

func (f *fakeLimiter) CheckAndIncrement(ctx context.Context, key string, maxCount int, window time.Duration) (bool, error) {
	f.calls++
	if f.unavailable {
		return false, ratelimit.ErrUnavailable
	}
	return f.exceeded, nil
}

// setupAnswerService 创建 AnswerService 实例用于测试
func setupAnswerService(t *testing.T, limiter ratelimit.Limiter, limits RateLimitOptions) (AnswerService, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	repo := NewAnswerRepository(db)
	questionRepo := question.NewQuestionRepository(db)
	gate := session.NewGate(true)
	perm := permission.NewPermissionService(db)
	service := NewAnswerService(repo, questionRepo, gate, perm, limiter, limits, db)
	return service, db
}

// TestValidateAnswerContent 测试回答内容校验（trim 后判边界）
func TestValidateAnswerContent(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError error
		expected    string
	}{
		{"Normal content", "Use a buffered channel here", nil, "Use a buffered channel here"},
		{"Content with surrounding spaces", "  trimmed  ", nil, "trimmed"},
		{"Single character accepted", "y", nil, "y"},
		{"Empty content", "", ErrAnswerContentEmpty, ""},
		{"Whitespace only", "  \t\n ", ErrAnswerContentEmpty, ""},
		{"Exactly at limit", strings.Repeat("a", AnswerMaxLength), nil, strings.Repeat("a", AnswerMaxLength)},
		{"One over limit", strings.Repeat("a", AnswerMaxLength+1), ErrAnswerContentTooLong, ""},
		{"Spaces do not count toward limit", " " + strings.Repeat("a", AnswerMaxLength) + " ", nil, strings.Repeat("a", AnswerMaxLength)},
		// 边界按字符数计：1000 个汉字是 3000 字节但恰好合法
		{"Multibyte exactly at limit", strings.Repeat("世", AnswerMaxLength), nil, strings.Repeat("世", AnswerMaxLength)},
		{"Multibyte one over limit", strings.Repeat("世", AnswerMaxLength+1), ErrAnswerContentTooLong, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateAnswerContent(tt.content)
			if !errors.Is(err, tt.expectError) {
				t.Errorf("error = %v, want %v", err, tt.expectError)
			}
			if err == nil && got != tt.expected {
				t.Errorf("content = %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestSubmitAnswer_Integration 集成测试：提交回答
func TestSubmitAnswer_Integration(t *testing.T) {
	limiter := &fakeLimiter{}
	service, db := setupAnswerService(t, limiter, RateLimitOptions{MaxCount: 15, WindowSeconds: 60})

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	ta := testutils.CreateTestUser(db)
	testutils.EnrollUser(db, testCourse.ID, ta.ID, user.RoleTA)

	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

	resp, err := service.SubmitAnswer(q.ID, ta.ID, &SubmitAnswerRequest{Content: "Check the loop variable capture"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.AuthorID != ta.ID {
		t.Errorf("AuthorID = %d, want %d", resp.AuthorID, ta.ID)
	}
	if resp.IsAccepted {
		t.Errorf("IsAccepted = true, want false")
	}

	// 首答把提问从 OPEN 翻到 ANSWERED
	var dbQuestion questionModel.Question
	if err := db.First(&dbQuestion, q.ID).Error; err != nil {
		t.Fatalf("Question not found: %v", err)
	}
	if dbQuestion.Status != questionModel.StatusAnswered {
		t.Errorf("question Status = %q, want %q", dbQuestion.Status, questionModel.StatusAnswered)
	}

	// 第二条回答不改变状态
	if _, err := service.SubmitAnswer(q.ID, student.ID, &SubmitAnswerRequest{Content: "Also see the docs"}); err != nil {
		t.Fatalf("second answer error: %v", err)
	}
	if err := db.First(&dbQuestion, q.ID).Error; err != nil {
		t.Fatalf("Question not found: %v", err)
	}
	if dbQuestion.Status != questionModel.StatusAnswered {
		t.Errorf("question Status after second answer = %q, want %q", dbQuestion.Status, questionModel.StatusAnswered)
	}
}

// TestSubmitAnswer_ResolvedStatusMonotonic 测试已解决提问收到新回答不回退状态
func TestSubmitAnswer_ResolvedStatusMonotonic(t *testing.T) {
	service, db := setupAnswerService(t, &fakeLimiter{}, RateLimitOptions{})

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID,
		testutils.WithQuestionStatus(questionModel.StatusResolved))

	if _, err := service.SubmitAnswer(q.ID, student.ID, &SubmitAnswerRequest{Content: "Late addition"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var dbQuestion questionModel.Question
	if err := db.First(&dbQuestion, q.ID).Error; err != nil {
		t.Fatalf("Question not found: %v", err)
	}
	if dbQuestion.Status != questionModel.StatusResolved {
		t.Errorf("question Status = %q, want %q", dbQuestion.Status, questionModel.StatusResolved)
	}
}

// racingQuestionRepo 在读取之后把提问改成 RESOLVED，
// 模拟 resolve 在"读取状态"和"回答事务"之间提交的并发时序
type racingQuestionRepo struct {
	question.QuestionRepository
	db       *gorm.DB
	resolved bool
}

func (r *racingQuestionRepo) FindWithSession(questionID uint) (*question.QuestionWithSession, error) {
	qs, err := r.QuestionRepository.FindWithSession(questionID)
	if err != nil {
		return nil, err
	}
	if !r.resolved {
		r.resolved = true
		if err := r.db.Model(&questionModel.Question{}).
			Where("id = ?", questionID).
			Update("status", questionModel.StatusResolved).Error; err != nil {
			return nil, err
		}
	}
	return qs, nil
}

// TestSubmitAnswer_ConcurrentResolveNotReverted 测试状态不被回答事务拽回
// 读到 OPEN 之后提问被并发 resolve，回答仍然落库，但 RESOLVED 不回退
func TestSubmitAnswer_ConcurrentResolveNotReverted(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewAnswerRepository(db)
	questionRepo := &racingQuestionRepo{
		QuestionRepository: question.NewQuestionRepository(db),
		db:                 db,
	}
	gate := session.NewGate(true)
	perm := permission.NewPermissionService(db)
	service := NewAnswerService(repo, questionRepo, gate, perm, &fakeLimiter{}, RateLimitOptions{}, db)

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

	if _, err := service.SubmitAnswer(q.ID, student.ID, &SubmitAnswerRequest{Content: "raced answer"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var dbQuestion questionModel.Question
	if err := db.First(&dbQuestion, q.ID).Error; err != nil {
		t.Fatalf("Question not found: %v", err)
	}
	if dbQuestion.Status != questionModel.StatusResolved {
		t.Errorf("question Status = %q, want %q", dbQuestion.Status, questionModel.StatusResolved)
	}

	var rows int64
	db.Model(&questionModel.Answer{}).Where("question_id = ?", q.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("answer rows = %d, want 1", rows)
	}
}

// TestSubmitAnswer_PipelineOrder 测试校验管线的短路顺序
// 内容校验在限流之前：无效输入不消耗限流额度；
// 限流在提问校验之前：超限时不暴露提问是否存在
func TestSubmitAnswer_PipelineOrder(t *testing.T) {
	limiter := &fakeLimiter{}
	service, db := setupAnswerService(t, limiter, RateLimitOptions{MaxCount: 15, WindowSeconds: 60})

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

	// 1. 空内容在本地被拒，限流器没有被触碰
	_, err := service.SubmitAnswer(q.ID, student.ID, &SubmitAnswerRequest{Content: "   "})
	if !errors.Is(err, ErrAnswerContentEmpty) {
		t.Errorf("error = %v, want %v", err, ErrAnswerContentEmpty)
	}
	if limiter.calls != 0 {
		t.Errorf("limiter calls = %d, want 0", limiter.calls)
	}

	// 2. 超限时连提问都不查：对不存在的提问也返回限流错误
	limiter.exceeded = true
	_, err = service.SubmitAnswer(99999, student.ID, &SubmitAnswerRequest{Content: "valid content"})
	var businessErr *response.BusinessError
	if !errors.As(err, &businessErr) || businessErr.Code != response.RateLimited {
		t.Errorf("error = %v, want rate limited business error", err)
	}
	if limiter.calls != 1 {
		t.Errorf("limiter calls = %d, want 1", limiter.calls)
	}

	// 3. 限流放行后才轮到提问校验
	limiter.exceeded = false
	_, err = service.SubmitAnswer(99999, student.ID, &SubmitAnswerRequest{Content: "valid content"})
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("error = %v, want %v", err, ErrQuestionNotFound)
	}
}

// TestSubmitAnswer_EndedSession 测试 ENDED 会话拦截回答
func TestSubmitAnswer_EndedSession(t *testing.T) {
	service, db := setupAnswerService(t, &fakeLimiter{}, RateLimitOptions{})

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	endedSess := testutils.CreateTestSession(db, testCourse.ID, professor.ID,
		testutils.WithStatus(sessionModel.StatusEnded))
	q := testutils.CreateTestQuestion(db, endedSess.ID, &student.ID)

	_, err := service.SubmitAnswer(q.ID, student.ID, &SubmitAnswerRequest{Content: "Too late"})
	if !errors.Is(err, session.ErrAnswerInEndedSession) {
		t.Errorf("error = %v, want %v", err, session.ErrAnswerInEndedSession)
	}

	var rows int64
	db.Model(&questionModel.Answer{}).Where("question_id = ?", q.ID).Count(&rows)
	if rows != 0 {
		t.Errorf("answer rows = %d, want 0", rows)
	}
}

// TestSubmitAnswer_LimiterUnavailable 测试限流后端故障的两种策略
func TestSubmitAnswer_LimiterUnavailable(t *testing.T) {
	t.Run("Fail closed rejects with infrastructure error", func(t *testing.T) {
		limiter := &fakeLimiter{unavailable: true}
		service, db := setupAnswerService(t, limiter, RateLimitOptions{FailOpen: false})

		professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
		testCourse := testutils.CreateTestCourse(db, professor.ID)
		student := testutils.CreateTestUser(db)
		sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
		q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

		_, err := service.SubmitAnswer(q.ID, student.ID, &SubmitAnswerRequest{Content: "answer"})
		var businessErr *response.BusinessError
		if !errors.As(err, &businessErr) || businessErr.Code != response.Infrastructure {
			t.Errorf("error = %v, want infrastructure business error", err)
		}
	})

	t.Run("Fail open lets the answer through", func(t *testing.T) {
		limiter := &fakeLimiter{unavailable: true}
		service, db := setupAnswerService(t, limiter, RateLimitOptions{FailOpen: true})

		professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
		testCourse := testutils.CreateTestCourse(db, professor.ID)
		student := testutils.CreateTestUser(db)
		sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
		q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

		if _, err := service.SubmitAnswer(q.ID, student.ID, &SubmitAnswerRequest{Content: "answer"}); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})
}

// TestListAnswers_Integration 集成测试：列出提问的回答
func TestListAnswers_Integration(t *testing.T) {
	service, db := setupAnswerService(t, &fakeLimiter{}, RateLimitOptions{})

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

	first := testutils.CreateTestAnswer(db, q.ID, student.ID)
	second := testutils.CreateTestAnswer(db, q.ID, professor.ID)

	answers, err := service.ListAnswers(q.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("len(answers) = %d, want 2", len(answers))
	}
	// 按创建时间升序
	if answers[0].ID != first.ID || answers[1].ID != second.ID {
		t.Errorf("answer order = [%d, %d], want [%d, %d]",
			answers[0].ID, answers[1].ID, first.ID, second.ID)
	}

	// 没有回答的提问返回空列表
	empty := testutils.CreateTestQuestion(db, sess.ID, &student.ID)
	answers, err = service.ListAnswers(empty.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("len(answers) = %d, want 0", len(answers))
	}

	// 不存在的提问
	if _, err := service.ListAnswers(99999); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("error = %v, want %v", err, ErrQuestionNotFound)
	}
}

// TestAcceptAnswer_Integration 集成测试：采纳回答
func TestAcceptAnswer_Integration(t *testing.T) {
	service, db := setupAnswerService(t, &fakeLimiter{}, RateLimitOptions{})

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	testutils.EnrollUser(db, testCourse.ID, student.ID, user.RoleStudent)

	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)
	first := testutils.CreateTestAnswer(db, q.ID, student.ID)
	second := testutils.CreateTestAnswer(db, q.ID, professor.ID)

	// 采纳第一条
	resp, err := service.AcceptAnswer(first.ID, professor.ID, user.RoleProfessor)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resp.IsAccepted {
		t.Errorf("IsAccepted = false, want true")
	}

	// 改采纳第二条：同一提问最多一条被采纳
	if _, err := service.AcceptAnswer(second.ID, professor.ID, user.RoleProfessor); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var accepted []questionModel.Answer
	if err := db.Where("question_id = ? AND is_accepted = ?", q.ID, true).Find(&accepted).Error; err != nil {
		t.Fatalf("query error: %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("accepted answers = %d, want 1", len(accepted))
	}
	if accepted[0].ID != second.ID {
		t.Errorf("accepted answer ID = %d, want %d", accepted[0].ID, second.ID)
	}

	// 学生不能采纳
	if _, err := service.AcceptAnswer(first.ID, student.ID, user.RoleStudent); !errors.Is(err, ErrAcceptForbidden) {
		t.Errorf("error = %v, want %v", err, ErrAcceptForbidden)
	}

	// 不存在的回答
	if _, err := service.AcceptAnswer(99999, professor.ID, user.RoleProfessor); !errors.Is(err, ErrAnswerNotFound) {
		t.Errorf("error = %v, want %v", err, ErrAnswerNotFound)
	}
}
