package upvote

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	questionModel "lecture-terrace/live-qa/internal/model/question"
	sessionModel "lecture-terrace/live-qa/internal/model/session"
	"lecture-terrace/live-qa/internal/model/user"
	"lecture-terrace/live-qa/internal/question"
	"lecture-terrace/live-qa/internal/session"
	"lecture-terrace/live-qa/internal/testutils"
)

// setupUpvoteService 创建 UpvoteService 实例用于测试
func setupUpvoteService(t *testing.T) (UpvoteService, UpvoteRepository, *gorm.DB) {
	db := testutils.SetupTestDB(t)
	repo := NewUpvoteRepository(db)
	questionRepo := question.NewQuestionRepository(db)
	gate := session.NewGate(true)
	service := NewUpvoteService(repo, questionRepo, gate, db)
	return service, repo, db
}

// assertCountInvariant 校验核心不变量：计数器恒等于点赞行数
func assertCountInvariant(t *testing.T, repo UpvoteRepository, questionID uint) {
	t.Helper()
	count, err := repo.GetCount(questionID)
	if err != nil {
		t.Fatalf("GetCount error: %v", err)
	}
	rows, err := repo.CountRows(questionID)
	if err != nil {
		t.Fatalf("CountRows error: %v", err)
	}
	if int64(count) != rows {
		t.Errorf("upvote_count = %d but %d upvote rows exist", count, rows)
	}
}

// TestToggleUpvote_Integration 集成测试：点赞切换
func TestToggleUpvote_Integration(t *testing.T) {
	service, repo, db := setupUpvoteService(t)

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

	// 第一次切换：加赞
	resp, err := service.ToggleUpvote(q.ID, student.ID)
	if err != nil {
		t.Fatalf("first toggle error: %v", err)
	}
	if resp.Applied != AppliedAdded {
		t.Errorf("Applied = %q, want %q", resp.Applied, AppliedAdded)
	}
	if resp.UpvoteCount != 1 {
		t.Errorf("UpvoteCount = %d, want 1", resp.UpvoteCount)
	}
	assertCountInvariant(t, repo, q.ID)

	// 第二次切换：取消
	resp, err = service.ToggleUpvote(q.ID, student.ID)
	if err != nil {
		t.Fatalf("second toggle error: %v", err)
	}
	if resp.Applied != AppliedRemoved {
		t.Errorf("Applied = %q, want %q", resp.Applied, AppliedRemoved)
	}
	if resp.UpvoteCount != 0 {
		t.Errorf("UpvoteCount = %d, want 0", resp.UpvoteCount)
	}
	assertCountInvariant(t, repo, q.ID)

	// 第三次切换：重新加赞
	resp, err = service.ToggleUpvote(q.ID, student.ID)
	if err != nil {
		t.Fatalf("third toggle error: %v", err)
	}
	if resp.Applied != AppliedAdded {
		t.Errorf("Applied = %q, want %q", resp.Applied, AppliedAdded)
	}
	if resp.UpvoteCount != 1 {
		t.Errorf("UpvoteCount = %d, want 1", resp.UpvoteCount)
	}
	assertCountInvariant(t, repo, q.ID)
}

// TestToggleUpvote_MultipleUsers 测试多用户各自独立的点赞状态
func TestToggleUpvote_MultipleUsers(t *testing.T) {
	service, repo, db := setupUpvoteService(t)

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, nil)

	userA := testutils.CreateTestUser(db)
	userB := testutils.CreateTestUser(db)
	userC := testutils.CreateTestUser(db)

	for _, u := range []uint{userA.ID, userB.ID, userC.ID} {
		if _, err := service.ToggleUpvote(q.ID, u); err != nil {
			t.Fatalf("toggle for user %d error: %v", u, err)
		}
	}

	count, err := repo.GetCount(q.ID)
	if err != nil {
		t.Fatalf("GetCount error: %v", err)
	}
	if count != 3 {
		t.Errorf("UpvoteCount = %d, want 3", count)
	}
	assertCountInvariant(t, repo, q.ID)

	// userB 取消，其他两人不受影响
	resp, err := service.ToggleUpvote(q.ID, userB.ID)
	if err != nil {
		t.Fatalf("toggle off error: %v", err)
	}
	if resp.Applied != AppliedRemoved {
		t.Errorf("Applied = %q, want %q", resp.Applied, AppliedRemoved)
	}
	if resp.UpvoteCount != 2 {
		t.Errorf("UpvoteCount = %d, want 2", resp.UpvoteCount)
	}
	assertCountInvariant(t, repo, q.ID)
}

// TestToggleUpvote_EndedSession 测试 ENDED 会话拦截点赞
func TestToggleUpvote_EndedSession(t *testing.T) {
	service, _, db := setupUpvoteService(t)

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	endedSess := testutils.CreateTestSession(db, testCourse.ID, professor.ID,
		testutils.WithStatus(sessionModel.StatusEnded))
	q := testutils.CreateTestQuestion(db, endedSess.ID, &student.ID)

	_, err := service.ToggleUpvote(q.ID, student.ID)
	if !errors.Is(err, session.ErrUpvoteInEndedSession) {
		t.Errorf("error = %v, want %v", err, session.ErrUpvoteInEndedSession)
	}

	// 被拦截的调用不能留下任何点赞痕迹
	var rows int64
	db.Model(&questionModel.QuestionUpvote{}).Where("question_id = ?", q.ID).Count(&rows)
	if rows != 0 {
		t.Errorf("upvote rows = %d, want 0", rows)
	}
}

// TestToggleUpvote_QuestionNotFound 测试不存在的提问
func TestToggleUpvote_QuestionNotFound(t *testing.T) {
	service, _, db := setupUpvoteService(t)
	student := testutils.CreateTestUser(db)

	_, err := service.ToggleUpvote(99999, student.ID)
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("error = %v, want %v", err, ErrQuestionNotFound)
	}
}

// TestCreateIfAbsent_DuplicateKeepsTransactionUsable 测试重复插入不中止事务
// 并发加赞输掉的一方必须还能在同一事务里继续执行取消：
// 重复的 CreateIfAbsent 返回 0 行且无错误，随后的删行和计数调整照常工作
func TestCreateIfAbsent_DuplicateKeepsTransactionUsable(t *testing.T) {
	_, repo, db := setupUpvoteService(t)

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

	err := db.Transaction(func(tx *gorm.DB) error {
		rows, err := repo.CreateIfAbsent(tx, &questionModel.QuestionUpvote{QuestionID: q.ID, UserID: student.ID})
		if err != nil {
			return err
		}
		if rows != 1 {
			t.Errorf("first insert rows = %d, want 1", rows)
		}
		if err := repo.AdjustCount(tx, q.ID, +1); err != nil {
			return err
		}

		// 同一行再插一次：0 行、无错误
		rows, err = repo.CreateIfAbsent(tx, &questionModel.QuestionUpvote{QuestionID: q.ID, UserID: student.ID})
		if err != nil {
			t.Fatalf("duplicate insert error: %v", err)
		}
		if rows != 0 {
			t.Errorf("duplicate insert rows = %d, want 0", rows)
		}

		// 事务必须仍然可用：按切换语义继续取消
		deleted, err := repo.Delete(tx, q.ID, student.ID)
		if err != nil {
			t.Fatalf("delete after duplicate insert error: %v", err)
		}
		if deleted != 1 {
			t.Errorf("deleted rows = %d, want 1", deleted)
		}
		return repo.AdjustCount(tx, q.ID, -1)
	})
	if err != nil {
		t.Fatalf("transaction error: %v", err)
	}

	assertCountInvariant(t, repo, q.ID)
}

// TestToggleUpvote_ExistingRow 测试外部已落行时按取消处理
// 行在服务外被写入（如并发请求先提交），切换调用按既有状态取消
func TestToggleUpvote_ExistingRow(t *testing.T) {
	service, repo, db := setupUpvoteService(t)

	professor := testutils.CreateTestUser(db, testutils.WithRole(user.RoleProfessor))
	testCourse := testutils.CreateTestCourse(db, professor.ID)
	student := testutils.CreateTestUser(db)
	sess := testutils.CreateTestSession(db, testCourse.ID, professor.ID)
	q := testutils.CreateTestQuestion(db, sess.ID, &student.ID)

	// 绕过服务直接落行，计数器同步
	if err := db.Create(&questionModel.QuestionUpvote{QuestionID: q.ID, UserID: student.ID}).Error; err != nil {
		t.Fatalf("seed upvote error: %v", err)
	}
	db.Model(&questionModel.Question{}).Where("id = ?", q.ID).Update("upvote_count", 1)

	// 同一用户切换：行已存在，按取消处理
	resp, err := service.ToggleUpvote(q.ID, student.ID)
	if err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	if resp.Applied != AppliedRemoved {
		t.Errorf("Applied = %q, want %q", resp.Applied, AppliedRemoved)
	}
	if resp.UpvoteCount != 0 {
		t.Errorf("UpvoteCount = %d, want 0", resp.UpvoteCount)
	}
	assertCountInvariant(t, repo, q.ID)
}
