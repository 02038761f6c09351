package session

import (
	"errors"

	sessionModel "lecture-terrace/live-qa/internal/model/session"
)

// WriteAction 会话内的写操作类型
// 错误消息按操作区分，客户端直接展示
type WriteAction int

const (
	ActionAskQuestion WriteAction = iota
	ActionAnswer
	ActionUpvote
	ActionResolve
	ActionAccept
)

var (
	ErrAskInEndedSession     = errors.New("Cannot ask questions in an ended session")
	ErrAnswerInEndedSession  = errors.New("Cannot answer questions in an ended session")
	ErrUpvoteInEndedSession  = errors.New("Cannot upvote questions in an ended session")
	ErrResolveInEndedSession = errors.New("Cannot resolve questions in an ended session")
	ErrAcceptInEndedSession  = errors.New("Cannot accept answers in an ended session")
	ErrSessionNotStarted     = errors.New("Session has not started yet")
	ErrSubmissionsDisabled   = errors.New("Submissions are currently disabled for this session")
)

// Gate 会话状态写入门禁
// 只读会话状态并裁决写操作是否合法，自身从不改变状态。
// 所有提问/回答/点赞写入必须先过这里，不允许各写路径自行判断。
type Gate struct {
	// allowBeforeStart 为 false 时 SCHEDULED 会话拒绝一切问答写入
	allowBeforeStart bool
}

// NewGate 创建写入门禁
func NewGate(allowBeforeStart bool) *Gate {
	return &Gate{allowBeforeStart: allowBeforeStart}
}

// AssertWritable 裁决写操作
// 规则：
// 1. ENDED 绝对拦截，任何角色都没有例外
// 2. SCHEDULED 按配置决定是否提前开放学生侧问答（不影响教学人员的 resolve）
// 3. 提问额外受 IsSubmissionsEnabled 软开关限制，与状态无关
func (g *Gate) AssertWritable(sess *sessionModel.Session, action WriteAction) error {
	if sess.Status == sessionModel.StatusEnded {
		switch action {
		case ActionAskQuestion:
			return ErrAskInEndedSession
		case ActionAnswer:
			return ErrAnswerInEndedSession
		case ActionResolve:
			return ErrResolveInEndedSession
		case ActionAccept:
			return ErrAcceptInEndedSession
		default:
			return ErrUpvoteInEndedSession
		}
	}

	if sess.Status == sessionModel.StatusScheduled && !g.allowBeforeStart &&
		action != ActionResolve && action != ActionAccept {
		return ErrSessionNotStarted
	}

	if action == ActionAskQuestion && !sess.IsSubmissionsEnabled {
		return ErrSubmissionsDisabled
	}

	return nil
}
