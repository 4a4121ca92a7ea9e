package server

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/legamerdc/cathy"
)

// Session 绑定一个在线用户与其链路
type Session struct {
	UID       uint64
	SessionID string
	Conn      *cathy.Connection
}

// SessionManager 维护 uid -> Session，全部操作由同一把锁保护
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uint64]*Session
	lastUID  uint64 // 最近一次分配的 uid
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[uint64]*Session)}
}

// NewSession 分配下一个 uid（从 1 开始）并登记 conn 的副本句柄，返回 Session 拷贝
func (m *SessionManager) NewSession(conn *cathy.Connection) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUID++
	s := &Session{UID: m.lastUID, SessionID: uuid.NewString(), Conn: conn.Clone()}
	m.sessions[s.UID] = s
	return *s
}

func (m *SessionManager) Load(uid uint64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Remove 幂等；第二个返回值表示本次是否真的移除
func (m *SessionManager) Remove(uid uint64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	if !ok {
		return Session{}, false
	}
	delete(m.sessions, uid)
	return *s, true
}

// OnlineUsers 返回升序 uid 列表
func (m *SessionManager) OnlineUsers() []uint64 {
	m.mu.Lock()
	uids := make([]uint64, 0, len(m.sessions))
	for uid := range m.sessions {
		uids = append(uids, uid)
	}
	m.mu.Unlock()
	slices.Sort(uids)
	return uids
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// snapshot 返回当前全部会话，供关闭时遍历
func (m *SessionManager) snapshot() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	return out
}
