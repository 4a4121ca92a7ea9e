package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/legamerdc/cathy"
	"github.com/legamerdc/cathy/protocol"
	"github.com/sirupsen/logrus"
)

var errRateLimited = errors.New("server: rate limit exceeded")

// serve 驱动单个连接：登记会话、回 CONNECTED、挂读空闲任务，然后循环读包直到出错
func (s *Server) serve(nc net.Conn) {
	conn := cathy.NewConnection(nc)
	sess := s.sessions.NewSession(conn)
	l := log.WithFields(logrus.Fields{"uid": sess.UID, "remote": conn.RemoteAddr()})
	defer func() {
		conn.Shutdown()
		s.sessions.Remove(sess.UID)
		l.Info("server: disconnected")
	}()
	// Stop 已开始遍历会话，新连接直接关闭
	if s.closing.Load() {
		return
	}
	l.WithField("session", sess.SessionID).Info("server: accepted")

	reply, err := protocol.NewConnected(&protocol.ConnectedReply{Uid: sess.UID, SessionId: sess.SessionID})
	if err == nil {
		err = conn.WritePackage(reply, s.cfg.WriteTimeout)
	}
	if err != nil {
		l.WithError(err).Warn("server: send connected failed")
		return
	}

	task := s.readerIdleTask(sess, l)
	idle := s.wheel.Schedule(task, task.Period())
	defer idle.Cancel()

	limiter := s.cfg.RateLimit.NewLimiter()
	for {
		p, err := conn.ReadPackage()
		if err != nil {
			if errors.Is(err, cathy.ErrStreamClosed) {
				l.WithError(err).Debug("server: read loop finished")
			} else {
				l.WithError(err).Warn("server: read failed")
			}
			return
		}
		if limiter != nil && !limiter.Allow() {
			l.WithField("action", p.Action).Warn(errRateLimited)
			return
		}
		if err := s.handle(sess, conn, p, l); err != nil {
			l.WithError(err).WithField("action", p.Action).Warn("server: protocol violation")
			return
		}
	}
}

// readerIdleTask 读空闲满一个周期即断开并移除会话
func (s *Server) readerIdleTask(sess Session, l *logrus.Entry) *cathy.IdleTask {
	return cathy.NewReaderIdleTask(sess.Conn, s.cfg.Idle.Reader, func(time.Time) bool {
		l.WithField("idle", s.cfg.Idle.Reader).Warn("server: reader idle, closing")
		sess.Conn.Shutdown()
		s.sessions.Remove(sess.UID)
		return false
	})
}

// handle 处理一个入站包；返回错误表示协议违例，调用方断开连接
func (s *Server) handle(sess Session, conn *cathy.Connection, p protocol.Package, l *logrus.Entry) error {
	switch p.Action {
	case protocol.ActionHeartbeat:
		l.Debug("server: heartbeat")
		if err := conn.WritePackage(protocol.NewHeartbeat(protocol.Pong), s.cfg.WriteTimeout); err != nil {
			l.WithError(err).Debug("server: send pong failed")
		}
	case protocol.ActionMsgToUser:
		msg, err := protocol.ParseMsgToUser(p.Content)
		if err != nil {
			return fmt.Errorf("server: parse msg_to_user: %w", err)
		}
		s.route(sess, msg, l)
	default:
		// CONNECTED 只由服务端下发
		l.WithField("action", p.Action).Debug("server: ignored package")
	}
	return nil
}

// route 尽力投递：接收方不在线或写失败只记日志并计数，不通知发送方
func (s *Server) route(from Session, msg *protocol.MsgToUser, l *logrus.Entry) {
	msg.SenderUid = from.UID
	msg.MessageId = s.nextMessageID()
	l = l.WithFields(logrus.Fields{"to": msg.ReceiverUid, "message_id": msg.MessageId})

	to, ok := s.sessions.Load(msg.ReceiverUid)
	if !ok {
		s.dropped.Add(1)
		l.Info("server: receiver offline, message dropped")
		return
	}
	p, err := protocol.NewMsgToUser(msg)
	if err == nil {
		err = to.Conn.WritePackage(p, s.cfg.WriteTimeout)
	}
	if err != nil {
		s.dropped.Add(1)
		l.WithError(err).Info("server: deliver failed, message dropped")
		return
	}
	l.Debug("server: message routed")
}
