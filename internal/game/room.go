// room.go

package game

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
	"github.com/jacl-coder/InkBrawl-Server/internal/protocol"
	"github.com/jacl-coder/InkBrawl-Server/pkg/logger"
)

var (
	// ErrRoomClosed 房间已停止
	ErrRoomClosed = errors.New("房间已关闭")
	// ErrAlreadyJoined 同一参与者重复连接
	ErrAlreadyJoined = errors.New("参与者已在房间中")
)

// Conn 参与者连接
type Conn interface {
	Send(kind string, payload any) error
	Close() error
}

// joinRequest 加入请求，结果通过 reply 返回
type joinRequest struct {
	participantID string
	displayName   string
	conn          Conn
	reply         chan error
}

type leaveRequest struct {
	participantID string
}

type commandRequest struct {
	participantID string
	name          string
	payload       json.RawMessage
}

// RoomInfo 房间列表信息
type RoomInfo struct {
	Code      string       `json:"code"`
	Phase     models.Phase `json:"phase"`
	Players   int          `json:"players"`
	CreatedAt time.Time    `json:"created_at"`
}

// Room 游戏房间，会话的所有调用都在 Run 协程中串行执行
type Room struct {
	Code      string
	CreatedAt time.Time

	inbox    chan any
	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	session *Session
	conns   map[string]Conn
	// 发送失败的连接，当前调用结束后按断线处理
	dropped []string

	// 供其他协程读取的摘要
	infoMutex    sync.RWMutex
	info         RoomInfo
	lastActivity time.Time

	log *logrus.Entry
}

// NewRoom 创建房间，需调用 Start 启动
func NewRoom(code string, opts models.RoomOptions, recorder ResultRecorder) *Room {
	now := time.Now()
	r := &Room{
		Code:         code,
		CreatedAt:    now,
		inbox:        make(chan any, 256),
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		conns:        make(map[string]Conn),
		lastActivity: now,
		log:          logger.Room(code),
	}
	r.session = NewSession(SessionOptions{
		Code:      code,
		Room:      opts,
		Transport: r,
		Recorder:  recorder,
	})
	r.info = RoomInfo{Code: code, Phase: models.PhaseLobby, CreatedAt: now}
	return r
}

// Start 启动房间协程
func (r *Room) Start() {
	r.log.Info("房间启动")
	go r.Run()
}

// Stop 停止房间，可重复调用
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.shutdown)
	})
	<-r.done
}

// Options 房间参数
func (r *Room) Options() models.RoomOptions {
	return r.session.Options()
}

// Join 加入房间，阻塞到房间协程处理完成
func (r *Room) Join(participantID, displayName string, conn Conn) error {
	reply := make(chan error, 1)
	req := joinRequest{participantID: participantID, displayName: displayName, conn: conn, reply: reply}
	select {
	case r.inbox <- req:
	case <-r.shutdown:
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Leave 离开房间
func (r *Room) Leave(participantID string) {
	r.post(leaveRequest{participantID: participantID})
}

// Command 投递参与者指令
func (r *Room) Command(participantID, name string, payload json.RawMessage) {
	r.post(commandRequest{participantID: participantID, name: name, payload: payload})
}

func (r *Room) post(msg any) {
	select {
	case r.inbox <- msg:
	case <-r.shutdown:
	}
}

// Run 房间主循环
// 会话计时器的 Gen 变化时重建 ticker，保证同一时刻只有一个计时器在运行
func (r *Room) Run() {
	defer close(r.done)

	var (
		ticker *time.Ticker
		tickC  <-chan time.Time
		gen    uint64
	)
	rearm := func() {
		t := r.session.ActiveTimer()
		if t.Gen == gen {
			return
		}
		gen = t.Gen
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
		if t.Active() {
			ticker = time.NewTicker(t.Interval)
			tickC = ticker.C
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case msg := <-r.inbox:
			r.handle(msg)
		case <-tickC:
			r.session.Fire(gen)
		case <-r.shutdown:
			r.session.Close()
			for id, c := range r.conns {
				_ = c.Close()
				delete(r.conns, id)
			}
			r.log.Info("房间已停止")
			return
		}
		r.flushDropped()
		rearm()
	}
}

func (r *Room) handle(msg any) {
	switch m := msg.(type) {
	case joinRequest:
		if _, exists := r.conns[m.participantID]; exists {
			m.reply <- ErrAlreadyJoined
			return
		}
		r.conns[m.participantID] = m.conn
		if err := r.session.Join(m.participantID, m.displayName); err != nil {
			delete(r.conns, m.participantID)
			m.reply <- err
			return
		}
		m.reply <- nil
	case leaveRequest:
		r.removeParticipant(m.participantID)
	case commandRequest:
		r.session.HandleCommand(m.participantID, m.name, m.payload)
	}
	r.touch()
}

// removeParticipant 关闭连接并通知会话
func (r *Room) removeParticipant(participantID string) {
	c, ok := r.conns[participantID]
	if !ok {
		return
	}
	delete(r.conns, participantID)
	_ = c.Close()
	r.session.Leave(participantID)
}

// flushDropped 处理发送失败的连接，可能引发新的发送失败
func (r *Room) flushDropped() {
	for len(r.dropped) > 0 {
		id := r.dropped[0]
		r.dropped = r.dropped[1:]
		r.log.WithField("participant", id).Warn("发送失败，断开连接")
		r.removeParticipant(id)
	}
}

// Send 实现 Transport
func (r *Room) Send(participantID, kind string, payload any) {
	c, ok := r.conns[participantID]
	if !ok {
		return
	}
	if err := c.Send(kind, payload); err != nil {
		r.dropped = append(r.dropped, participantID)
	}
}

// Broadcast 实现 Transport
func (r *Room) Broadcast(kind string, payload any) {
	for id, c := range r.conns {
		if err := c.Send(kind, payload); err != nil {
			r.dropped = append(r.dropped, id)
		}
	}
}

// SyncState 实现 Transport，每次推送完整状态
func (r *Room) SyncState(state *protocol.RoomState) {
	r.Broadcast(protocol.KindState, state)

	r.infoMutex.Lock()
	r.info.Phase = state.Phase
	r.info.Players = len(state.Players)
	r.infoMutex.Unlock()
}

func (r *Room) touch() {
	r.infoMutex.Lock()
	r.lastActivity = time.Now()
	r.infoMutex.Unlock()
}

// Info 房间摘要
func (r *Room) Info() RoomInfo {
	r.infoMutex.RLock()
	defer r.infoMutex.RUnlock()
	return r.info
}

// IsEmpty 检查房间是否为空
func (r *Room) IsEmpty() bool {
	return r.Info().Players == 0
}

// ShouldCleanup 检查房间是否应该被清理
func (r *Room) ShouldCleanup(idle time.Duration) bool {
	r.infoMutex.RLock()
	defer r.infoMutex.RUnlock()
	return r.info.Players == 0 && time.Since(r.lastActivity) > idle
}
