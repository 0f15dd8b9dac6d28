// websocket.go

package game

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jacl-coder/InkBrawl-Server/internal/protocol"
	"github.com/jacl-coder/InkBrawl-Server/pkg/logger"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小，画作以 base64 提交
	maxMessageSize = 2 * 1024 * 1024

	// 发送队列长度
	sendBufferSize = 256
)

// errSendQueueFull 发送队列已满，视为连接失效
var errSendQueueFull = errors.New("发送队列已满")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type outbound struct {
	messageType int
	data        []byte
}

// wsConn 参与者的 WebSocket 连接
type wsConn struct {
	participantID string
	ws            *websocket.Conn
	codec         protocol.Codec
	send          chan outbound
	closeOnce     sync.Once
	closed        chan struct{}
	log           *logrus.Entry
}

func newWSConn(participantID string, ws *websocket.Conn, codec protocol.Codec) *wsConn {
	return &wsConn{
		participantID: participantID,
		ws:            ws,
		codec:         codec,
		send:          make(chan outbound, sendBufferSize),
		closed:        make(chan struct{}),
		log:           logger.Log.WithField("participant", participantID),
	}
}

// Send 编码后放入发送队列，不阻塞房间协程
func (c *wsConn) Send(kind string, payload any) error {
	data, err := c.codec.Encode(kind, payload)
	if err != nil {
		return err
	}
	msgType := websocket.TextMessage
	if c.codec.Binary() {
		msgType = websocket.BinaryMessage
	}
	select {
	case <-c.closed:
		return ErrRoomClosed
	default:
	}
	select {
	case c.send <- outbound{messageType: msgType, data: data}:
		return nil
	default:
		return errSendQueueFull
	}
}

// Close 关闭连接，可重复调用
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	return nil
}

// handleWSConnection 处理WebSocket连接
func (s *GameServer) handleWSConnection(c *gin.Context) {
	claims, err := s.auth.Verify(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未授权"})
		return
	}
	code := c.Query("room")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少房间号"})
		return
	}
	room, err := s.GetOrCreateRoom(code)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrTooManyRooms) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	// 升级HTTP连接为WebSocket
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket升级失败")
		return
	}

	conn := newWSConn(claims.ParticipantID, ws, protocol.CodecByName(c.Query("codec")))

	// 先启动写协程，欢迎消息和状态才能发出
	go conn.writePump()
	room, err = s.joinRoom(room, code, claims.ParticipantID, claims.Name, conn)
	if err != nil {
		conn.log.WithError(err).Info("加入房间失败")
		_ = conn.Send(protocol.KindError, protocol.CreateErrorResponse(joinErrorCode(err), err.Error()))
		_ = conn.Close()
		return
	}

	conn.log.WithField("room", code).Info("玩家已连接")
	go conn.readPump(room)
}

// joinRoom 加入房间，房间恰好被清理时重新获取一次
func (s *GameServer) joinRoom(room *Room, code, participantID, name string, conn Conn) (*Room, error) {
	err := room.Join(participantID, name, conn)
	if errors.Is(err, ErrRoomClosed) {
		if room, err = s.GetOrCreateRoom(code); err != nil {
			return nil, err
		}
		err = room.Join(participantID, name, conn)
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func joinErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrBattleInProgress):
		return "battle_in_progress"
	case errors.Is(err, ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, ErrTooManyRooms):
		return "too_many_rooms"
	}
	return "join_failed"
}

// readPump 从WebSocket读取数据
func (c *wsConn) readPump(room *Room) {
	defer func() {
		room.Leave(c.participantID)
		_ = c.Close()
	}()

	// 设置读取参数
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("WebSocket错误")
			}
			return
		}

		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			c.log.WithError(err).Debug("解析消息失败")
			continue
		}
		room.Command(c.participantID, env.Type, env.Payload)
	}
}

// writePump 向WebSocket写入数据
func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(msg.messageType, msg.data); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.closed:
			// 尽量发出队列中剩余的消息
			for {
				select {
				case msg := <-c.send:
					_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.ws.WriteMessage(msg.messageType, msg.data); err != nil {
						return
					}
				default:
					_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		}
	}
}
