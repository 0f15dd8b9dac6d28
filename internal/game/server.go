package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jacl-coder/InkBrawl-Server/config"
	"github.com/jacl-coder/InkBrawl-Server/internal/auth"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
	"github.com/jacl-coder/InkBrawl-Server/pkg/logger"
)

var (
	// ErrTooManyRooms 房间数量达到上限
	ErrTooManyRooms = errors.New("房间数量已达上限")
	// ErrInvalidRoomCode 房间号格式错误
	ErrInvalidRoomCode = errors.New("房间号无效")
)

const (
	roomCodeLength    = 6
	maxRoomCodeLength = 16
	cleanupInterval   = 10 * time.Second
	defaultRecentN    = 20
)

// ResultLister 最近对局查询
type ResultLister interface {
	Recent(ctx context.Context, n int) ([]models.MatchResult, error)
}

// ServerOptions 游戏服务器依赖
type ServerOptions struct {
	Config   *config.Config
	Auth     *auth.Issuer
	Recorder ResultRecorder
	Results  ResultLister
}

// GameServer 游戏服务器
type GameServer struct {
	config     *config.Config
	rooms      map[string]*Room
	roomsMutex sync.RWMutex
	httpServer *http.Server

	auth     *auth.Issuer
	recorder ResultRecorder
	results  ResultLister

	// 关闭信号
	shutdown  chan struct{}
	isRunning bool
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(opts ServerOptions) *GameServer {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.GlobalConfig
	}
	issuer := opts.Auth
	if issuer == nil {
		issuer = auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	}
	return &GameServer{
		config:   cfg,
		rooms:    make(map[string]*Room),
		auth:     issuer,
		recorder: opts.Recorder,
		results:  opts.Results,
		shutdown: make(chan struct{}),
	}
}

// Start 启动游戏服务器
func (s *GameServer) Start() error {
	if s.isRunning {
		return fmt.Errorf("服务器已经在运行")
	}

	// 初始化HTTP服务器
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.Port),
		Handler: s.createHandler(),
	}

	// 启动HTTP服务器
	go func() {
		logger.Log.Infof("游戏服务器启动，监听端口: %d", s.config.Server.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("HTTP服务器错误: %v", err)
		}
	}()

	// 启动房间管理
	go s.roomManager()

	s.isRunning = true
	return nil
}

// Stop 停止游戏服务器
func (s *GameServer) Stop() error {
	if !s.isRunning {
		return nil
	}

	// 发送关闭信号
	close(s.shutdown)

	// 关闭HTTP服务器
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)

	// 关闭所有房间，连接随房间一起关闭
	s.closeRooms()

	s.isRunning = false
	if err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}
	logger.Log.Info("游戏服务器已停止")
	return nil
}

// createHandler 创建HTTP处理器
func (s *GameServer) createHandler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// 允许跨域
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Next()
	})

	// 健康检查端点
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": s.RoomCount()})
	})

	r.POST("/auth/guest", s.handleGuestLogin)
	r.GET("/rooms", s.handleListRooms)
	r.POST("/rooms", s.handleCreateRoom)
	r.GET("/results/recent", s.handleRecentResults)

	// WebSocket 连接端点
	r.GET("/ws", s.handleWSConnection)

	return r
}

// requestLogger 请求日志中间件
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("HTTP请求")
	}
}

type guestRequest struct {
	Name string `json:"name"`
}

// handleGuestLogin 签发游客令牌
func (s *GameServer) handleGuestLogin(c *gin.Context) {
	var req guestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	token, claims, err := s.auth.IssueGuest(req.Name)
	if err != nil {
		logger.Log.WithError(err).Error("签发游客令牌失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发令牌失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":          token,
		"participant_id": claims.ParticipantID,
		"name":           claims.Name,
		"expires_at":     claims.ExpiresAt.Time,
	})
}

// handleListRooms 房间列表
func (s *GameServer) handleListRooms(c *gin.Context) {
	rooms := s.ListRooms()
	infos := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, room.Info())
	}
	c.JSON(http.StatusOK, gin.H{"rooms": infos})
}

// handleCreateRoom 创建房间，请求体可选
func (s *GameServer) handleCreateRoom(c *gin.Context) {
	var req models.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	room, err := s.CreateRoom(req)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room.Info(), "options": room.Options()})
}

// handleRecentResults 最近对局
func (s *GameServer) handleRecentResults(c *gin.Context) {
	n := defaultRecentN
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit 无效"})
			return
		}
		n = parsed
	}

	if s.results == nil {
		c.JSON(http.StatusOK, gin.H{"results": []models.MatchResult{}})
		return
	}
	results, err := s.results.Recent(c.Request.Context(), n)
	if err != nil {
		logger.Log.WithError(err).Warn("读取最近对局失败")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "暂时无法读取对局记录"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// roomManager 房间管理器
func (s *GameServer) roomManager() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupRooms()
		case <-s.shutdown:
			return
		}
	}
}

// cleanupRooms 清理空闲房间
func (s *GameServer) cleanupRooms() {
	idle := s.config.Server.RoomIdleTimeout

	s.roomsMutex.Lock()
	var stale []*Room
	for code, room := range s.rooms {
		if room.ShouldCleanup(idle) {
			stale = append(stale, room)
			delete(s.rooms, code)
		}
	}
	s.roomsMutex.Unlock()

	for _, room := range stale {
		logger.Log.Infof("清理空闲房间: %s", room.Code)
		room.Stop()
	}
}

func normalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > maxRoomCodeLength {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}

func newRoomCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:roomCodeLength])
}

// startRoomLocked 创建并启动房间，调用方持有写锁
func (s *GameServer) startRoomLocked(code string, req models.RoomRequest) (*Room, error) {
	if limit := s.config.Server.MaxRoomCount; limit > 0 && len(s.rooms) >= limit {
		return nil, ErrTooManyRooms
	}
	opts := req.Resolve(s.config.Game.RoomDefaults())
	room := NewRoom(code, opts, s.recorder)
	s.rooms[code] = room
	room.Start()

	logger.Log.WithFields(logrus.Fields{
		"room":          code,
		"energy_budget": opts.EnergyBudget,
		"drawing_time":  opts.DrawingTimeLimit,
	}).Info("创建房间")
	return room, nil
}

// CreateRoom 用随机房间号创建房间
func (s *GameServer) CreateRoom(req models.RoomRequest) (*Room, error) {
	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()

	code := newRoomCode()
	for _, exists := s.rooms[code]; exists; _, exists = s.rooms[code] {
		code = newRoomCode()
	}
	return s.startRoomLocked(code, req)
}

// GetOrCreateRoom 按房间号获取房间，不存在时使用默认参数创建
func (s *GameServer) GetOrCreateRoom(code string) (*Room, error) {
	code, err := normalizeRoomCode(code)
	if err != nil {
		return nil, err
	}

	s.roomsMutex.RLock()
	room, exists := s.rooms[code]
	s.roomsMutex.RUnlock()
	if exists {
		return room, nil
	}

	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()
	if room, exists := s.rooms[code]; exists {
		return room, nil
	}
	return s.startRoomLocked(code, models.RoomRequest{})
}

// GetRoom 获取房间
func (s *GameServer) GetRoom(code string) (*Room, bool) {
	code, err := normalizeRoomCode(code)
	if err != nil {
		return nil, false
	}
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()

	room, exists := s.rooms[code]
	return room, exists
}

// ListRooms 列出所有房间，按创建时间排序
func (s *GameServer) ListRooms() []*Room {
	s.roomsMutex.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	s.roomsMutex.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].Code < rooms[j].Code
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms
}

// RoomCount 当前房间数
func (s *GameServer) RoomCount() int {
	s.roomsMutex.RLock()
	defer s.roomsMutex.RUnlock()
	return len(s.rooms)
}

// closeRooms 停止所有房间
func (s *GameServer) closeRooms() {
	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()
	for code, room := range s.rooms {
		room.Stop()
		delete(s.rooms, code)
	}
}
