// session.go

package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/combat"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
	"github.com/jacl-coder/InkBrawl-Server/internal/protocol"
	"github.com/jacl-coder/InkBrawl-Server/pkg/logger"
)

var (
	// ErrRoomFull 房间人数已满
	ErrRoomFull = errors.New("房间已满")
	// ErrBattleInProgress 战斗中不能加入
	ErrBattleInProgress = errors.New("战斗进行中，无法加入")
)

// recordTimeout 异步写入对局结果的超时
const recordTimeout = 5 * time.Second

// Transport 会话向参与者投递消息的方式，不需要确认
type Transport interface {
	Send(participantID, kind string, payload any)
	Broadcast(kind string, payload any)
	SyncState(state *protocol.RoomState)
}

// ResultRecorder 对局结果记录
type ResultRecorder interface {
	Record(ctx context.Context, result models.MatchResult) error
}

// SessionOptions 会话依赖
type SessionOptions struct {
	Code      string
	Room      models.RoomOptions
	Transport Transport
	Recorder  ResultRecorder
	// Now 手势冷却与对局计时使用的时钟，为空时使用 time.Now
	Now func() time.Time
}

// drawing 参与者提交的画作
type drawing struct {
	image       string
	sprite      string
	energySpent float64
}

// gestureKey 手势冷却按(参与者, 招式)记录
type gestureKey struct {
	participantID string
	moveID        string
}

// Session 单个房间的对局状态机
// 所有方法都必须在同一个执行上下文中调用，内部不加锁
type Session struct {
	code      string
	opts      models.RoomOptions
	transport Transport
	recorder  ResultRecorder
	now       func() time.Time
	log       *logrus.Entry

	state *protocol.RoomState
	// 加入顺序，决定开局站位
	order []string

	timer    PhaseTimer
	timerGen uint64

	// 单局数据，回到大厅时清空
	drawings         map[string]*drawing
	configs          map[string]models.FighterConfig
	gestures         map[string][]models.GestureMove
	gestureReadyAt   map[gestureKey]time.Time
	sim              *combat.Simulation
	preBattleStarted bool
	matchID          string
	battleStartedAt  time.Time
	broadcastCounter int
}

// NewSession 创建会话，初始阶段为大厅
func NewSession(o SessionOptions) *Session {
	if o.Now == nil {
		o.Now = time.Now
	}
	opts := o.Room.Validated()
	s := &Session{
		code:      o.Code,
		opts:      opts,
		transport: o.Transport,
		recorder:  o.Recorder,
		now:       o.Now,
		log:       logger.Room(o.Code),
		state:     protocol.NewRoomState(opts),
	}
	s.clearMatch()
	return s
}

// Code 房间号
func (s *Session) Code() string {
	return s.code
}

// Options 房间参数(已校验)
func (s *Session) Options() models.RoomOptions {
	return s.opts
}

// Phase 当前阶段
func (s *Session) Phase() models.Phase {
	return s.state.Phase
}

// State 同步状态，只读
func (s *Session) State() *protocol.RoomState {
	return s.state
}

// Simulation 当前战斗模拟，不在战斗中时为 nil
func (s *Session) Simulation() *combat.Simulation {
	return s.sim
}

// ParticipantCount 当前人数
func (s *Session) ParticipantCount() int {
	return len(s.order)
}

// Join 参与者加入
func (s *Session) Join(participantID, displayName string) error {
	if _, exists := s.state.Players[participantID]; exists {
		return nil
	}
	if s.state.Phase == models.PhaseBattle {
		return ErrBattleInProgress
	}
	if len(s.order) >= balance.MaxParticipants {
		return ErrRoomFull
	}

	s.state.Players[participantID] = protocol.NewPlayerState(participantID, displayName)
	s.order = append(s.order, participantID)
	s.log.WithFields(logrus.Fields{
		"participant": participantID,
		"phase":       s.state.Phase,
	}).Info("参与者加入房间")

	s.transport.Send(participantID, protocol.KindWelcome, protocol.WelcomePayload{
		ParticipantID: participantID,
		RoomCode:      s.code,
		Options:       s.opts,
	})
	if s.state.Phase == models.PhaseAnalyzing {
		s.requestAnalysis(participantID)
	}
	s.sync()
	return nil
}

// Leave 参与者离开
func (s *Session) Leave(participantID string) {
	if _, exists := s.state.Players[participantID]; !exists {
		return
	}
	delete(s.state.Players, participantID)
	for i, id := range s.order {
		if id == participantID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.drawings, participantID)
	delete(s.configs, participantID)
	delete(s.gestures, participantID)
	for k := range s.gestureReadyAt {
		if k.participantID == participantID {
			delete(s.gestureReadyAt, k)
		}
	}

	s.log.WithFields(logrus.Fields{
		"participant": participantID,
		"phase":       s.state.Phase,
	}).Info("参与者离开房间")

	if len(s.order) == 0 {
		s.resetToLobby()
		return
	}

	switch s.state.Phase {
	case models.PhaseBattle:
		if len(s.order) == 1 {
			s.endMatch(s.order[0], models.ReasonDisconnect)
			return
		}
	case models.PhaseDrawing:
		if s.allSubmitted() {
			s.enterAnalyzing()
			return
		}
	case models.PhaseAnalyzing:
		if !s.preBattleStarted && s.allConfigured() {
			s.startPreBattle()
			return
		}
	}
	s.sync()
}

// Close 会话销毁，停止所有计时器
func (s *Session) Close() {
	s.cancelTimer()
}

// enterDrawing 大厅 -> 绘画
func (s *Session) enterDrawing() {
	s.cancelTimer()
	s.state.Phase = models.PhaseDrawing
	s.state.Timer = s.opts.DrawingTimeLimit
	s.state.Winner = ""
	s.drawings = make(map[string]*drawing)
	for _, ps := range s.state.Players {
		ps.Submitted = false
	}
	s.startTimer(TimerCountdown)
	s.log.WithField("phase", s.state.Phase).Info("进入绘画阶段")
	s.sync()
}

// enterAnalyzing 绘画 -> 分析，要求各参与者的客户端调用分析服务
func (s *Session) enterAnalyzing() {
	s.cancelTimer()
	s.state.Phase = models.PhaseAnalyzing
	s.state.Timer = balance.AnalyzingTimeout
	s.preBattleStarted = false
	s.configs = make(map[string]models.FighterConfig)
	s.startTimer(TimerCountdown)
	s.log.WithField("phase", s.state.Phase).Info("进入分析阶段")

	for _, id := range s.order {
		s.requestAnalysis(id)
	}
	s.sync()
}

// requestAnalysis 请求参与者上报角色配置，没有画作时图像为空
func (s *Session) requestAnalysis(participantID string) {
	req := protocol.AnalyzePayload{ParticipantID: participantID}
	if d, ok := s.drawings[participantID]; ok {
		req.Image = d.image
		req.EnergySpent = d.energySpent
	}
	s.transport.Send(participantID, protocol.KindAnalyze, req)
}

// startPreBattle 配置全部到齐，开战倒计时，之后不再重启
func (s *Session) startPreBattle() {
	s.preBattleStarted = true
	s.state.Timer = balance.PreBattleDelay
	s.startTimer(TimerCountdown)
	s.log.Debug("配置已全部到齐，开战倒计时")
	s.sync()
}

// enterReveal 角色展示阶段
// 目前没有任何转换进入该阶段，分析结束后直接开战
func (s *Session) enterReveal() {
	s.cancelTimer()
	s.state.Phase = models.PhaseReveal
	s.state.Timer = balance.RevealDuration
	s.startTimer(TimerCountdown)
	s.sync()
}

// startBattle 创建战斗模拟，双方分居两侧
func (s *Session) startBattle() {
	s.cancelTimer()
	s.state.Phase = models.PhaseBattle
	s.state.Timer = 0
	s.state.Winner = ""

	s.sim = combat.NewSimulation()
	for i, id := range s.order {
		cfg, ok := s.configs[id]
		if !ok {
			cfg = s.assignFallback(id)
		}
		x := balance.StartOffsetX
		if i%2 == 1 {
			x = balance.ArenaWidth - balance.StartOffsetX
		}
		s.sim.AddFighter(id, x, i%2 == 0,
			combat.LoadoutFrom(cfg, s.opts.BattleEnergyMax, s.opts.BattleEnergyRegen))
	}

	s.matchID = uuid.NewString()
	s.battleStartedAt = s.now()
	s.broadcastCounter = 0
	s.copyBattleState()
	s.startTimer(TimerBattle)

	s.log.WithFields(logrus.Fields{
		"phase": s.state.Phase,
		"match": s.matchID,
	}).Info("战斗开始")
	s.sync()
}

// battleTick 推进一帧，事件立即推送，状态按同步频率推送
func (s *Session) battleTick() {
	events := s.sim.Tick(1.0 / balance.TickRate)
	if len(events) > 0 {
		s.transport.Broadcast(protocol.KindEvents, protocol.EventsPayload{
			Tick:   s.sim.Ticks(),
			Events: events,
		})
	}

	s.broadcastCounter++
	if s.broadcastCounter >= balance.BroadcastEvery {
		s.broadcastCounter = 0
		s.copyBattleState()
		s.sync()
	}

	if winner, ok := s.sim.WinnerID(); ok {
		reason := models.ReasonKnockout
		if winner == models.DrawWinner {
			reason = models.ReasonDraw
		}
		s.endMatch(winner, reason)
	}
}

// endMatch 战斗 -> 结算
func (s *Session) endMatch(winnerID, reason string) {
	if s.state.Phase != models.PhaseBattle {
		return
	}
	s.cancelTimer()
	s.copyBattleState()
	s.state.Phase = models.PhaseResult
	s.state.Winner = winnerID
	s.state.Timer = balance.ResultDuration
	s.startTimer(TimerCountdown)

	result := s.buildResult(winnerID, reason)
	s.log.WithFields(logrus.Fields{
		"phase":  s.state.Phase,
		"match":  result.ID,
		"winner": winnerID,
		"reason": reason,
	}).Info("对局结束")

	s.transport.Broadcast(protocol.KindMatchOver, result)
	s.record(result)
	s.sync()
}

// resetToLobby 回到大厅，清空单局数据，重复调用结果相同
func (s *Session) resetToLobby() {
	s.cancelTimer()
	s.state.Phase = models.PhaseLobby
	s.state.Timer = 0
	s.state.Winner = ""
	s.clearMatch()
	for _, ps := range s.state.Players {
		ps.ResetMatch()
	}
	s.sync()
}

func (s *Session) clearMatch() {
	s.drawings = make(map[string]*drawing)
	s.configs = make(map[string]models.FighterConfig)
	s.gestures = make(map[string][]models.GestureMove)
	s.gestureReadyAt = make(map[gestureKey]time.Time)
	s.sim = nil
	s.preBattleStarted = false
	s.matchID = ""
	s.battleStartedAt = time.Time{}
	s.broadcastCounter = 0
	s.state.Projectiles = []protocol.ProjectileState{}
	s.state.Tick = 0
}

// onCountdownExpired 倒计时归零
func (s *Session) onCountdownExpired() {
	switch s.state.Phase {
	case models.PhaseDrawing:
		// 未提交的参与者按已有内容强制提交
		for _, ps := range s.state.Players {
			ps.Submitted = true
		}
		s.enterAnalyzing()
	case models.PhaseAnalyzing:
		s.startBattle()
	case models.PhaseReveal:
		s.startBattle()
	case models.PhaseResult:
		s.resetToLobby()
	default:
		s.cancelTimer()
	}
}

// assignFallback 为缺少配置的参与者分配兜底角色
func (s *Session) assignFallback(participantID string) models.FighterConfig {
	cfg := models.FallbackConfig()
	s.storeConfig(participantID, cfg)
	s.log.WithField("participant", participantID).Warn("分析超时，使用兜底角色")
	return cfg
}

func (s *Session) storeConfig(participantID string, cfg models.FighterConfig) {
	s.configs[participantID] = cfg
	s.gestures[participantID] = deriveGestureMoves(cfg.GestureMoves)
	if ps, ok := s.state.Players[participantID]; ok {
		protocol.ApplyFighterConfig(ps, cfg)
		ps.GestureMoves = s.gestures[participantID]
	}
}

func (s *Session) allReady() bool {
	if len(s.order) < balance.MaxParticipants {
		return false
	}
	for _, ps := range s.state.Players {
		if !ps.Ready {
			return false
		}
	}
	return true
}

func (s *Session) allSubmitted() bool {
	for _, ps := range s.state.Players {
		if !ps.Submitted {
			return false
		}
	}
	return true
}

func (s *Session) allConfigured() bool {
	for _, id := range s.order {
		if _, ok := s.configs[id]; !ok {
			return false
		}
	}
	return true
}

// opponentOf 另一名参与者
func (s *Session) opponentOf(participantID string) (string, bool) {
	for _, id := range s.order {
		if id != participantID {
			return id, true
		}
	}
	return "", false
}

// copyBattleState 把战斗模拟的连续字段写入同步状态
func (s *Session) copyBattleState() {
	if s.sim == nil {
		return
	}
	for _, f := range s.sim.Fighters() {
		if ps, ok := s.state.Players[f.ID]; ok {
			protocol.CopyFighter(ps, f)
		}
	}
	s.state.Projectiles = protocol.ConvertProjectiles(s.sim.Projectiles())
	s.state.Tick = s.sim.Ticks()
}

func (s *Session) buildResult(winnerID, reason string) models.MatchResult {
	result := models.MatchResult{
		ID:        s.matchID,
		RoomCode:  s.code,
		WinnerID:  winnerID,
		Reason:    reason,
		StartTime: s.battleStartedAt,
		EndTime:   s.now(),
	}
	if s.sim != nil {
		result.Ticks = s.sim.Ticks()
		for _, f := range s.sim.Fighters() {
			pr := models.ParticipantResult{
				ParticipantID: f.ID,
				FighterName:   f.Name,
				HP:            f.HP,
				MaxHP:         f.MaxHP,
				Winner:        f.ID == winnerID,
			}
			if ps, ok := s.state.Players[f.ID]; ok {
				pr.DisplayName = ps.DisplayName
			}
			result.Participants = append(result.Participants, pr)
		}
	}
	return result
}

// record 异步写入对局结果，失败只记录日志
func (s *Session) record(result models.MatchResult) {
	if s.recorder == nil {
		return
	}
	rec := s.recorder
	log := s.log.WithField("match", result.ID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := rec.Record(ctx, result); err != nil {
			log.WithError(err).Warn("记录对局结果失败")
		}
	}()
}

func (s *Session) sync() {
	s.transport.SyncState(s.state)
}
