// timer.go

package game

import (
	"time"

	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
)

// TimerKind 计时器类型
type TimerKind int

const (
	// TimerNone 无计时器
	TimerNone TimerKind = iota
	// TimerCountdown 阶段倒计时，每秒触发一次
	TimerCountdown
	// TimerBattle 战斗帧驱动
	TimerBattle
)

func (k TimerKind) String() string {
	switch k {
	case TimerCountdown:
		return "countdown"
	case TimerBattle:
		return "battle"
	}
	return "none"
}

// PhaseTimer 会话唯一的活动计时器
// Gen 每次启动或取消时递增，触发时携带的 Gen 不一致则忽略
type PhaseTimer struct {
	Kind     TimerKind
	Interval time.Duration
	Gen      uint64
}

// Active 是否有计时器在运行
func (t PhaseTimer) Active() bool {
	return t.Kind != TimerNone
}

// BattleTickInterval 战斗帧间隔
const BattleTickInterval = time.Second / balance.TickRate

// startTimer 取消当前计时器并启动新的
func (s *Session) startTimer(kind TimerKind) {
	s.cancelTimer()
	s.timerGen++
	s.timer = PhaseTimer{Kind: kind, Gen: s.timerGen}
	switch kind {
	case TimerCountdown:
		s.timer.Interval = time.Second
	case TimerBattle:
		s.timer.Interval = BattleTickInterval
	}
}

// cancelTimer 取消当前计时器，没有运行中的计时器时不做任何事
func (s *Session) cancelTimer() {
	if !s.timer.Active() {
		return
	}
	s.timerGen++
	s.timer = PhaseTimer{Gen: s.timerGen}
}

// ActiveTimer 当前计时器
func (s *Session) ActiveTimer() PhaseTimer {
	return s.timer
}

// Fire 计时器触发，gen 过期时忽略
func (s *Session) Fire(gen uint64) {
	if !s.timer.Active() || gen != s.timer.Gen {
		return
	}
	switch s.timer.Kind {
	case TimerCountdown:
		s.countdown()
	case TimerBattle:
		s.battleTick()
	}
}

// countdown 倒计时减一秒，归零时按当前阶段推进
func (s *Session) countdown() {
	s.state.Timer--
	if s.state.Timer > 0 {
		s.sync()
		return
	}
	s.state.Timer = 0
	s.onCountdownExpired()
}
