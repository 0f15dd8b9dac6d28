// commands.go

package game

import (
	"encoding/json"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
	"github.com/jacl-coder/InkBrawl-Server/internal/protocol"
)

// commandFunc 解析载荷并执行指令
type commandFunc func(s *Session, sender, name string, raw json.RawMessage) error

// command 指令表条目，phases 为空表示任意阶段
type command struct {
	phases []models.Phase
	run    commandFunc
}

// handle 把带类型载荷的处理函数包装为指令
func handle[T any, PT interface {
	*T
	protocol.Validator
}](fn func(s *Session, sender, name string, p PT)) commandFunc {
	return func(s *Session, sender, name string, raw json.RawMessage) error {
		p := PT(new(T))
		if err := protocol.Decode(raw, p); err != nil {
			return err
		}
		fn(s, sender, name, p)
		return nil
	}
}

var commands = map[string]command{
	protocol.CmdReady: {
		phases: []models.Phase{models.PhaseLobby},
		run:    handle((*Session).onReady),
	},
	protocol.CmdSubmitDrawing: {
		run: handle((*Session).onSubmitDrawing),
	},
	protocol.CmdSubmitFighter: {
		phases: []models.Phase{models.PhaseAnalyzing},
		run:    handle((*Session).onSubmitFighter),
	},
	protocol.CmdMove: {
		phases: []models.Phase{models.PhaseBattle},
		run:    handle((*Session).onMove),
	},
	protocol.CmdAbility: {
		phases: []models.Phase{models.PhaseBattle},
		run:    handle((*Session).onAbility),
	},
	protocol.CmdGestureAttack: {
		phases: []models.Phase{models.PhaseBattle},
		run:    handle((*Session).onGestureAttack),
	},
	protocol.CmdPlayAgain: {
		run: handle((*Session).onPlayAgain),
	},
	protocol.CmdDrawStroke: {
		phases: []models.Phase{models.PhaseDrawing},
		run:    handle((*Session).onDrawRelay),
	},
	protocol.CmdDrawUndo: {
		phases: []models.Phase{models.PhaseDrawing},
		run:    handle((*Session).onDrawRelay),
	},
	protocol.CmdDrawClear: {
		phases: []models.Phase{models.PhaseDrawing},
		run:    handle((*Session).onDrawRelay),
	},
}

// HandleCommand 分发参与者指令
// 阶段不符、对象不存在、资源不足、载荷错误都直接丢弃
func (s *Session) HandleCommand(sender, name string, raw json.RawMessage) {
	log := s.log.WithFields(logrus.Fields{
		"participant": sender,
		"command":     name,
		"phase":       s.state.Phase,
	})
	if _, ok := s.state.Players[sender]; !ok {
		log.Debug("未知参与者的指令")
		return
	}
	cmd, ok := commands[name]
	if !ok {
		log.Debug("未知指令")
		return
	}
	if !phaseAllowed(cmd.phases, s.state.Phase) {
		log.Debug("当前阶段不接受该指令")
		return
	}
	if err := cmd.run(s, sender, name, raw); err != nil {
		log.WithError(err).Debug("指令载荷无效")
	}
}

func phaseAllowed(phases []models.Phase, p models.Phase) bool {
	if len(phases) == 0 {
		return true
	}
	for _, allowed := range phases {
		if allowed == p {
			return true
		}
	}
	return false
}

func (s *Session) onReady(sender, _ string, _ *protocol.EmptyPayload) {
	s.state.Players[sender].Ready = true
	if s.allReady() {
		s.enterDrawing()
		return
	}
	s.sync()
}

// onSubmitDrawing 绘画阶段提交画作，其余阶段只接受精灵图更新
func (s *Session) onSubmitDrawing(sender, _ string, p *protocol.SubmitDrawingPayload) {
	ps := s.state.Players[sender]

	if s.state.Phase != models.PhaseDrawing {
		if p.Sprite != "" {
			s.broadcastSprite(sender, p.Sprite)
		}
		return
	}

	d, ok := s.drawings[sender]
	if !ok {
		d = &drawing{}
		s.drawings[sender] = d
	}
	if p.Image != "" {
		d.image = p.Image
		d.energySpent = math.Min(p.EnergySpent, s.opts.EnergyBudget)
	}
	if p.Sprite != "" {
		d.sprite = p.Sprite
		s.broadcastSprite(sender, p.Sprite)
	}
	ps.Submitted = true

	if s.allSubmitted() {
		s.enterAnalyzing()
		return
	}
	s.sync()
}

func (s *Session) broadcastSprite(sender, sprite string) {
	s.transport.Broadcast(protocol.KindSprite, protocol.SpritePayload{
		ParticipantID: sender,
		Sprite:        sprite,
	})
}

// onSubmitFighter 保存分析结果，全部到齐后开始开战倒计时
func (s *Session) onSubmitFighter(sender, _ string, p *protocol.SubmitFighterPayload) {
	s.storeConfig(sender, p.Config.Sanitize())
	if !s.preBattleStarted && s.allConfigured() {
		s.startPreBattle()
		return
	}
	s.sync()
}

func (s *Session) onMove(sender, _ string, p *protocol.MovePayload) {
	s.sim.HandleMove(sender, *p.X, *p.Y)
}

func (s *Session) onAbility(sender, _ string, p *protocol.AbilityPayload) {
	s.sim.HandleAbility(sender, p.AbilityType, p.Target)
}

// onGestureAttack 手势招式，冷却独立于技能冷却
func (s *Session) onGestureAttack(sender, _ string, p *protocol.GestureAttackPayload) {
	move, ok := findGestureMove(s.gestures[sender], p.MoveID)
	if !ok {
		return
	}
	key := gestureKey{participantID: sender, moveID: move.ID}
	now := s.now()
	if readyAt, cooling := s.gestureReadyAt[key]; cooling && now.Before(readyAt) {
		return
	}
	target, ok := s.opponentOf(sender)
	if !ok {
		return
	}
	if !s.sim.ApplyDirectDamage(sender, target, move.Power) {
		return
	}
	s.gestureReadyAt[key] = now.Add(gestureCooldown)

	s.transport.Broadcast(protocol.KindGesture, protocol.GestureEventPayload{
		AttackerID: sender,
		TargetID:   target,
		Gesture:    move.Gesture,
		Action:     move.Action,
		Power:      move.Power,
	})
}

func (s *Session) onPlayAgain(_, _ string, _ *protocol.EmptyPayload) {
	s.resetToLobby()
}

// onDrawRelay 绘画过程原样转发给对手
func (s *Session) onDrawRelay(sender, name string, p *protocol.RelayData) {
	for _, id := range s.order {
		if id == sender {
			continue
		}
		s.transport.Send(id, name, protocol.RelayPayload{From: sender, Data: p.Data})
	}
}
