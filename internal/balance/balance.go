// balance.go

// Package balance 战斗与对局的平衡参数，纯数据，不包含逻辑
package balance

// 竞技场几何
const (
	// ArenaWidth 竞技场宽度(像素)
	ArenaWidth = 960.0
	// ArenaHeight 竞技场高度(像素)
	ArenaHeight = 540.0
	// GroundY 地面高度，y 轴向下
	GroundY = 460.0
	// CeilingY 天花板高度
	CeilingY = 20.0

	// PlayerWidth 角色碰撞宽度
	PlayerWidth = 60.0
	// PlayerHalfWidth 角色半宽
	PlayerHalfWidth = PlayerWidth / 2
	// PlayerHeight 角色高度
	PlayerHeight = 80.0

	// StartOffsetX 开局时角色距离竞技场边缘的距离
	StartOffsetX = 150.0
)

// 物理参数
const (
	// Gravity 重力加速度(像素/秒²)
	Gravity = 1200.0
	// FlyGravityFactor 飞行角色上升或悬停时的重力系数
	FlyGravityFactor = 0.3
	// Friction 每帧水平速度衰减系数
	Friction = 0.85
	// JumpVelocity 起跳速度，负值向上
	JumpVelocity = -480.0
	// JumpThreshold 目标点高于角色多少像素时触发跳跃
	JumpThreshold = 20.0
	// MoveGain 移动指令水平速度增益
	MoveGain = 5.0
	// SpeedToVelocity 移动速度属性到像素/秒的换算
	SpeedToVelocity = 60.0
	// AutoFaceSpeed 低于该水平速度时自动朝向对手
	AutoFaceSpeed = 10.0
)

// 技能参数换算
const (
	// ProjectileSpeedScale 远程攻击 speed 参数换算系数
	ProjectileSpeedScale = 100.0
	// ProjectileSpawnOffset 投射物生成时在朝向上的偏移
	ProjectileSpawnOffset = 30.0
	// ProjectileRadius 投射物碰撞半径
	ProjectileRadius = 8.0
	// ProjectileLifetime 投射物生命周期(秒)
	ProjectileLifetime = 3.0
	// ProjectileBoundsMargin 投射物飞出竞技场多远后销毁
	ProjectileBoundsMargin = 50.0

	// DashScale 冲刺 distance 参数换算系数
	DashScale = 5.0
	// FlyScale 飞行 speed 参数换算系数
	FlyScale = 80.0

	// CooldownEpsilon 冷却剩余时间低于该值视为就绪
	CooldownEpsilon = 1e-9
)

// 帧率
const (
	// TickRate 模拟帧率
	TickRate = 60
	// BroadcastRate 状态同步频率
	BroadcastRate = 20
	// BroadcastEvery 每隔多少帧同步一次状态
	BroadcastEvery = TickRate / BroadcastRate
)

// 阶段时长(秒)
const (
	// DrawingTimeLimit 默认绘画时间
	DrawingTimeLimit = 60.0
	// AnalyzingTimeout 分析阶段超时，需覆盖外部服务冷启动
	AnalyzingTimeout = 90.0
	// PreBattleDelay 配置全部到齐后的开战倒计时
	PreBattleDelay = 8.0
	// RevealDuration 角色展示阶段时长
	RevealDuration = 5.0
	// ResultDuration 结算阶段时长
	ResultDuration = 15.0
)

// 资源
const (
	// MaxParticipants 每个房间的参与者上限
	MaxParticipants = 2

	// DefaultEnergyBudget 绘画阶段墨水预算
	DefaultEnergyBudget = 100.0
	// DefaultBattleEnergyMax 战斗墨水上限
	DefaultBattleEnergyMax = 100.0
	// DefaultBattleEnergyRegen 战斗墨水每秒恢复
	DefaultBattleEnergyRegen = 8.0

	// MoveCost 每条移动指令消耗的墨水
	MoveCost = 0.5
	// DefaultAbilityCost 未在表中列出的技能消耗
	DefaultAbilityCost = 10.0
)

// abilityCosts 技能墨水消耗表，按技能类型
var abilityCosts = map[string]float64{
	"ranged_attack": 10,
	"melee":         8,
	"shield":        15,
	"dash":          12,
	"fly":           10,
}

// AbilityCost 获取技能消耗，未知类型返回默认值
func AbilityCost(abilityType string) float64 {
	if cost, ok := abilityCosts[abilityType]; ok {
		return cost
	}
	return DefaultAbilityCost
}

// 手势招式
const (
	// GestureCooldown 每个招式的独立冷却(秒)
	GestureCooldown = 3.0
	// GestureMaxMoves 每位玩家最多的手势招式数量
	GestureMaxMoves = 3
	// GestureMinValid 少于该数量的有效招式时使用默认招式
	GestureMinValid = 2
	// GesturePowerMin 招式威力下限
	GesturePowerMin = 5.0
	// GesturePowerMax 招式威力上限
	GesturePowerMax = 25.0
)

// 外部配置的裁剪范围
const (
	MinMaxHP        = 50.0
	MaxMaxHP        = 200.0
	MinSpeed        = 1.0
	MaxSpeed        = 6.0
	MaxAbilities    = 4
	MinCooldown     = 0.2
	MaxCooldown     = 10.0
	DefaultCooldown = 1.0
)

// 兜底角色配置
const (
	FallbackName        = "Ink Blob"
	FallbackDescription = "A hastily scribbled brawler that showed up when the analysis did not."
	FallbackMaxHP       = 100.0
	FallbackSpeed       = 3.0
)

// ParamRange 技能数值参数的取值范围与缺省值
type ParamRange struct {
	Min     float64
	Max     float64
	Default float64
}

// abilityParamRanges 按技能类型和参数名索引，cooldown 对所有类型通用
var abilityParamRanges = map[string]map[string]ParamRange{
	"ranged_attack": {
		"damage": {Min: 1, Max: 40, Default: 8},
		"speed":  {Min: 1, Max: 10, Default: 5},
	},
	"melee": {
		"damage": {Min: 1, Max: 50, Default: 10},
		"range":  {Min: 10, Max: 150, Default: 40},
	},
	"shield": {
		"block":    {Min: 1, Max: 100, Default: 20},
		"duration": {Min: 0.5, Max: 5, Default: 2},
	},
	"dash": {
		"distance": {Min: 20, Max: 300, Default: 100},
	},
	"fly": {
		"speed": {Min: 1, Max: 10, Default: 5},
	},
}

var cooldownRange = ParamRange{Min: MinCooldown, Max: MaxCooldown, Default: DefaultCooldown}

// AbilityParamRange 获取技能参数范围，未登记的参数返回 false
func AbilityParamRange(abilityType, key string) (ParamRange, bool) {
	if key == "cooldown" {
		return cooldownRange, true
	}
	r, ok := abilityParamRanges[abilityType][key]
	return r, ok
}

// AbilityParamKeys 技能类型的全部数值参数名，包含 cooldown
func AbilityParamKeys(abilityType string) []string {
	keys := []string{"cooldown"}
	for k := range abilityParamRanges[abilityType] {
		keys = append(keys, k)
	}
	return keys
}
