// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Debug           bool          `mapstructure:"debug"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	MaxRoomCount    int           `mapstructure:"max_room_count"`
	RoomIdleTimeout time.Duration `mapstructure:"room_idle_timeout"`
}

// GameConfig 房间参数默认值，创建房间时未指定的字段使用这里的值
type GameConfig struct {
	EnergyBudget      float64 `mapstructure:"energy_budget"`
	DrawingTimeLimit  float64 `mapstructure:"drawing_time_limit"`
	BattleEnergyMax   float64 `mapstructure:"battle_energy_max"`
	BattleEnergyRegen float64 `mapstructure:"battle_energy_regen"`
}

// AuthConfig 游客令牌配置
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	// 连接池，对局记录只在结算时写入，连接数不需要很多
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	RecentResults int    `mapstructure:"recent_results"`

	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "text")
	v.SetDefault("server.max_room_count", 500)
	v.SetDefault("server.room_idle_timeout", 5*time.Minute)

	v.SetDefault("game.energy_budget", 100.0)
	v.SetDefault("game.drawing_time_limit", 60.0)
	v.SetDefault("game.battle_energy_max", 100.0)
	v.SetDefault("game.battle_energy_regen", 8.0)

	v.SetDefault("auth.secret", "inkbrawl-dev-secret")
	v.SetDefault("auth.issuer", "inkbrawl")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "inkbrawl")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 8)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.recent_results", 50)
	v.SetDefault("redis.pool_size", 4)
	v.SetDefault("redis.dial_timeout", 2*time.Second)
	v.SetDefault("redis.read_timeout", time.Second)
	v.SetDefault("redis.write_timeout", time.Second)
}

// LoadConfig 从文件加载配置
// 文件不存在时只使用默认值和环境变量(前缀 INKBRAWL_，如 INKBRAWL_SERVER_PORT)
func LoadConfig(configPath string) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// Load 加载配置但不修改 GlobalConfig
func Load(configPath string) (Config, error) {
	// .env 可选
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("无法读取.env文件: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("INKBRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法解析配置文件: %w", err)
	}
	return cfg, nil
}

// RoomDefaults 房间参数默认值，配置中的 0 保留，非法值使用平衡默认值
func (c *GameConfig) RoomDefaults() models.RoomOptions {
	return models.RoomOptions{
		EnergyBudget:      c.EnergyBudget,
		DrawingTimeLimit:  c.DrawingTimeLimit,
		BattleEnergyMax:   c.BattleEnergyMax,
		BattleEnergyRegen: c.BattleEnergyRegen,
	}.Validated()
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
