package cathy

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultAddress 为 server 监听与 client 连接的默认地址
const DefaultAddress = "127.0.0.1:8099"

// Config 为 server/client 共用配置
type Config struct {
	Address      string        `mapstructure:"address"`       // 监听/连接地址
	ReusePort    bool          `mapstructure:"reuse_port"`    // 监听 SO_REUSEPORT
	NoDelay      bool          `mapstructure:"no_delay"`      // 连接 TCP_NODELAY
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 单包写超时
	LogLevel     string        `mapstructure:"log_level"`

	Timer     TimerConfig     `mapstructure:"timer"`
	Idle      IdleConfig      `mapstructure:"idle"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// TimerConfig 时间轮参数，跨度为 Tick*Slots
type TimerConfig struct {
	Tick  time.Duration `mapstructure:"tick"`
	Slots int           `mapstructure:"slots"`
}

// IdleConfig 链路空闲检测周期
type IdleConfig struct {
	Reader time.Duration `mapstructure:"reader"` // server 侧读空闲，超时断开
	Writer time.Duration `mapstructure:"writer"` // client 侧写空闲，超时发心跳
}

// RateLimitConfig 每会话入站消息限速，超限断开；默认关闭
type RateLimitConfig struct {
	Enabled           bool       `mapstructure:"enabled"`
	MessagesPerSecond rate.Limit `mapstructure:"messages_per_second"`
	Burst             int        `mapstructure:"burst"`
}

// DefaultConfig 提供一组可工作的默认值
func DefaultConfig() Config {
	return Config{
		Address:      DefaultAddress,
		ReusePort:    false,
		NoDelay:      true,
		WriteTimeout: 10 * time.Second,
		LogLevel:     "info",
		Timer: TimerConfig{
			Tick:  100 * time.Millisecond,
			Slots: 12,
		},
		Idle: IdleConfig{
			Reader: 60 * time.Second,
			Writer: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			MessagesPerSecond: 100,
			Burst:             200,
		},
	}
}

// Validate 检查配置是否可用
func (c Config) Validate() error {
	switch {
	case c.Address == "":
		return fmt.Errorf("%w: empty address", ErrInvalidArgument)
	case c.WriteTimeout <= 0:
		return fmt.Errorf("%w: write_timeout %v", ErrInvalidArgument, c.WriteTimeout)
	case c.Timer.Tick <= 0 || c.Timer.Slots <= 0:
		return fmt.Errorf("%w: timer tick=%v slots=%d", ErrInvalidArgument, c.Timer.Tick, c.Timer.Slots)
	case c.Idle.Reader <= 0 || c.Idle.Writer <= 0:
		return fmt.Errorf("%w: idle reader=%v writer=%v", ErrInvalidArgument, c.Idle.Reader, c.Idle.Writer)
	case c.RateLimit.Enabled && (c.RateLimit.MessagesPerSecond <= 0 || c.RateLimit.Burst <= 0):
		return fmt.Errorf("%w: rate_limit %v/%d", ErrInvalidArgument, c.RateLimit.MessagesPerSecond, c.RateLimit.Burst)
	}
	return nil
}

// NewLimiter 按配置创建限速器，未启用时返回 nil
func (c RateLimitConfig) NewLimiter() *rate.Limiter {
	if !c.Enabled {
		return nil
	}
	return rate.NewLimiter(c.MessagesPerSecond, c.Burst)
}
