package cathy

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 为环境变量前缀，如 CATHY_ADDRESS、CATHY_IDLE_READER
const EnvPrefix = "CATHY"

// 命令行参数名 -> 配置键
var flagKeys = map[string]string{
	"address":    "address",
	"log-level":  "log_level",
	"reuse-port": "reuse_port",
}

// LoadConfig 依次叠加：默认值 < 配置文件(path，可为空) < 环境变量 < 命令行参数
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("address", def.Address)
	v.SetDefault("reuse_port", def.ReusePort)
	v.SetDefault("no_delay", def.NoDelay)
	v.SetDefault("write_timeout", def.WriteTimeout)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("timer.tick", def.Timer.Tick)
	v.SetDefault("timer.slots", def.Timer.Slots)
	v.SetDefault("idle.reader", def.Idle.Reader)
	v.SetDefault("idle.writer", def.Idle.Writer)
	v.SetDefault("rate_limit.enabled", def.RateLimit.Enabled)
	v.SetDefault("rate_limit.messages_per_second", float64(def.RateLimit.MessagesPerSecond))
	v.SetDefault("rate_limit.burst", def.RateLimit.Burst)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}
