package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 描述批量查询所需的全部配置项。
// 时间类配置以秒为单位写在配置文件里，通过方法转换为 Duration。
type Config struct {
	TLD    string `yaml:"tld"`
	Server string `yaml:"server"`
	Port   int    `yaml:"port"`
	// Mode 选择 WHOIS 查询通道：auto、socket 或 netcat。
	Mode string `yaml:"mode"`

	TimeoutSec    float64 `yaml:"timeout"`
	SleepSec      float64 `yaml:"sleep"`
	MaxSleepSec   float64 `yaml:"maxSleep"`
	BackoffFactor float64 `yaml:"backoffFactor"`
	// ThrottleRetries 是单个词被限流时允许的总查询次数。
	ThrottleRetries int `yaml:"throttleRetries"`
	// ThrottleResetAfter 指连续多少个未限流的词之后退避间隔回落到基准。
	ThrottleResetAfter int     `yaml:"throttleResetAfter"`
	Retries            int     `yaml:"retries"`
	RetrySleepSec      float64 `yaml:"retrySleep"`

	Resume     bool   `yaml:"resume"`
	Checkpoint string `yaml:"checkpoint"`
	Output     string `yaml:"output"`
	Debug      bool   `yaml:"debug"`

	// RDAPFallback 打开后，会对最终为 error 且原因歧义的记录做 RDAP 二次核对。
	RDAPFallback bool `yaml:"rdapFallback"`

	Telegram Telegram `yaml:"telegram"`
}

type Telegram struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatID"`
}

// Default 返回与命令行默认值一致的配置。
func Default() Config {
	return Config{
		TLD:                "ai",
		Server:             "whois.nic.ai",
		Port:               43,
		Mode:               "auto",
		TimeoutSec:         10,
		SleepSec:           0.5,
		MaxSleepSec:        10,
		BackoffFactor:      2,
		ThrottleRetries:    3,
		ThrottleResetAfter: 1,
		Retries:            2,
		RetrySleepSec:      1,
		Checkpoint:         ".whois_checkpoint",
	}
}

// Load 读取 yaml 配置文件并叠加在默认值之上。
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// ServerAddr 返回 host:port 形式的 WHOIS 服务地址。
func (c Config) ServerAddr() string {
	return net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
}

func (c Config) Timeout() time.Duration    { return seconds(c.TimeoutSec) }
func (c Config) Sleep() time.Duration      { return seconds(c.SleepSec) }
func (c Config) MaxSleep() time.Duration   { return seconds(c.MaxSleepSec) }
func (c Config) RetrySleep() time.Duration { return seconds(c.RetrySleepSec) }

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
