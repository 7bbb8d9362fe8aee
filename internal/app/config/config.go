package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Commerce    CommerceConfig    `mapstructure:"commerce"`
	Fulfillment FulfillmentConfig `mapstructure:"fulfillment"`
	Sync        SyncConfig        `mapstructure:"sync"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置（可选，次级映射存储）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CommerceConfig 商城平台接入配置
type CommerceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// FulfillmentConfig 履约平台接入配置
type FulfillmentConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SyncConfig 对账与巡检配置
type SyncConfig struct {
	Enabled         bool          `mapstructure:"enabled"`          // 巡检开关
	Interval        time.Duration `mapstructure:"interval"`         // 巡检间隔
	LookbackDays    int           `mapstructure:"lookback_days"`    // processing 订单回看窗口（天）
	MaxOrders       int           `mapstructure:"max_orders"`       // 单次巡检候选上限
	AttentionStatus string        `mapstructure:"attention_status"` // 第一轮候选状态
	WebhookSecret   string        `mapstructure:"webhook_secret"`   // Webhook 共享密钥
}

// Load 从配置文件加载配置，环境变量可覆盖（前缀 FULFILLSYNC_）
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("fulfillsync")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadDefault 加载默认配置文件路径
func LoadDefault() (*Config, error) {
	return Load("config/config.yaml")
}

// applyDefaults 填充默认值
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Sync.Interval <= 0 {
		c.Sync.Interval = 15 * time.Minute
	}
	if c.Sync.LookbackDays <= 0 {
		c.Sync.LookbackDays = 14
	}
	if c.Sync.MaxOrders <= 0 {
		c.Sync.MaxOrders = 200
	}
	if c.Sync.AttentionStatus == "" {
		c.Sync.AttentionStatus = "shipping-attention"
	}
}

// Validate 验证配置完整性
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Commerce.BaseURL == "" {
		return fmt.Errorf("commerce.base_url is required")
	}
	if c.Commerce.ConsumerKey == "" || c.Commerce.ConsumerSecret == "" {
		return fmt.Errorf("commerce.consumer_key and commerce.consumer_secret are required")
	}
	if c.Sync.WebhookSecret == "" {
		return fmt.Errorf("sync.webhook_secret is required")
	}
	return nil
}

// SweepEnabled 巡检是否可用
// 显式关闭、或履约/商城任一侧未配置时整体禁用
func (c *Config) SweepEnabled() bool {
	if !c.Sync.Enabled {
		return false
	}
	if c.Fulfillment.BaseURL == "" || c.Fulfillment.APIKey == "" {
		return false
	}
	return c.Commerce.BaseURL != ""
}
