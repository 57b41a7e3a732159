package objectcache

import (
	"github.com/sirupsen/logrus"
)

// Config 可以从 yaml / 命令行加载的缓存配置，字段标签供 viper 解码使用
type Config struct {
	Name           string `mapstructure:"name"`
	Capacity       int64  `mapstructure:"capacity"`
	Eviction       string `mapstructure:"eviction"`
	Synchronized   bool   `mapstructure:"synchronized"`
	MaxKeyAttempts int    `mapstructure:"max-key-attempts"`
	LogLevel       string `mapstructure:"log-level"`
}

// DefaultConfig 与 DefaultOptions 保持一致
func DefaultConfig() Config {
	o := DefaultOptions()
	return Config{
		Name:           o.Name,
		Capacity:       o.Capacity,
		Eviction:       o.Eviction,
		MaxKeyAttempts: o.MaxKeyAttempts,
		LogLevel:       logrus.InfoLevel.String(),
	}
}

// Options 把配置转换为函数选项，零值字段使用默认值
func (c Config) Options() ([]Option, error) {
	logger := logrus.New()
	if c.LogLevel != "" {
		level, err := logrus.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, invalidOptions(err, "invalid log level")
		}
		logger.SetLevel(level)
	}

	opts := []Option{WithLogger(logger)}
	if c.Name != "" {
		opts = append(opts, WithName(c.Name))
	}
	if c.Capacity != 0 {
		opts = append(opts, WithCapacity(c.Capacity))
	}
	if c.Eviction != "" {
		opts = append(opts, WithEviction(c.Eviction))
	}
	if c.MaxKeyAttempts != 0 {
		opts = append(opts, WithMaxKeyAttempts(c.MaxKeyAttempts))
	}
	if c.Synchronized {
		opts = append(opts, WithSynchronization())
	}
	return opts, nil
}
