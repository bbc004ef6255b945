package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Debate   DebateConfig
	Presence PresenceConfig
}

type ServerConfig struct {
	Address string
}

type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// DebateConfig 定義辯論各階段的時間長度
type DebateConfig struct {
	SelectionWindow time.Duration `mapstructure:"selection_window"` // 選邊階段時長
	DebateWindow    time.Duration `mapstructure:"debate_window"`    // 辯論階段時長
}

// PresenceConfig 定義連線狀態相關設置
type PresenceConfig struct {
	GracePeriod time.Duration `mapstructure:"grace_period"` // 斷線後保留用戶的寬限時間
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	// 預設值，配置文件不存在時直接使用
	viper.SetDefault("server.address", ":4000")
	viper.SetDefault("storage.data_dir", "./data")
	viper.SetDefault("debate.selection_window", 10*time.Second)
	viper.SetDefault("debate.debate_window", 5*time.Minute)
	viper.SetDefault("presence.grace_period", 2*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
