package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Bot    BotConfig    `mapstructure:"bot"`
	Cron   CronConfig   `mapstructure:"cron"`
	Wiguna WigunaConfig `mapstructure:"wiguna"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type BotConfig struct {
	Token string `mapstructure:"token"`
	// GroupChatID is the broadcast destination for the scheduled recap.
	GroupChatID int64 `mapstructure:"group_chat_id"`
	// Admins are Telegram usernames (no @) allowed to bypass ownership
	// checks; compared case-insensitively.
	Admins []string `mapstructure:"admins"`
	// DeleteCommands makes the bot best-effort delete command messages to
	// reduce chat clutter.
	DeleteCommands bool `mapstructure:"delete_commands"`
	// Timezone fixes the calendar used for trade dates and the recap
	// schedule.
	Timezone string `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// DailyRecap is a six-field cron spec evaluated in the bot timezone.
	DailyRecap string `mapstructure:"daily_recap"`
}

type WigunaConfig struct {
	SignalURL string        `mapstructure:"signal_url"`
	AuthURL   string        `mapstructure:"auth_url"`
	Email     string        `mapstructure:"email"`
	Password  string        `mapstructure:"password"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("bot.delete_commands", true)
	v.SetDefault("bot.timezone", "Asia/Jakarta")
	v.SetDefault("cron.enabled", true)
	// 18:00 local, business days only.
	v.SetDefault("cron.daily_recap", "0 0 18 * * 1-5")
	v.SetDefault("wiguna.signal_url", "https://api.wigunainvestment.com/recommendation/stockpick")
	v.SetDefault("wiguna.auth_url", "https://api.wigunainvestment.com/auth/token")
	v.SetDefault("wiguna.timeout", "10s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
