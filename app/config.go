// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package app defines global configuration models and config loading helpers.
package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	envKey  = "RUN_ENV"
	nameKey = "APP_NAME"
)

// config stores the singleton configuration loaded by LoadConfig.
var config *Config

type (
	// Config is the root configuration model loaded from bin/configs/*.json.
	Config struct {
		System    SysConfig   `json:"system"`    // Application runtime settings.
		Log       LogConfig   `json:"log"`       // Logger output settings.
		Databases []Databases `json:"databases"` // Database connection settings (audit sample handler).
		Redis     []Redis     `json:"redis"`     // Redis client settings.
		Timer     TimerConfig `json:"timer"`     // Timer engine settings.
		Monitor   Monitor     `json:"monitor"`   // Panic alert monitor settings.
		Feishu    Feishu      `json:"feishu"`    // Feishu integration settings.
	}

	// LogConfig controls logger driver and severity level.
	LogConfig struct {
		Driver  string `json:"driver"` // Logger driver, such as "stdout" or "file".
		Level   string `json:"level"`  // Log level: debug, info, warn, error, fatal.
		LogPath string `json:"path"`   // Log file path when driver is "file".
	}

	// SysConfig stores basic runtime properties for the service.
	SysConfig struct {
		Name         string        `json:"name"`           // Service name.
		RunMode      string        `json:"run_mode"`       // Gin run mode.
		HTTPPort     string        `json:"http_port"`      // HTTP listen address.
		ReadTimeout  time.Duration `json:"read_timeout"`   // Maximum request read timeout in seconds.
		WriteTimeout time.Duration `json:"write_timeout"`  // Maximum response write timeout in seconds.
		Version      string        `json:"version"`        // Service version.
		RootPath     string        `json:"root_path"`      // Runtime root path.
		DebugMode    bool          `json:"debug_mode"`     // Debug mode toggle.
		LangDir      string        `json:"lang_dir"`       // i18n language files directory.
		DefaultLang  string        `json:"default_lang"`   // Default language key.
		EnvKey       string        `json:"env_key"`        // Environment variable key that stores run env.
		AdminAPIKey  string        `json:"admin_api_key"`  // Shared secret required on the X-API-Key header for admin endpoints.
		Env          string        `json:"env"`            // Resolved runtime environment.
	}

	// Databases stores one database connection profile.
	Databases struct {
		Enable                 bool          `json:"enable"`                              // Whether this DB profile is enabled.
		DbType                 string        `json:"db_type"`                             // Database type, such as mysql.
		DbHost                 string        `json:"db_host"`                             // Database host.
		DbName                 string        `json:"db_name"`                             // Database name.
		DbUsername             string        `json:"db_username,omitempty"`               // Database username.
		DbPassword             string        `json:"db_password,omitempty"`               // Database password.
		DbMaxIdleConn          int           `json:"db_max_idle_conn,omitempty"`          // Maximum idle connections.
		DbMaxOpenConn          int           `json:"db_max_open_conn,omitempty"`          // Maximum open connections.
		DbMaxLifetime          time.Duration `json:"db_max_lifetime,omitempty"`           // Connection max lifetime in hours.
		DbConnectRetryCount    int           `json:"db_connect_retry_count,omitempty"`    // Retry count when DB initialization fails.
		DbConnectRetryInterval int           `json:"db_connect_retry_interval,omitempty"` // Retry interval in seconds.
	}

	// Redis stores one Redis connection profile.
	Redis struct {
		Name        string        `json:"name"`         // Redis connection alias.
		Enable      bool          `json:"enable"`       // Whether this Redis profile is enabled.
		Host        string        `json:"host"`         // Redis host.
		Auth        string        `json:"auth"`         // Redis password or auth token.
		MaxIdle     int           `json:"max_idle"`     // Maximum idle connections.
		MaxActive   int           `json:"max_active"`   // Maximum active connections.
		IdleTimeout time.Duration `json:"idle_timeout"` // Idle timeout in minutes.
		Prefix      string        `json:"prefix"`       // Redis key prefix.
		DB          int           `json:"db"`
	}

	// TimerConfig controls the timer engine's own settings (spec.md §6).
	// Durations below are configured in integral seconds/milliseconds and
	// converted with time.Second/time.Millisecond, the same convention the
	// teacher uses for idle_timeout/db_max_lifetime.
	TimerConfig struct {
		RedisProfile          string `json:"redis_profile"`           // Name of the Redis profile the engine stores timers in.
		TimelineKey           string `json:"timeline_key"`            // Name of the ordered-set key holding deadlines.
		PayloadsKey           string `json:"payloads_key"`            // Name of the hash key holding payload bytes.
		Separator             string `json:"separator"`               // Sequence joining topic and timer_id in K.
		PollIntervalMs        int64  `json:"poll_interval_ms"`        // Idle sleep between polls, in milliseconds.
		BatchSize             int    `json:"batch_size"`              // Max timers fetched per poll.
		Concurrency           int    `json:"concurrency"`             // Max concurrent dispatch tasks.
		TimerLockTTLSec       int64  `json:"timer_lock_ttl_sec"`      // TTL on the per-timer write lock, in seconds.
		ConsumeLeaseTTLSec    int64  `json:"consume_lease_ttl_sec"`   // TTL on the per-timer dispatch lease, in seconds.
		LockAcquireTimeoutSec int64  `json:"lock_acquire_timeout_sec"` // How long SetTimer/RemoveTimer wait for the timer lock, in seconds.
		ShutdownGraceSec      int64  `json:"shutdown_grace_sec"`      // Time between stop signal and forced cancellation, in seconds.
		StrictUnknownTopics   bool   `json:"strict_unknown_topics"`   // Reject SetTimer for unregistered topics up front.
	}

	Monitor struct {
		PanicRobot PanicRobot `json:"panic_robot"`
	}

	PanicRobot struct {
		Enable bool        `json:"enable"`
		Wechat robotConfig `json:"wechat"`
		Feishu robotConfig `json:"feishu"`
	}

	robotConfig struct {
		Enable  bool   `json:"enable"`
		PushUrl string `json:"push_url"`
	}

	Feishu struct {
		Enable       bool   `json:"enable"`
		GroupWebhook string `json:"group_webhook"`
		AppID        string `json:"app_id"`
		AppSecret    string `json:"app_secret"`
		EncryptKey   string `json:"encrypt_key"`
	}
)

// LoadConfig loads configuration from bin/configs/<RUN_ENV>.json.
//
// Returns:
//   - *Config: parsed configuration instance also stored globally.
//   - error: returned when reading or decoding configuration fails.
//
// Behavior:
//   - Uses "local" when RUN_ENV is not provided.
//   - Applies APP_NAME override when present.
func LoadConfig() (*Config, error) {
	var (
		runEnv     string
		appName    string
		rootPath   string
		cfgContent []byte
		err        error
	)

	runEnv = os.Getenv(envKey)
	if runEnv == "" {
		runEnv = "local"
	}

	rootPath, err = os.Getwd()
	if err != nil {
		log.Fatalf("cannot resolve working directory: %v", err)
	}

	configFilePath := filepath.Join(rootPath, "bin", "configs", fmt.Sprintf("%s.json", runEnv))
	cfgContent, err = os.ReadFile(configFilePath)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(cfgContent, &config)
	if err != nil {
		return nil, err
	}

	appName = os.Getenv(nameKey)
	if appName != "" {
		config.System.Name = appName
	}

	config.System.Env = runEnv
	config.System.RootPath = rootPath
	config.System.EnvKey = envKey
	config.System.LangDir = filepath.Join(rootPath, "bin", "lang")

	checkConfig(config)

	return config, nil
}

// checkConfig validates required runtime configuration fields.
func checkConfig(conf *Config) {
	if conf.System.AdminAPIKey == "" {
		log.Panicf("AdminAPIKey Can not be null")
	}

	if len(conf.Redis) == 0 {
		log.Panicf("at least one redis profile must be configured")
	}
}

// GetConfig returns the globally loaded configuration singleton.
func GetConfig() *Config {
	return config
}
