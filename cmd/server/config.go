package main

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the server settings. Room constants live here so the
// observable contract (capacity, code shape) can change without
// touching the protocol.
type Config struct {
	Addr     string
	LogLevel string

	MaxRoomSize    int
	RoomCodeLength int
}

// loadConfig reads settings from an optional vc-server config file and
// from VC_-prefixed environment variables (VC_ADDR, VC_LOG_LEVEL,
// VC_MAX_ROOM_SIZE, VC_ROOM_CODE_LENGTH).
func loadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_room_size", 5)
	v.SetDefault("room_code_length", 5)

	v.SetConfigName("vc-server")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/vc")

	v.SetEnvPrefix("vc")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		Addr:           v.GetString("addr"),
		LogLevel:       v.GetString("log_level"),
		MaxRoomSize:    v.GetInt("max_room_size"),
		RoomCodeLength: v.GetInt("room_code_length"),
	}, nil
}
