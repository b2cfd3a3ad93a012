package config

import (
	"os"
	"strings"
)

// Default configuration values.
const (
	DefaultServerURL = "ws://localhost:8080/ws"
	DefaultSTUN      = "stun:stun.l.google.com:19302"
)

// Config holds the CLI client configuration.
type Config struct {
	ServerURL string

	// ICE servers for the media transport.
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// Options carry CLI flag overrides into Load.
type Options struct {
	ServerURL  string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
}

// Load resolves configuration with flag > environment > default
// priority.
func Load(opts Options) *Config {
	return &Config{
		ServerURL:  firstOf(opts.ServerURL, os.Getenv("VC_SERVER"), DefaultServerURL),
		STUNServer: firstOf(opts.STUNServer, os.Getenv("VC_STUN_SERVER"), DefaultSTUN),
		TURNServer: firstOf(opts.TURNServer, os.Getenv("VC_TURN_SERVER"), ""),
		TURNUser:   firstOf(opts.TURNUser, os.Getenv("VC_TURN_USERNAME"), ""),
		TURNPass:   firstOf(opts.TURNPass, os.Getenv("VC_TURN_PASSWORD"), ""),
	}
}

// STUNServers returns the STUN URLs to negotiate through.
func (c *Config) STUNServers() []string {
	return []string{c.STUNServer}
}

// TURNServers returns TURN URLs if a TURN host is configured.
func (c *Config) TURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	host := strings.TrimPrefix(c.TURNServer, "turn:")
	return []string{
		"turn:" + host + ":3478?transport=udp",
		"turn:" + host + ":3478?transport=tcp",
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
