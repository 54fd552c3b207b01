package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Source names accepted by --source.
const (
	SourceDemo      = "demo"
	SourceExec      = "exec"
	SourceMQTT      = "mqtt"
	SourceWebSocket = "ws"
	SourceBLE       = "ble"
)

// ErrInvalidSettings is wrapped by every Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds everything that can be changed at startup. The level
// thresholds are constants and deliberately not part of it.
type Settings struct {
	Source string

	ExecCommand string

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	WebSocketURL string

	BLEName    string
	BLEService string
	BLEChar    string

	Density float64
	FPS     int

	LogFile  string
	LogLevel string
}

// Defaults returns the settings used when no flag, env var or config
// file overrides them.
func Defaults() Settings {
	return Settings{
		Source:     SourceDemo,
		MQTTBroker: "tcp://localhost:1883",
		MQTTTopic:  "sensors/gravity",
		BLEService: "6e400001-b5a3-f393-e0a9-e50e24dcca9e",
		BLEChar:    "6e400003-b5a3-f393-e0a9-e50e24dcca9e",
		Density:    DefaultDensity,
		FPS:        TargetFPS,
		LogLevel:   "info",
	}
}

// RegisterFlags adds one flag per setting to fs, using Defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("source", d.Source, "Gravity source: demo, exec, mqtt, ws, ble")
	fs.Bool("demo", false, "Run with a simulated gravity sensor (same as --source demo)")
	fs.String("exec", d.ExecCommand, "Command printing one gravity sample per line (source exec)")
	fs.String("mqtt-broker", d.MQTTBroker, "MQTT broker URL (source mqtt)")
	fs.String("mqtt-topic", d.MQTTTopic, "MQTT topic carrying gravity samples")
	fs.String("mqtt-client-id", d.MQTTClientID, "MQTT client ID (generated when empty)")
	fs.String("mqtt-username", d.MQTTUsername, "MQTT username")
	fs.String("mqtt-password", d.MQTTPassword, "MQTT password")
	fs.String("ws-url", d.WebSocketURL, "WebSocket URL streaming gravity samples (source ws)")
	fs.String("ble-name", d.BLEName, "BLE peripheral local name (source ble)")
	fs.String("ble-service", d.BLEService, "BLE service UUID advertising gravity")
	fs.String("ble-char", d.BLEChar, "BLE characteristic UUID notifying gravity")
	fs.Float64("density", d.Density, "Pixels per dp on the terminal raster")
	fs.Int("fps", d.FPS, "Maximum frames per second")
	fs.String("log-file", d.LogFile, "Write JSON logs to this file (disabled when empty)")
	fs.String("log-level", d.LogLevel, "Log level: debug, info, warn, error")
	fs.String("config", "", "Optional config file (yaml, toml or json)")
}

// Load resolves settings from flags, BUBBLE_LEVEL_* environment variables
// and the optional --config file, in viper's usual precedence.
func Load(fs *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Settings{}, fmt.Errorf("binding flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	s := Settings{
		Source:       strings.ToLower(v.GetString("source")),
		ExecCommand:  v.GetString("exec"),
		MQTTBroker:   v.GetString("mqtt-broker"),
		MQTTTopic:    v.GetString("mqtt-topic"),
		MQTTClientID: v.GetString("mqtt-client-id"),
		MQTTUsername: v.GetString("mqtt-username"),
		MQTTPassword: v.GetString("mqtt-password"),
		WebSocketURL: v.GetString("ws-url"),
		BLEName:      v.GetString("ble-name"),
		BLEService:   v.GetString("ble-service"),
		BLEChar:      v.GetString("ble-char"),
		Density:      v.GetFloat64("density"),
		FPS:          v.GetInt("fps"),
		LogFile:      v.GetString("log-file"),
		LogLevel:     v.GetString("log-level"),
	}
	if v.GetBool("demo") {
		s.Source = SourceDemo
	}
	return s, s.Validate()
}

// Validate checks that the settings describe a runnable configuration.
func (s Settings) Validate() error {
	switch s.Source {
	case SourceDemo, SourceMQTT, SourceBLE:
	case SourceExec:
		if s.ExecCommand == "" {
			return fmt.Errorf("%w: source exec needs --exec", ErrInvalidSettings)
		}
	case SourceWebSocket:
		if s.WebSocketURL == "" {
			return fmt.Errorf("%w: source ws needs --ws-url", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidSettings, s.Source)
	}
	if s.Density <= 0 {
		return fmt.Errorf("%w: density must be positive, got %v", ErrInvalidSettings, s.Density)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidSettings, s.FPS)
	}
	return nil
}
