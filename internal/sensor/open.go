package sensor

import (
	"fmt"

	"bubble-level.klederson.com/internal/config"
)

// Open builds the source selected by settings.Source.
func Open(s config.Settings) (Source, error) {
	switch s.Source {
	case config.SourceDemo:
		return NewMockSource(), nil
	case config.SourceExec:
		return NewExecSource(s.ExecCommand, config.ReconnectDelay), nil
	case config.SourceMQTT:
		return NewMQTTSource(MQTTConfig{
			Broker:   s.MQTTBroker,
			Topic:    s.MQTTTopic,
			ClientID: s.MQTTClientID,
			Username: s.MQTTUsername,
			Password: s.MQTTPassword,
			Timeout:  config.SubscribeWait,
		}), nil
	case config.SourceWebSocket:
		return NewWebSocketSource(s.WebSocketURL, config.ReconnectDelay), nil
	case config.SourceBLE:
		return NewBLESource(BLEConfig{
			Name:           s.BLEName,
			Service:        s.BLEService,
			Characteristic: s.BLEChar,
			ScanDeadline:   config.BLEScanDeadline,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", config.ErrInvalidSettings, s.Source)
	}
}
