package sensor

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTTConfig describes the broker and topic carrying gravity payloads.
type MQTTConfig struct {
	Broker   string // e.g. tcp://localhost:1883
	Topic    string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// MQTTSource subscribes to a topic whose messages are JSON samples,
// e.g. published by a phone sensor-logger app.
type MQTTSource struct {
	config MQTTConfig

	mu     sync.Mutex
	client mqtt.Client
	th     *throttle
}

// NewMQTTSource creates an MQTT source. Nothing connects until Subscribe.
func NewMQTTSource(config MQTTConfig) *MQTTSource {
	if config.ClientID == "" {
		config.ClientID = fmt.Sprintf("bubble-level-%d", time.Now().Unix())
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &MQTTSource{config: config}
}

func (s *MQTTSource) Name() string { return "mqtt:" + s.config.Topic }

// Subscribe starts connecting to the broker and returns without waiting;
// the topic subscription is (re)made in the OnConnect handler so it
// survives automatic reconnects.
func (s *MQTTSource) Subscribe(fn Listener, rate time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return ErrAlreadySubscribed
	}
	s.th = newThrottle(fn, rate)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.config.Broker)
	opts.SetClientID(s.config.ClientID)
	if s.config.Username != "" {
		opts.SetUsername(s.config.Username)
		opts.SetPassword(s.config.Password)
	}
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(s.config.Timeout)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = s.onConnect
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost (will auto-reconnect)")
	}

	client := mqtt.NewClient(opts)
	log.Info().Str("broker", s.config.Broker).Str("client_id", s.config.ClientID).Msg("mqtt connecting")
	token := client.Connect()
	go func() {
		if !token.WaitTimeout(s.config.Timeout) {
			log.Warn().Str("broker", s.config.Broker).Msg("mqtt connect still pending, retrying in background")
			return
		}
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Str("broker", s.config.Broker).Msg("mqtt connect failed")
		}
	}()
	s.client = client
	return nil
}

func (s *MQTTSource) onConnect(client mqtt.Client) {
	token := client.Subscribe(s.config.Topic, 0, s.onMessage)
	if !token.WaitTimeout(s.config.Timeout) {
		log.Warn().Str("topic", s.config.Topic).Msg("mqtt subscribe timeout")
		return
	}
	if err := token.Error(); err != nil {
		log.Warn().Err(err).Str("topic", s.config.Topic).Msg("mqtt subscribe failed")
		return
	}
	log.Info().Str("topic", s.config.Topic).Msg("mqtt subscribed")
}

func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	sample, err := DecodeLine(string(msg.Payload()))
	if err != nil {
		log.Debug().Err(err).Str("topic", msg.Topic()).Msg("mqtt: skipping payload")
		return
	}
	s.mu.Lock()
	th := s.th
	s.mu.Unlock()
	if th != nil {
		th.deliver(sample)
	}
}

// Unsubscribe drops the topic subscription and disconnects.
func (s *MQTTSource) Unsubscribe() error {
	s.mu.Lock()
	client := s.client
	s.client, s.th = nil, nil
	s.mu.Unlock()

	if client == nil {
		return ErrNotSubscribed
	}
	if client.IsConnected() {
		token := client.Unsubscribe(s.config.Topic)
		token.WaitTimeout(s.config.Timeout)
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Msg("mqtt unsubscribe failed")
		}
	}
	client.Disconnect(250)
	return nil
}
