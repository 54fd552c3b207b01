package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"tinygo.org/x/bluetooth"
)

// ErrPeripheralNotFound is returned when no matching BLE device advertises
// before the scan deadline.
var ErrPeripheralNotFound = errors.New("gravity peripheral not found")

// BLEConfig selects the peripheral and characteristic to listen to.
type BLEConfig struct {
	Name           string // optional local name filter
	Service        string // service UUID the peripheral advertises
	Characteristic string // notifying characteristic, 3×float32 LE
	ScanDeadline   time.Duration
}

// BLESource connects to a BLE peripheral (a phone app or a
// microcontroller with an IMU) and listens to gravity notifications.
type BLESource struct {
	config  BLEConfig
	adapter *bluetooth.Adapter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	device *bluetooth.Device
}

// NewBLESource creates a source on the default adapter.
func NewBLESource(config BLEConfig) *BLESource {
	if config.ScanDeadline <= 0 {
		config.ScanDeadline = 30 * time.Second
	}
	return &BLESource{
		config:  config,
		adapter: bluetooth.DefaultAdapter,
	}
}

func (s *BLESource) Name() string {
	if s.config.Name != "" {
		return "ble:" + s.config.Name
	}
	return "ble"
}

// Subscribe enables the adapter and returns; scanning, connecting and
// enabling notifications continue in the background.
func (s *BLESource) Subscribe(fn Listener, rate time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadySubscribed
	}

	serviceUUID, err := bluetooth.ParseUUID(s.config.Service)
	if err != nil {
		return fmt.Errorf("parsing service uuid: %w", err)
	}
	charUUID, err := bluetooth.ParseUUID(s.config.Characteristic)
	if err != nil {
		return fmt.Errorf("parsing characteristic uuid: %w", err)
	}
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		if err := s.connect(ctx, serviceUUID, charUUID, newThrottle(fn, rate)); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("source", s.Name()).Msg("ble source failed")
		}
	}(s.done)
	return nil
}

func (s *BLESource) connect(ctx context.Context, serviceUUID, charUUID bluetooth.UUID, th *throttle) error {
	addr, err := s.scan(ctx, serviceUUID)
	if err != nil {
		return err
	}

	device, err := s.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr.String(), err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil || len(services) == 0 {
		_ = device.Disconnect()
		return fmt.Errorf("discovering gravity service: %w", errOrMissing(err))
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{charUUID})
	if err != nil || len(chars) == 0 {
		_ = device.Disconnect()
		return fmt.Errorf("discovering gravity characteristic: %w", errOrMissing(err))
	}

	err = chars[0].EnableNotifications(func(buf []byte) {
		sample, err := DecodeBinary(buf)
		if err != nil {
			log.Debug().Err(err).Int("len", len(buf)).Msg("ble: skipping notification")
			return
		}
		th.deliver(sample)
	})
	if err != nil {
		_ = device.Disconnect()
		return fmt.Errorf("enabling notifications: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		// Unsubscribed while connecting.
		_ = device.Disconnect()
		return nil
	}
	s.device = &device
	log.Info().Str("address", addr.String()).Msg("ble source subscribed")
	return nil
}

func (s *BLESource) scan(ctx context.Context, service bluetooth.UUID) (bluetooth.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ScanDeadline)
	defer cancel()

	found := make(chan bluetooth.Address, 1)
	scanErr := make(chan error, 1)
	go func() {
		scanErr <- s.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if s.config.Name != "" && result.LocalName() != s.config.Name {
				return
			}
			if s.config.Name == "" && !result.HasServiceUUID(service) {
				return
			}
			select {
			case found <- result.Address:
			default:
			}
			_ = adapter.StopScan()
		})
	}()

	select {
	case addr := <-found:
		return addr, nil
	case err := <-scanErr:
		if err != nil {
			return bluetooth.Address{}, fmt.Errorf("ble scan: %w", err)
		}
		select {
		case addr := <-found:
			return addr, nil
		default:
			return bluetooth.Address{}, ErrPeripheralNotFound
		}
	case <-ctx.Done():
		_ = s.adapter.StopScan()
		return bluetooth.Address{}, ErrPeripheralNotFound
	}
}

func errOrMissing(err error) error {
	if err != nil {
		return err
	}
	return ErrPeripheralNotFound
}

// Unsubscribe stops a pending scan or disconnects from the peripheral.
func (s *BLESource) Unsubscribe() error {
	s.mu.Lock()
	cancel, done, device := s.cancel, s.done, s.device
	s.cancel, s.done, s.device = nil, nil, nil
	if cancel != nil {
		cancel()
	}
	s.mu.Unlock()

	if cancel == nil {
		return ErrNotSubscribed
	}
	<-done
	if device != nil {
		if err := device.Disconnect(); err != nil {
			return fmt.Errorf("ble disconnect: %w", err)
		}
	}
	return nil
}
