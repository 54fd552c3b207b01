package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bubble-level.klederson.com/internal/app"
	"bubble-level.klederson.com/internal/config"
	"bubble-level.klederson.com/internal/level"
	"bubble-level.klederson.com/internal/logging"
	"bubble-level.klederson.com/internal/sensor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bubble-level",
		Short: "Bubble Level - Terminal spirit level driven by a gravity sensor",
		Long: `Bubble Level draws a spirit level in the terminal: a ring, a bubble that
drifts with the measured gravity, and a crosshair at the center. The ring
and bubble turn green while the surface is level.

Gravity samples come from a simulated sensor (--demo), a command printing
one sample per line (e.g. termux-sensor), an MQTT topic, a WebSocket
stream or a BLE peripheral.`,
		SilenceUsage: true,
		RunE:         run,
	}

	config.RegisterFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(cmd.Flags())
	if err != nil {
		printHint(err)
		return err
	}

	closer, err := logging.Setup(settings.LogFile, settings.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	source, err := sensor.Open(settings)
	if err != nil {
		printHint(err)
		return err
	}

	ind, err := level.NewIndicator(source, sensor.RateGame, level.Metrics{Density: settings.Density})
	if err != nil {
		return err
	}

	model := app.New(ind, source.Name(), settings.FPS)
	defer model.Shutdown()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithFPS(settings.FPS),
	)

	log.Info().Str("source", source.Name()).Float64("density", settings.Density).Int("fps", settings.FPS).Msg("starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		p.Quit()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("running ui: %w", err)
	}
	log.Info().Msg("stopped")
	return nil
}

func printHint(err error) {
	fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
	fmt.Fprintln(os.Stderr, "Try one of:")
	fmt.Fprintln(os.Stderr, "  ./bubble-level --demo                      (simulated sensor)")
	fmt.Fprintln(os.Stderr, "  ./bubble-level --source exec --exec 'termux-sensor -s gravity -d 20'")
	fmt.Fprintln(os.Stderr, "  ./bubble-level --source mqtt --mqtt-broker tcp://host:1883")
}
