package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/footswitch/internal/bridge"
	"github.com/sweeney/footswitch/internal/config"
	"github.com/sweeney/footswitch/internal/gpio"
	"github.com/sweeney/footswitch/internal/mqtt"
	"github.com/sweeney/footswitch/internal/status"
	"github.com/sweeney/footswitch/internal/web"
)

func run(c *config.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	spec, err := c.BridgeSpec()
	if err != nil {
		return err
	}

	backend := c.EffectiveBackend()
	bank, err := gpio.NewBank(backend, c.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	// runLoop leaves every control line at rest before the bank is closed.
	defer func() {
		if err := bank.Close(); err != nil {
			log.WithError(err).Warn("close gpio")
		}
	}()

	b, err := bridge.Build(bank, spec)
	if err != nil {
		return fmt.Errorf("build bridge: %w", err)
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:     c.PollInterval.Milliseconds(),
		DebounceMs: c.Debounce.Milliseconds(),
		Backend:    backend,
		Chip:       c.Chip,
		Broker:     c.MQTT.Broker,
		HTTPAddr:   c.HTTP,
		DryRun:     c.DryRun,
	})
	tracker.Update(b.Lines(), b.Switches())

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if c.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Config{
			Broker:      c.MQTT.Broker,
			ClientID:    c.MQTT.ClientID,
			TopicPrefix: c.MQTT.TopicPrefix,
		})
		if err != nil {
			// Switching must keep working without a broker.
			log.WithError(err).Error("mqtt disabled")
		} else {
			publisher, mqttStatus = p, p
			defer p.Close()
		}
	}

	if c.HTTP != "" {
		srv := web.New(c.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("http server")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.WithField("addr", c.HTTP).Info("http status server listening")
	}

	log.WithFields(log.Fields{
		"backend":  backend,
		"poll":     c.PollInterval,
		"debounce": c.Debounce,
		"switches": len(spec.Switches),
		"lines":    len(spec.Lines),
	}).Info("started")

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return runLoop(b, publisher, mqttStatus, tracker, time.Now, ticker.C, sigCh)
}

// runLoop owns the bridge. publisher, mqttStatus and tracker may be nil.
func runLoop(b *bridge.Bridge, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	publishSystem(publisher, mqttStatus, tracker, now(), "STARTUP", "")

	for {
		select {
		case s := <-sig:
			reason := signalName(s)
			log.WithField("signal", reason).Info("shutting down")
			if err := b.Rest(); err != nil {
				log.WithError(err).Error("return lines to rest")
			}
			if tracker != nil {
				tracker.Update(b.Lines(), b.Switches())
			}
			publishSystem(publisher, mqttStatus, tracker, now(), "SHUTDOWN", reason)
			return nil

		case <-tick:
			events, err := b.Step(now())
			if err != nil {
				// Pin faults are logged and the loop keeps going.
				log.WithError(err).Warn("step")
			}

			for _, event := range events {
				logEvent(event)
				if tracker != nil {
					tracker.RecordEvent(event)
				}
				if publisher != nil {
					if err := publisher.Publish(event); err != nil {
						log.WithError(err).Warn("publish")
					}
				}
			}

			if tracker != nil {
				tracker.Update(b.Lines(), b.Switches())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

func publishSystem(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, t time.Time, event, reason string) {
	if publisher == nil {
		return
	}

	sys := mqtt.SystemEvent{
		Timestamp: t,
		Event:     event,
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		sys.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), event, reason)
	}
	if err := publisher.PublishSystem(sys); err != nil {
		log.WithError(err).WithField("event", event).Warn("publish system event")
		return
	}
	log.WithField("event", event).Debug("published system event")
}

func logEvent(e bridge.Event) {
	entry := log.WithFields(log.Fields{
		"switch": e.Switch,
		"edge":   e.Edge.String(),
	})
	for _, lc := range e.Lines {
		entry = entry.WithField(lc.Line, string(lc.To))
	}
	entry.Info("edge")
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// printState samples every switch once without touching the control lines.
func printState(w io.Writer, c *config.Config) error {
	bank, err := gpio.NewBank(c.EffectiveBackend(), c.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer bank.Close()

	return readSwitches(w, bank, c.Switches)
}

func readSwitches(w io.Writer, bank gpio.Bank, switches []config.SwitchConfig) error {
	for _, sw := range switches {
		n, err := gpio.ParsePinNumber(sw.Pin)
		if err != nil {
			return fmt.Errorf("switch %s: %w", sw.Name, err)
		}
		pin, err := bank.Claim(n)
		if err != nil {
			return fmt.Errorf("switch %s: %w", sw.Name, err)
		}
		if err := pin.SetMode(gpio.Input); err != nil {
			return fmt.Errorf("switch %s: %w", sw.Name, err)
		}
		level, err := pin.Read()
		if err != nil {
			return fmt.Errorf("switch %s: %w", sw.Name, err)
		}

		state := "OPEN"
		if level == gpio.High {
			state = "CLOSED"
		}
		fmt.Fprintf(w, "%s (%s): %s\n", sw.Name, pin, state)
	}
	return nil
}

func validate(w io.Writer, c *config.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	spec, err := c.BridgeSpec()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "config ok: %d switches, %d lines\n", len(spec.Switches), len(spec.Lines))
	for _, l := range c.Lines {
		mode, drive := "momentary", "direct"
		if l.Latching {
			mode = "latching"
		}
		if l.Inverted {
			drive = "opto"
		}
		fmt.Fprintf(w, "  line %s on %s: %s, %s\n", l.Name, l.Pin, mode, drive)
	}
	for _, b := range c.Bindings {
		fmt.Fprintf(w, "  %s -> %v\n", b.Switch, b.Lines)
	}
	return nil
}

func configInit(w io.Writer, output string, force bool) error {
	if output == "" {
		return config.Default().Encode(w)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(output, flags, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := config.Default().Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", output)
	return nil
}
