// Command anybutton turns GPIO buttons and switches into MQTT values.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/anybutton/internal/button"
	"github.com/sweeney/anybutton/internal/config"
	"github.com/sweeney/anybutton/internal/gpio"
	"github.com/sweeney/anybutton/internal/indicator"
	"github.com/sweeney/anybutton/internal/mqtt"
	"github.com/sweeney/anybutton/internal/panel"
	"github.com/sweeney/anybutton/internal/status"
	"github.com/sweeney/anybutton/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (empty for a single button on BCM 26)")
	poll := flag.Duration("poll", config.DefaultPoll, "GPIO polling interval")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable)")
	heartbeat := flag.Duration("heartbeat", config.DefaultHeartbeat, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", config.DefaultHTTP, "HTTP status address (empty to disable)")
	printState := flag.Bool("print-state", false, "Print current button levels and exit")

	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "poll":
			cfg.Poll = *poll
		case "broker":
			cfg.MQTT.Broker = *broker
		case "heartbeat":
			cfg.Heartbeat = *heartbeat
		case "http":
			cfg.HTTP = *httpAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(cfg config.Config, printState bool) error {
	lines, err := cfg.Lines()
	if err != nil {
		return err
	}
	specs, err := buttonSpecs(cfg)
	if err != nil {
		return err
	}

	// Initialize GPIO
	gpioReader, err := gpio.NewRealReader(cfg.Chip, lines)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer gpioReader.Close()

	// Print state mode
	if printState {
		levels, err := gpioReader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		for i, b := range cfg.Buttons {
			fmt.Printf("%s (pin %d): %s\n", b.Name, b.Pin, levelString(levels[i]))
		}
		return nil
	}

	// Initialize indicator LED
	var led *indicator.Scheduler
	var flash time.Duration
	if ind := cfg.Indicator; ind != nil {
		w, err := gpio.NewLEDWriter(ind.Chip, ind.LEDPins())
		if err != nil {
			return fmt.Errorf("init indicator: %w", err)
		}
		led = indicator.New(w)
		defer led.Close()
		flash = ind.Flash
	}

	// Initialize MQTT
	var publisher mqtt.Publisher = nopPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		publisher = p
		mqttStatus = p
	} else {
		log.Printf("mqtt: no broker configured, events are only logged")
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		HTTPPort:    cfg.HTTP,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	resets := make(chan string, 8)
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker, resets)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	log.Printf("started: buttons=%d poll=%v broker=%q heartbeat=%v", len(specs), cfg.Poll, cfg.MQTT.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loop{
		reader:     gpioReader,
		specs:      specs,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		led:        led,
		colors:     buttonColors(cfg),
		flash:      flash,
		heartbeat:  cfg.Heartbeat,
		resets:     resets,
		now:        time.Now,
	}, ticker.C, sigCh)
}

// loop holds everything runLoop drives. led, tracker, mqttStatus and
// resets may be nil.
type loop struct {
	reader     gpio.Reader
	specs      []panel.Spec
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	led        *indicator.Scheduler
	colors     map[string]indicator.Color
	flash      time.Duration
	heartbeat  time.Duration
	resets     <-chan string
	now        func() time.Time
}

func runLoop(l loop, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := l.now()
	p, err := panel.New(l.specs, startTime)
	if err != nil {
		return err
	}
	l.update(p)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if l.led != nil {
				l.led.Stop()
			}
			signalName := signalString(s)
			event := mqtt.SystemEvent{
				Timestamp: l.now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if l.tracker != nil {
				l.update(p)
				event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := l.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case name := <-l.resets:
			if name == "" {
				p.ResetAll()
				log.Printf("reset: all buttons")
			} else if err := p.Reset(name); err != nil {
				log.Printf("reset: %v", err)
			} else {
				log.Printf("reset: %s", name)
			}
			if l.led != nil {
				l.led.Stop()
			}
			l.update(p)

		case <-tick:
			t := l.now()
			var events []panel.Event
			levels, err := l.reader.Read()
			if err == nil {
				events, err = p.Process(panel.Input{Levels: levels, Time: t})
			}
			if err != nil {
				log.Printf("read error: %v", err)
				// Oneshot clears are due regardless of the read.
				events = append(events, p.Tick(t)...)
			}

			for _, event := range events {
				log.Printf("event: %s %s=%d", event.Kind, event.Button, event.Value)
				if err := l.publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
				l.indicate(event)
			}

			// Check for heartbeat
			if hbData := p.CheckHeartbeat(t, l.heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v reports=%d", hbData.Uptime, hbData.Reports)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if l.tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						l.tracker.SetNetwork(net)
					}
					l.update(p)
					hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := l.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			l.update(p)
		}
	}
}

// indicate flashes the button's color for a value and switches the LED
// off when the button clears.
func (l loop) indicate(e panel.Event) {
	if l.led == nil {
		return
	}
	color, ok := l.colors[e.Button]
	if e.Value == button.ValueCleared {
		// Leave another button's flash running.
		if l.led.Color() == color {
			l.led.Stop()
		}
		return
	}
	if !ok || color == indicator.Off {
		return
	}
	if err := l.led.Oneshot(context.Background(), color, l.flash, false); err != nil {
		log.Printf("indicator: %v", err)
	}
}

func (l loop) update(p *panel.Panel) {
	if l.tracker == nil {
		return
	}
	l.tracker.Update(p.States(), p.Reports())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
	if l.led != nil {
		l.tracker.SetIndicator(l.led.Color(), l.led.Active())
	}
}

func buttonSpecs(cfg config.Config) ([]panel.Spec, error) {
	specs := make([]panel.Spec, 0, len(cfg.Buttons))
	for _, b := range cfg.Buttons {
		settings, err := b.Settings()
		if err != nil {
			return nil, fmt.Errorf("button %q: %w", b.Name, err)
		}
		specs = append(specs, panel.Spec{Name: b.Name, Config: settings})
	}
	return specs, nil
}

func buttonColors(cfg config.Config) map[string]indicator.Color {
	colors := make(map[string]indicator.Color, len(cfg.Buttons))
	for _, b := range cfg.Buttons {
		colors[b.Name] = b.LEDColor()
	}
	return colors
}

// nopPublisher stands in when no broker is configured.
type nopPublisher struct{}

func (nopPublisher) Publish(panel.Event) error { return nil }

func (nopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }

func (nopPublisher) Close() error { return nil }

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func signalString(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func levelString(active bool) string {
	if active {
		return "pressed"
	}
	return "released"
}
