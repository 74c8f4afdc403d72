// Command thermo-alarm drives the LCD thermostat alarm: it shows the
// temperature on a character display, sounds the alarm output above a
// threshold set with three front-panel buttons, and optionally reports
// alarm events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sweeney/thermo-alarm/internal/alarm"
	"github.com/sweeney/thermo-alarm/internal/button"
	"github.com/sweeney/thermo-alarm/internal/eeprom"
	"github.com/sweeney/thermo-alarm/internal/gpio"
	"github.com/sweeney/thermo-alarm/internal/irq"
	"github.com/sweeney/thermo-alarm/internal/lcd"
	"github.com/sweeney/thermo-alarm/internal/logic"
	"github.com/sweeney/thermo-alarm/internal/mqtt"
	"github.com/sweeney/thermo-alarm/internal/sensor"
	"github.com/sweeney/thermo-alarm/internal/status"
	"github.com/sweeney/thermo-alarm/internal/web"
)

type options struct {
	chip     string
	pinUp    int
	pinEnter int
	pinDown  int
	pinAlarm int
	pinRS    int
	pinE     int
	pinD4    int
	pinD5    int
	pinD6    int
	pinD7    int

	onewire    string
	resolution int
	sample     time.Duration
	convert    time.Duration
	idle       time.Duration
	eepromPath string
	beep       bool

	broker    string
	heartbeat time.Duration
	httpAddr  string
	printTemp bool
}

func main() {
	var o options
	flag.StringVar(&o.chip, "chip", "gpiochip0", "GPIO character device")
	flag.IntVar(&o.pinUp, "pin-up", gpio.DefaultPinUp, "BCM pin number for the up button")
	flag.IntVar(&o.pinEnter, "pin-enter", gpio.DefaultPinEnter, "BCM pin number for the enter button")
	flag.IntVar(&o.pinDown, "pin-down", gpio.DefaultPinDown, "BCM pin number for the down button")
	flag.IntVar(&o.pinAlarm, "pin-alarm", gpio.DefaultPinAlarm, "BCM pin number for the alarm output")
	flag.IntVar(&o.pinRS, "pin-rs", gpio.DefaultPinRS, "BCM pin number for LCD RS")
	flag.IntVar(&o.pinE, "pin-e", gpio.DefaultPinE, "BCM pin number for LCD E")
	flag.IntVar(&o.pinD4, "pin-d4", gpio.DefaultPinD4, "BCM pin number for LCD D4")
	flag.IntVar(&o.pinD5, "pin-d5", gpio.DefaultPinD5, "BCM pin number for LCD D5")
	flag.IntVar(&o.pinD6, "pin-d6", gpio.DefaultPinD6, "BCM pin number for LCD D6")
	flag.IntVar(&o.pinD7, "pin-d7", gpio.DefaultPinD7, "BCM pin number for LCD D7")
	flag.StringVar(&o.onewire, "onewire", "", "One-wire bus name (empty for the first bus)")
	flag.IntVar(&o.resolution, "resolution", sensor.Resolution12, "Sensor resolution in bits (9-12)")
	flag.DurationVar(&o.sample, "sample", button.DefaultPeriod, "Button sampling interval")
	flag.DurationVar(&o.convert, "convert", irq.DefaultConversionPeriod, "Temperature conversion interval")
	flag.DurationVar(&o.idle, "idle", time.Millisecond, "Pause between main loop passes")
	flag.StringVar(&o.eepromPath, "eeprom", "/var/lib/thermo-alarm/eeprom.bin", "Settings image file")
	flag.BoolVar(&o.beep, "beep", true, "Pulse the alarm output instead of holding it")
	flag.StringVar(&o.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&o.printTemp, "print-temp", false, "Print the current temperature and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	if o.resolution < sensor.Resolution9 || o.resolution > sensor.Resolution12 {
		return fmt.Errorf("resolution %d out of range 9-12", o.resolution)
	}
	if o.convert < sensor.ConversionTime(o.resolution) {
		log.Printf("warning: convert=%v is shorter than the %d-bit conversion time %v",
			o.convert, o.resolution, sensor.ConversionTime(o.resolution))
	}

	// Initialize sensor
	therm, err := sensor.OpenDS18B20(o.onewire)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer therm.Close()
	if err := therm.Configure(o.resolution); err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}

	// Print temperature mode
	if o.printTemp {
		return printTemperature(therm, o.resolution)
	}

	// Initialize GPIO
	chip, err := gpio.OpenChip(o.chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()
	hw, err := openHardware(chip, o)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}

	store, err := eeprom.OpenFile(o.eepromPath)
	if err != nil {
		return fmt.Errorf("init eeprom: %w", err)
	}
	defer store.Close()

	display := lcd.New(hw.lcd)
	sampler := button.NewSampler(hw.up, hw.enter, hw.down)
	due := &irq.Flag{}

	var out alarm.Output
	slow := due.Set
	if o.beep {
		beeper := alarm.NewBeeper(hw.alarm)
		out = beeper
		slow = func() {
			due.Set()
			beeper.Tick()
		}
	} else {
		out = alarm.NewSteady(hw.alarm)
	}

	ctrl := logic.New(logic.Config{
		Display:       display,
		Buttons:       sampler,
		Sensor:        therm,
		Storage:       store,
		Alarm:         out,
		ConversionDue: due,
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	dispatcher := irq.NewDispatcher(
		irq.Vector{Name: "sample", Period: o.sample, Handler: sampler.Tick},
		irq.Vector{Name: "convert", Period: o.convert, Handler: slow},
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	// Initialize MQTT. The async queue keeps a slow broker from stalling
	// the control loop.
	var publisher mqtt.Publisher
	if o.broker != "" {
		async := mqtt.NewAsync(mqtt.NewRealPublisher(o.broker), mqtt.DefaultQueueSize)
		publisher = async
		pubCtx, pubCancel := context.WithCancel(context.Background())
		pubDone := make(chan struct{})
		go func() {
			async.Run(pubCtx)
			close(pubDone)
		}()
		defer func() {
			pubCancel()
			<-pubDone
			async.Close()
		}()
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		SampleMs:    o.sample.Milliseconds(),
		ConvertMs:   o.convert.Milliseconds(),
		Resolution:  o.resolution,
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Beep:        o.beep,
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
		EEPROMPath:  o.eepromPath,
	})

	ctrl.Start()
	tracker.Update(ctrl.State(), ctrl.EventCountsSnapshot())

	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      mqtt.EventStartup,
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, mqtt.EventStartup, ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to queue startup event: %v", err)
		}
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: sample=%v convert=%v resolution=%d beep=%v broker=%q heartbeat=%v",
		o.sample, o.convert, o.resolution, o.beep, o.broker, o.heartbeat)

	var heartbeat <-chan time.Time
	if o.heartbeat > 0 {
		hb := time.NewTicker(o.heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	idle := func() { time.Sleep(o.idle) }
	return runLoop(ctrl, publisher, tracker, time.Now, heartbeat, sigCh, idle)
}

// hardware is the set of GPIO lines the daemon drives.
type hardware struct {
	up, enter, down gpio.InputPin
	alarm           gpio.OutputPin
	lcd             lcd.Pins
}

func openHardware(chip *gpio.Chip, o options) (hardware, error) {
	var hw hardware
	inputs := []struct {
		pin *gpio.InputPin
		off int
	}{
		{&hw.up, o.pinUp},
		{&hw.enter, o.pinEnter},
		{&hw.down, o.pinDown},
	}
	for _, in := range inputs {
		line, err := chip.Input(in.off, true)
		if err != nil {
			return hardware{}, err
		}
		*in.pin = line
	}

	outputs := []struct {
		pin *gpio.OutputPin
		off int
	}{
		{&hw.alarm, o.pinAlarm},
		{&hw.lcd.RS, o.pinRS},
		{&hw.lcd.E, o.pinE},
		{&hw.lcd.D4, o.pinD4},
		{&hw.lcd.D5, o.pinD5},
		{&hw.lcd.D6, o.pinD6},
		{&hw.lcd.D7, o.pinD7},
	}
	for _, out := range outputs {
		line, err := chip.Output(out.off)
		if err != nil {
			return hardware{}, err
		}
		*out.pin = line
	}
	return hw, nil
}

func printTemperature(s sensor.Sensor, resolution int) error {
	if err := s.StartConversion(); err != nil {
		return fmt.Errorf("start conversion: %w", err)
	}
	time.Sleep(sensor.ConversionTime(resolution))
	t, err := s.ReadResult()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	fmt.Printf("Temperature: %s\n", t)
	return nil
}

// controller is the part of logic.Controller the loop drives.
type controller interface {
	Step() []logic.Event
	State() logic.State
	EventCountsSnapshot() logic.EventCounts
}

// runLoop runs controller passes back to back until a signal arrives.
// Heartbeats and shutdown are checked between passes, so a pass blocked on
// a held button delays them.
func runLoop(ctrl controller, publisher mqtt.Publisher, tracker *status.Tracker, now func() time.Time, heartbeat <-chan time.Time, sig <-chan os.Signal, idle func()) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			publishStatus(publisher, tracker, now, mqtt.EventShutdown, signalName)
			return nil

		case <-heartbeat:
			if tracker != nil {
				snap := tracker.Snapshot()
				log.Printf("heartbeat: uptime=%v temp=%v threshold=%v alarm=%s alarm_on=%d",
					snap.Uptime().Truncate(time.Second), snap.State.Temperature, snap.State.Threshold,
					snap.AlarmText(), snap.Counts.AlarmOn)
			}
			publishStatus(publisher, tracker, now, mqtt.EventHeartbeat, "")

		default:
		}

		for _, event := range ctrl.Step() {
			log.Printf("event: %s (temp=%v threshold=%v)", event.Type, event.Temperature, event.Threshold)
			if publisher != nil {
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
				}
			}
		}

		if tracker != nil {
			tracker.Update(ctrl.State(), ctrl.EventCountsSnapshot())
			refreshMQTT(publisher, tracker)
		}
		idle()
	}
}

func publishStatus(publisher mqtt.Publisher, tracker *status.Tracker, now func() time.Time, event, reason string) {
	if publisher == nil {
		return
	}
	ev := mqtt.SystemEvent{
		Timestamp: now(),
		Event:     event,
		Reason:    reason,
		Retained:  event == mqtt.EventShutdown,
	}
	if tracker != nil {
		refreshMQTT(publisher, tracker)
		ev.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), event, reason)
	}
	if err := publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	}
}

func refreshMQTT(publisher mqtt.Publisher, tracker *status.Tracker) {
	var connected bool
	var dropped uint64
	if cs, ok := publisher.(mqtt.ConnectionStatus); ok {
		connected = cs.IsConnected()
	}
	if d, ok := publisher.(interface{ Dropped() uint64 }); ok {
		dropped = d.Dropped()
	}
	tracker.SetMQTT(connected, dropped)
}
