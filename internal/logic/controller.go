package logic

import (
	"log"
	"time"

	"github.com/sweeney/thermo-alarm/internal/alarm"
	"github.com/sweeney/thermo-alarm/internal/button"
	"github.com/sweeney/thermo-alarm/internal/eeprom"
	"github.com/sweeney/thermo-alarm/internal/lcd"
	"github.com/sweeney/thermo-alarm/internal/sensor"
)

// Buttons reports one event per physical press. Pressed may block until
// the button is released. Ignore discards a press in progress without
// blocking.
type Buttons interface {
	Pressed(id button.ID) bool
	Ignore(id button.ID)
}

// Flag is the conversion-due handoff from the slow interrupt.
type Flag interface {
	IsSet() bool
	Clear()
}

// initialTemperature is the reading assumed before the first conversion
// completes.
const initialTemperature = 1 * sensor.Degree

// Config wires a Controller to its collaborators.
type Config struct {
	Display Display
	Buttons Buttons
	Sensor  sensor.Sensor
	Storage eeprom.Storage
	Alarm   alarm.Output
	// ConversionDue is set by the slow interrupt.
	ConversionDue Flag

	// Now defaults to time.Now.
	Now func() time.Time
	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)
}

// Controller is the main-loop state machine. Its state is written only by
// Step, which must run on one goroutine.
type Controller struct {
	display Display
	buttons Buttons
	sensor  sensor.Sensor
	storage eeprom.Storage
	alarm   alarm.Output
	due     Flag
	now     func() time.Time
	logf    func(format string, args ...any)

	temperature sensor.Temperature
	haveReading bool
	converting  bool

	threshold sensor.Temperature
	enabled   bool
	active    bool
	paused    bool
	glyph     bool

	events []Event
	counts EventCounts
}

// New creates a controller. Call Start before the first Step.
func New(cfg Config) *Controller {
	c := &Controller{
		display:     cfg.Display,
		buttons:     cfg.Buttons,
		sensor:      cfg.Sensor,
		storage:     cfg.Storage,
		alarm:       cfg.Alarm,
		due:         cfg.ConversionDue,
		now:         cfg.Now,
		logf:        cfg.Logf,
		temperature: initialTemperature,
		events:      make([]Event, 0, 8),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logf == nil {
		c.logf = log.Printf
	}
	return c
}

// Start draws the static screen, loads the persisted settings and shows
// them. The settings are written back so an erased store holds the
// defaults from then on.
func (c *Controller) Start() {
	c.display.Command(lcd.Clear)
	c.display.Command(lcd.CursorOff)
	renderLabels(c.display)

	st := LoadSettings(c.storage)
	c.threshold = st.Threshold
	c.enabled = st.Enabled
	c.alarm.Deassert()
	c.updateAlarm()
}

// Step runs one main-loop pass and returns the events it produced. The
// returned slice is reused by the next Step.
func (c *Controller) Step() []Event {
	c.events = c.events[:0]

	c.temperatureCycle()
	c.evaluate()

	if c.enabled {
		if c.buttons.Pressed(button.Up) {
			c.adjust(sensor.Degree)
		}
		if c.buttons.Pressed(button.Down) {
			c.adjust(-sensor.Degree)
		}
	} else {
		// Up and Down are dead while disabled; a hold started now must
		// not count once Enter enables the alarm.
		c.buttons.Ignore(button.Up)
		c.buttons.Ignore(button.Down)
	}
	if c.buttons.Pressed(button.Enter) {
		c.enter()
	}

	return c.events
}

// adjust moves the threshold by delta within [MinThreshold, MaxThreshold].
// A press at a limit changes nothing.
func (c *Controller) adjust(delta sensor.Temperature) {
	t := c.threshold + delta
	if t < MinThreshold || t > MaxThreshold {
		return
	}
	c.threshold = t
	c.updateAlarm()
	c.emit(EventThresholdChanged)
}

// temperatureCycle collects the outstanding conversion, if any, and starts
// the next one.
func (c *Controller) temperatureCycle() {
	if !c.due.IsSet() {
		return
	}
	if c.converting {
		t, err := c.sensor.ReadResult()
		if err != nil {
			c.logf("sensor: read: %v", err)
		} else {
			c.temperature = t
			c.haveReading = true
			renderTemperature(c.display, rowTemperature, t)
		}
	}
	if err := c.sensor.StartConversion(); err != nil {
		c.logf("sensor: start conversion: %v", err)
	}
	c.converting = true
	c.due.Clear()
}

func (c *Controller) evaluate() {
	if c.enabled && c.temperature > c.threshold {
		if !c.active {
			c.alarm.Assert()
			c.active = true
			c.emit(EventAlarmOn)
		}
		return
	}
	c.deactivate()
}

// deactivate releases the output and clears active and paused. The output
// and glyph only need touching when there is something to undo.
func (c *Controller) deactivate() {
	wasActive := c.active
	if c.active || c.paused {
		c.alarm.Deassert()
	}
	c.active = false
	c.paused = false
	if c.glyph {
		renderGlyph(c.display, glyphBlank)
		c.glyph = false
	}
	if wasActive {
		c.emit(EventAlarmOff)
	}
}

func (c *Controller) enter() {
	if c.active {
		c.paused = !c.paused
		if c.paused {
			c.alarm.Deassert()
			renderGlyph(c.display, glyphPaused)
			c.glyph = true
			c.emit(EventAlarmPaused)
		} else {
			c.alarm.Assert()
			renderGlyph(c.display, glyphBlank)
			c.glyph = false
			c.emit(EventAlarmResumed)
		}
		return
	}

	c.enabled = !c.enabled
	c.updateAlarm()
	if c.enabled {
		c.emit(EventAlarmEnabled)
	} else {
		c.emit(EventAlarmDisabled)
	}
}

// updateAlarm redraws the threshold field and persists the settings.
// Storage errors are logged; the in-memory settings stay authoritative.
func (c *Controller) updateAlarm() {
	renderAlarm(c.display, c.threshold, c.enabled)
	if err := SaveSettings(c.storage, Settings{Threshold: c.threshold, Enabled: c.enabled}); err != nil {
		c.logf("eeprom: %v", err)
	}
}

func (c *Controller) emit(t EventType) {
	c.counts.add(t)
	c.events = append(c.events, Event{
		Timestamp:   c.now(),
		Type:        t,
		Temperature: c.temperature,
		Threshold:   c.threshold,
		Enabled:     c.enabled,
	})
}

// State returns the current controller state.
func (c *Controller) State() State {
	return State{
		Temperature: c.temperature,
		HaveReading: c.haveReading,
		Threshold:   c.threshold,
		Enabled:     c.enabled,
		Active:      c.active,
		Paused:      c.paused,
	}
}

// EventCountsSnapshot returns a copy of the event counts.
func (c *Controller) EventCountsSnapshot() EventCounts {
	return c.counts
}
