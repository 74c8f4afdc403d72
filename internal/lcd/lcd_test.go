package lcd

import (
	"strings"
	"testing"
	"time"

	"github.com/sweeney/thermo-alarm/internal/gpio"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.delays = append(r.delays, d)
}

func (r *sleepRecorder) total() time.Duration {
	var sum time.Duration
	for _, d := range r.delays {
		sum += d
	}
	return sum
}

func (r *sleepRecorder) count(d time.Duration) int {
	n := 0
	for _, x := range r.delays {
		if x == d {
			n++
		}
	}
	return n
}

func newTestDisplay(t *testing.T) (*Display, *Emulator, *sleepRecorder) {
	t.Helper()
	em := NewEmulator()
	rec := &sleepRecorder{}
	d := New(em.Pins(), WithSleep(rec.sleep))
	return d, em, rec
}

func TestInitSequence(t *testing.T) {
	_, em, rec := newTestDisplay(t)

	if em.Wakeups != 3 {
		t.Errorf("Wakeups: got %d, want 3", em.Wakeups)
	}
	if !em.FourBit() {
		t.Error("expected 4-bit mode after init")
	}
	if !em.TwoLine {
		t.Error("expected two-line mode after init")
	}
	if !em.DisplayOn {
		t.Error("expected display on after init")
	}
	if em.CursorOn || em.Blink {
		t.Error("expected cursor off after init")
	}

	want := []uint8{0x30, 0x30, 0x30, 0x20, uint8(FunctionSet4Bit2Line), uint8(DisplayOn), uint8(Clear)}
	if len(em.Commands) != len(want) {
		t.Fatalf("commands: got %x, want %x", em.Commands, want)
	}
	for i := range want {
		if em.Commands[i] != want[i] {
			t.Errorf("command %d: got %#02x, want %#02x", i, em.Commands[i], want[i])
		}
	}

	if rec.delays[0] != powerOnDelay {
		t.Errorf("first delay: got %v, want %v", rec.delays[0], powerOnDelay)
	}
	if rec.count(wakeFirstDelay) != 1 {
		t.Errorf("expected one %v wake delay, got %d", wakeFirstDelay, rec.count(wakeFirstDelay))
	}
	if rec.count(wakeDelay) != 3 {
		t.Errorf("expected three %v wake delays, got %d", wakeDelay, rec.count(wakeDelay))
	}
	if rec.count(slowDelay) != 1 {
		t.Errorf("expected one slow delay for the clear, got %d", rec.count(slowDelay))
	}
}

func TestWakeDelaysDecrease(t *testing.T) {
	_, _, rec := newTestDisplay(t)

	// Extract the wake delays that follow the three function-set strobes.
	var wakes []time.Duration
	for _, d := range rec.delays {
		if d == wakeFirstDelay || d == wakeDelay {
			wakes = append(wakes, d)
		}
	}
	if len(wakes) < 3 {
		t.Fatalf("expected at least 3 wake delays, got %v", wakes)
	}
	if !(wakes[0] > wakes[1] && wakes[1] >= wakes[2]) {
		t.Errorf("wake delays should not increase: %v", wakes[:3])
	}
}

func TestStrobeTiming(t *testing.T) {
	d, _, rec := newTestDisplay(t)
	rec.delays = nil

	d.Character('A')

	// Two nibbles, each: hold, hold, settle.
	want := []time.Duration{strobeHold, strobeHold, settleDelay, strobeHold, strobeHold, settleDelay}
	if len(rec.delays) != len(want) {
		t.Fatalf("delays: got %v, want %v", rec.delays, want)
	}
	for i := range want {
		if rec.delays[i] != want[i] {
			t.Errorf("delay %d: got %v, want %v", i, rec.delays[i], want[i])
		}
	}
}

func TestSlowCommandsGetExtraDelay(t *testing.T) {
	tests := []struct {
		cmd  Command
		slow bool
	}{
		{Clear, true},
		{Home, true},
		{CursorOn, false},
		{CursorOff, false},
		{DisplayOff, false},
		{CursorLeft, false},
		{DisplayRight, false},
		{SetAddress | 0x40, false},
	}
	for _, tt := range tests {
		d, _, rec := newTestDisplay(t)
		rec.delays = nil
		d.Command(tt.cmd)
		got := rec.count(slowDelay) == 1
		if got != tt.slow {
			t.Errorf("command %#02x: slow delay %v, want %v", uint8(tt.cmd), got, tt.slow)
		}
	}
}

func TestCharacterPinLevels(t *testing.T) {
	port := gpio.NewPort("A")
	pins := Pins{
		RS: port.Output(0),
		E:  port.Output(1),
		D4: port.Output(2),
		D5: port.Output(3),
		D6: port.Output(4),
		D7: port.Output(5),
	}
	d := New(pins, WithSleep(func(time.Duration) {}))

	d.Character(0xA5)
	// RS high, E low after the strobe, low nibble 0x5 on D7-D4.
	if !port.Level(0) {
		t.Error("RS should be high after Character")
	}
	if port.Level(1) {
		t.Error("E should idle low")
	}
	got := port.Data >> 2 & 0x0f
	if got != 0x5 {
		t.Errorf("data lines after send: got %#x, want 0x5", got)
	}

	d.Command(CursorOff)
	if port.Level(0) {
		t.Error("RS should be low after Command")
	}
}

func TestWriteString(t *testing.T) {
	d, em, _ := newTestDisplay(t)

	d.GotoXY(0, 0)
	d.WriteString("Temp:")
	d.GotoXY(0, 1)
	d.WriteString("Alarm:")

	if got := em.Line(0, 16); got != "Temp:           " {
		t.Errorf("row 0: got %q", got)
	}
	if got := em.Line(1, 16); got != "Alarm:          " {
		t.Errorf("row 1: got %q", got)
	}
}

func TestWriteStringStopsAtNUL(t *testing.T) {
	d, em, _ := newTestDisplay(t)

	d.GotoXY(0, 0)
	d.WriteString("AB\x00CD")

	if em.Chars != 2 {
		t.Errorf("Chars: got %d, want 2", em.Chars)
	}
	if got := em.Line(0, 4); got != "AB  " {
		t.Errorf("row 0: got %q", got)
	}
}

func TestExtendedCharacter(t *testing.T) {
	d, em, _ := newTestDisplay(t)

	d.GotoXY(3, 0)
	d.WriteString("\xdfC")

	ram := em.RAM()
	if ram[3] != 0xdf || ram[4] != 'C' {
		t.Errorf("ram[3:5]: got %#x %#x, want 0xdf 'C'", ram[3], ram[4])
	}
}

func TestGotoXYAddresses(t *testing.T) {
	tests := []struct {
		x, y uint8
		want uint8
	}{
		{0, 0, 0x00},
		{5, 0, 0x05},
		{0, 1, 0x40},
		{15, 1, 0x4f},
		{0, 2, 0x14},
		{3, 2, 0x17},
		{0, 3, 0x54},
		{7, 3, 0x5b},
		{0, 4, 0x54},
		{7, 9, 0x5b},
		{2, 255, 0x56},
	}
	for _, tt := range tests {
		d, em, _ := newTestDisplay(t)
		d.GotoXY(tt.x, tt.y)
		if em.Address() != tt.want {
			t.Errorf("GotoXY(%d,%d): address %#02x, want %#02x", tt.x, tt.y, em.Address(), tt.want)
		}
		last := em.Commands[len(em.Commands)-1]
		if last != 0x80|tt.want {
			t.Errorf("GotoXY(%d,%d): command %#02x, want %#02x", tt.x, tt.y, last, 0x80|tt.want)
		}
	}
}

func TestRowsBeyondThreeMatchRowThree(t *testing.T) {
	for y := uint8(3); y < 20; y++ {
		for x := uint8(0); x < 20; x++ {
			if RowAddress(x, y) != RowAddress(x, 3) {
				t.Fatalf("RowAddress(%d,%d) = %#x, want %#x", x, y, RowAddress(x, y), RowAddress(x, 3))
			}
		}
	}
}

func TestClearIsIdempotent(t *testing.T) {
	d, em, rec := newTestDisplay(t)
	d.GotoXY(2, 1)
	d.WriteString("xyz")

	d.Command(Clear)
	once := em.RAM()
	onceAddr := em.Address()
	rec.delays = nil

	d.Command(Clear)
	if em.RAM() != once {
		t.Error("second clear changed display RAM")
	}
	if em.Address() != onceAddr {
		t.Errorf("second clear moved cursor: %#x, want %#x", em.Address(), onceAddr)
	}
	if rec.count(slowDelay) != 1 {
		t.Errorf("second clear: expected its own slow delay, got %d", rec.count(slowDelay))
	}
	if strings.TrimSpace(em.Line(1, 16)) != "" {
		t.Errorf("row 1 after clear: %q", em.Line(1, 16))
	}
}

func TestCursorAndDisplayShift(t *testing.T) {
	d, em, _ := newTestDisplay(t)
	d.GotoXY(5, 0)

	d.Command(CursorRight)
	if em.Address() != 6 {
		t.Errorf("CursorRight: address %d, want 6", em.Address())
	}
	d.Command(CursorLeft)
	d.Command(CursorLeft)
	if em.Address() != 4 {
		t.Errorf("CursorLeft: address %d, want 4", em.Address())
	}

	d.Command(DisplayRight)
	d.Command(DisplayRight)
	d.Command(DisplayLeft)
	if em.Shift != 1 {
		t.Errorf("Shift: got %d, want 1", em.Shift)
	}
	d.Command(Home)
	if em.Shift != 0 || em.Address() != 0 {
		t.Errorf("Home: shift %d address %d, want 0 0", em.Shift, em.Address())
	}
}

func TestCursorModes(t *testing.T) {
	tests := []struct {
		cmd                 Command
		display, cur, blink bool
	}{
		{CursorOn, true, true, false},
		{CursorOnBlink, true, true, true},
		{CursorBlink, true, false, true},
		{CursorOff, true, false, false},
		{DisplayOff, false, false, false},
	}
	for _, tt := range tests {
		d, em, _ := newTestDisplay(t)
		d.Command(tt.cmd)
		if em.DisplayOn != tt.display || em.CursorOn != tt.cur || em.Blink != tt.blink {
			t.Errorf("command %#02x: got display=%v cursor=%v blink=%v", uint8(tt.cmd), em.DisplayOn, em.CursorOn, em.Blink)
		}
	}
}

func TestWriteUintField(t *testing.T) {
	d, em, _ := newTestDisplay(t)

	d.GotoXY(0, 0)
	d.WriteDec(23, 3)
	d.WriteString(",")
	d.WriteUint(255, 4, '0', 16)

	if got := em.Line(0, 8); got != " 23,00FF" {
		t.Errorf("row 0: got %q", got)
	}
}
