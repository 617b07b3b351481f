package obj

import "math"

// Battery is a bounded energy store. Level always stays within [0, capacity].
type Battery struct {
	capacity float64
	level    float64
}

// NewBattery returns a full battery.
func NewBattery(capacity float64) *Battery {
	return NewBatteryLevel(capacity, capacity)
}

func NewBatteryLevel(capacity, level float64) *Battery {
	b := &Battery{}
	b.Set(capacity, level)
	return b
}

func (b *Battery) Set(capacity, level float64) {
	b.capacity = math.Max(capacity, 0)
	b.level = math.Min(math.Max(level, 0), b.capacity)
}

func (b *Battery) Capacity() float64 { return b.capacity }
func (b *Battery) Level() float64 { return b.level }

// DrawPower grants requested/(priority+1) when the level can cover it. A
// refused draw changes nothing.
func (b *Battery) DrawPower(requested float64, priority int) (float64, bool) {
	if priority < 0 {
		priority = 0
	}
	granted := requested / float64(priority+1)
	if b.level-granted < 0 {
		return 0, false
	}
	b.level -= granted
	return granted, true
}

// AddPower adds amount, clamped to capacity.
func (b *Battery) AddPower(amount float64) {
	b.level = math.Min(math.Max(b.level+amount, 0), b.capacity)
}

func (b *Battery) Full() bool {
	return b.level >= b.capacity
}

func (b *Battery) Deficit() float64 {
	return b.capacity - b.level
}

// Percentage is the truncated fill level; an empty-capacity battery reports 0.
func (b *Battery) Percentage() int {
	if b.capacity <= 0 {
		return 0
	}
	return int(b.level / b.capacity * 100)
}
