package dirsize

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is a binary size unit used as the floor when formatting sizes.
type Unit int

// Binary units, each 1024 times the previous one.
const (
	Byte Unit = iota
	KiB
	MiB
	GiB
	TiB
	PiB
	EiB
)

var unitSuffixes = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// String returns the unit suffix.
func (u Unit) String() string {
	if u < Byte || int(u) >= len(unitSuffixes) {
		return "Unit(" + strconv.Itoa(int(u)) + ")"
	}

	return unitSuffixes[u]
}

// ParseUnit accepts B, K, KB, KiB and the like (case-insensitive) for every binary unit.
func ParseUnit(s string) (Unit, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "B" {
		return Byte, nil
	}

	s = strings.TrimSuffix(strings.TrimSuffix(s, "B"), "I")

	for i, suffix := range unitSuffixes[1:] {
		if s == suffix[:1] {
			return Unit(i + 1), nil
		}
	}

	return Byte, fmt.Errorf("%w: unknown unit %q", ErrInvalidOptions, s)
}

// FormatSize renders size in binary units with one decimal, never using a unit
// smaller than floor. Plain bytes have no decimal.
func FormatSize(size int64, floor Unit) string {
	const base = 1024

	if floor < Byte {
		floor = Byte
	}

	if int(floor) >= len(unitSuffixes) {
		floor = EiB
	}

	if size < 0 {
		return "-" + FormatSize(-size, floor)
	}

	if floor == Byte && size < base {
		return strconv.FormatInt(size, 10) + " B"
	}

	value := float64(size)
	unit := Byte

	for unit < floor || (value >= base && unit < EiB) {
		value /= base
		unit++
	}

	return strconv.FormatFloat(value, 'f', 1, 64) + " " + unit.String()
}
