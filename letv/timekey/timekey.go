package timekey

import "math/bits"

// Secret is the constant mixed into every token.
const Secret uint32 = 773625421

const (
	firstRotation  = int(Secret % 13)
	secondRotation = int(Secret % 17)
)

// Keyer produces a tkey for a Unix timestamp.
type Keyer interface {
	Key(timestamp int64) (uint32, error)
}

// KeyFunc adapts a plain function to Keyer.
type KeyFunc func(timestamp int64) uint32

// Key implements Keyer.
func (f KeyFunc) Key(timestamp int64) (uint32, error) { return f(timestamp), nil }

// Default is the built-in key schedule.
var Default Keyer = KeyFunc(DeriveToken)

// DeriveToken returns the tkey for timestamp.
func DeriveToken(timestamp int64) uint32 {
	v := Rotate(uint32(timestamp), firstRotation)
	v ^= Secret
	return Rotate(v, secondRotation)
}

// RotateRight rotates v right by n bits in a single step.
func RotateRight(v uint32, n int) uint32 {
	return bits.RotateLeft32(v, -n)
}

// Rotate rotates v right one bit at a time, n mod 32 times.
func Rotate(v uint32, n int) uint32 {
	n %= 32
	if n < 0 {
		n += 32
	}
	for i := 0; i < n; i++ {
		v = RotateRight(v, 1)
	}
	return v
}
