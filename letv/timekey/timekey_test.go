package timekey

import (
	"math/bits"
	"testing"
)

func TestDeriveToken_KnownVectors(t *testing.T) {
	// Values produced by the player's own schedule.
	tests := []struct {
		timestamp int64
		want      uint32
	}{
		{timestamp: 0, want: 1691541961},
		{timestamp: 1, want: 1691542985},
		{timestamp: 1234567890, want: 1020897519},
		{timestamp: 1424747397, want: 3413963930},
		{timestamp: 1700000000, want: 722919516},
		{timestamp: 2147483647, want: 2603424822},
		{timestamp: 4294967295, want: 2603425334},
	}

	for _, tt := range tests {
		if got := DeriveToken(tt.timestamp); got != tt.want {
			t.Errorf("DeriveToken(%d) = %d, want %d", tt.timestamp, got, tt.want)
		}
	}
}

func TestDeriveToken_NegativeTimestamp(t *testing.T) {
	// -1 + 0x100000000 == 0xFFFFFFFF
	if got, want := DeriveToken(-1), DeriveToken(0xFFFFFFFF); got != want {
		t.Errorf("DeriveToken(-1) = %d, want %d", got, want)
	}
	if got := DeriveToken(-1); got != 2603425334 {
		t.Errorf("DeriveToken(-1) = %d, want 2603425334", got)
	}
}

func TestDeriveToken_Deterministic(t *testing.T) {
	for ts := int64(1424747000); ts < 1424747400; ts++ {
		if DeriveToken(ts) != DeriveToken(ts) {
			t.Fatalf("DeriveToken(%d) is not deterministic", ts)
		}
	}
}

func TestDeriveToken_RotationConstants(t *testing.T) {
	if firstRotation != 10 {
		t.Errorf("Expected first rotation 10, got %d", firstRotation)
	}
	if secondRotation != 12 {
		t.Errorf("Expected second rotation 12, got %d", secondRotation)
	}
}

func TestRotate_KnownValues(t *testing.T) {
	tests := []struct {
		v    uint32
		n    int
		want uint32
	}{
		{v: 1, n: 1, want: 0x80000000},
		{v: 1, n: 33, want: 0x80000000},
		{v: 0x80000000, n: 31, want: 1},
		{v: 0xDEADBEEF, n: 10, want: 3153570671},
		{v: 0xDEADBEEF, n: 42, want: 3153570671},
		{v: 0xDEADBEEF, n: 0, want: 0xDEADBEEF},
	}
	for _, tt := range tests {
		if got := Rotate(tt.v, tt.n); got != tt.want {
			t.Errorf("Rotate(%#x, %d) = %#x, want %#x", tt.v, tt.n, got, tt.want)
		}
	}
}

func TestRotate_FullCycleIsIdentity(t *testing.T) {
	values := []uint32{0, 1, 0x80000000, 0xDEADBEEF, 0xFFFFFFFF, 773625421}
	for _, v := range values {
		got := v
		for i := 0; i < 32; i++ {
			got = RotateRight(got, 1)
		}
		if got != v {
			t.Errorf("32 single-bit rotations of %#x gave %#x", v, got)
		}
	}
}

func TestRotate_MatchesSingleRotation(t *testing.T) {
	values := []uint32{1, 0x12345678, 0xDEADBEEF, 0xFFFFFFFE, Secret}
	for _, v := range values {
		for n := -70; n <= 70; n++ {
			mod := ((n % 32) + 32) % 32
			want := bits.RotateLeft32(v, -mod)
			if got := Rotate(v, n); got != want {
				t.Fatalf("Rotate(%#x, %d) = %#x, want %#x", v, n, got, want)
			}
			if got := RotateRight(v, n); got != want {
				t.Fatalf("RotateRight(%#x, %d) = %#x, want %#x", v, n, got, want)
			}
		}
	}
}

func TestDefaultKeyer(t *testing.T) {
	got, err := Default.Key(1424747397)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != 3413963930 {
		t.Errorf("Expected 3413963930, got %d", got)
	}
}
