package bitpack

import "testing"

func TestComposeBitsRoundTrip(t *testing.T) {
	var testData = []struct {
		description string
		value       uint64
		lsb         uint
		width       uint
	}{
		{"single bit set at zero", 1, 0, 1},
		{"byte straddling two words", 0xab, 28, 8},
		{"full word", 0xdeadbeef, 0, 32},
		{"small value, offset into second word", 0x3, 33, 4},
	}

	for _, d := range testData {
		dest := make([]uint32, 3)
		ComposeBits(dest, d.value, d.lsb, d.width)

		var got uint64
		for i := uint(0); i < d.width; i++ {
			pos := d.lsb + i
			word := dest[pos/32]
			bit := (word >> (pos % 32)) & 1
			got |= uint64(bit) << i
		}

		want := d.value & (uint64(1)<<d.width - 1)
		if got != want {
			t.Errorf("%s: want 0x%x, got 0x%x", d.description, want, got)
		}
	}
}

func TestComposeBitsDoesNotLeakOutsideRange(t *testing.T) {
	dest := make([]uint32, 1)
	dest[0] = 0xffffffff
	ComposeBits(dest, 0, 4, 4)
	// bits 4..7 should now be zero, bits 0..3 and 8..31 untouched.
	if dest[0] != 0xffffff0f {
		t.Errorf("write leaked outside declared range: got 0x%x", dest[0])
	}
}

func TestGetSetBitsRoundTripUnsigned(t *testing.T) {
	var testData = []struct {
		length uint
		value  uint64
	}{
		{1, 1},
		{6, 0x3f},
		{12, 0xabc},
		{30, 0x3fffffff},
		{38, 0x3fffffffff},
	}

	for _, d := range testData {
		buf := make([]byte, 16)
		SetBitsFromUint64(buf, 5, d.length, d.value)
		got := GetBitsAsUint64(buf, 5, d.length)
		if got != d.value {
			t.Errorf("length %d: want 0x%x, got 0x%x", d.length, d.value, got)
		}
	}
}

func TestGetSetBitsRoundTripSigned(t *testing.T) {
	var testData = []struct {
		length uint
		value  int64
	}{
		{8, -1},
		{8, 127},
		{8, -128},
		{38, -137438953472 + 1},
		{11, -1024},
	}

	for _, d := range testData {
		buf := make([]byte, 16)
		SetBitsFromInt64(buf, 3, d.length, d.value)
		got := GetBitsAsInt64(buf, 3, d.length)
		if got != d.value {
			t.Errorf("length %d value %d: got %d", d.length, d.value, got)
		}
	}
}

func TestAppendWordCopiesAcrossWordBoundary(t *testing.T) {
	src := []byte{0xff, 0x00, 0xff}
	dest := make([]byte, 4)
	AppendWord(dest, 4, src, 4, 16)
	want := GetBitsAsUint64(src, 4, 16)
	got := GetBitsAsUint64(dest, 4, 16)
	if want != got {
		t.Errorf("want 0x%x, got 0x%x", want, got)
	}
}

func TestAssignBitsMSBFirst(t *testing.T) {
	out := AssignBits(0b1011, 4, nil)
	want := []byte{1, 0, 1, 1}
	if len(out) != len(want) {
		t.Fatalf("want %d bits, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("bit %d: want %d, got %d", i, want[i], out[i])
		}
	}
}

func TestUnscaleRoundTripWithinQuantisationError(t *testing.T) {
	var testData = []struct {
		value float64
		n     int
	}{
		{0.123456, -31},
		{-1.5, -20},
		{100000.0, -10},
	}

	for _, d := range testData {
		scaledInt := UnscaleInt(d.value, d.n)
		back := ScaleInt(scaledInt, d.n)
		tolerance := ScaleInt(1, d.n) // one LSB of quantisation error
		diff := back - d.value
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			t.Errorf("value %v n %d: round trip %v exceeds tolerance %v (diff %v)",
				d.value, d.n, back, tolerance, diff)
		}
	}
}
