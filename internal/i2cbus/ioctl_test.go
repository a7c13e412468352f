package i2cbus

import "testing"

func TestPrepareBlockReadBuffer_SetsRequestedLength(t *testing.T) {
	block := prepareBlockReadBuffer(16)
	if block[0] != 16 {
		t.Fatalf("expected block[0] to carry the requested length, got %d", block[0])
	}
}

func TestPrepareBlockReadBuffer_ClampsToSMBusBlockMax(t *testing.T) {
	block := prepareBlockReadBuffer(100)
	if block[0] != smbusBlockMax {
		t.Fatalf("expected block[0] to clamp to %d, got %d", smbusBlockMax, block[0])
	}
}

func TestPrepareBlockReadBuffer_ZeroLengthLeavesZero(t *testing.T) {
	block := prepareBlockReadBuffer(0)
	if block[0] != 0 {
		t.Fatalf("expected block[0] to be 0, got %d", block[0])
	}
}
