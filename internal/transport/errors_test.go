package transport

import (
	"errors"
	"fmt"
	"testing"
)

func TestNormalizeLinkError(t *testing.T) {
	tests := []struct {
		name     string
		vendor   string
		wantCode error
	}{
		{"channel busy", "radio: CHANNEL_BUSY on tx", ErrLinkBusy},
		{"tx in progress", "tx_in_progress", ErrLinkBusy},
		{"duty cycle", "DUTY_CYCLE_LIMIT exceeded", ErrLinkBusy},
		{"rate limited", "rate_limited by gateway", ErrLinkBusy},
		{"queue full", "QUEUE_FULL", ErrLinkBusy},

		{"no link", "NO_LINK established", ErrLinkUnavailable},
		{"link down", "link_down", ErrLinkUnavailable},
		{"module offline", "MODULE_OFFLINE", ErrLinkUnavailable},
		{"not initialized", "serial port NOT_INITIALIZED", ErrLinkUnavailable},
		{"serial disconnected", "SERIAL_DISCONNECTED", ErrLinkUnavailable},
		{"timeout", "write TIMEOUT after 5s", ErrLinkUnavailable},

		{"unknown token", "EEPROM checksum mismatch", ErrLinkInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NormalizeLinkError(fmt.Errorf("%s", tt.vendor))
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("expected %v, got %v", tt.wantCode, err)
			}

			var linkErr *LinkError
			if !errors.As(err, &linkErr) {
				t.Fatalf("expected LinkError, got %T", err)
			}
			if linkErr.Original == nil || linkErr.Original.Error() != tt.vendor {
				t.Errorf("original error not preserved: %v", linkErr.Original)
			}
		})
	}
}

func TestNormalizeLinkErrorNil(t *testing.T) {
	if err := NormalizeLinkError(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
