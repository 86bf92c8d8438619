package errcode

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"device_open":    DeviceOpen,
		"map_failed":     MapFailed,
		"bus_open":       BusOpen,
		"timeout":        Timeout,
		"invalid_params": InvalidParams,
		"unknown_pin":    UnknownPin,
		"io":             IO,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfWalksChain(t *testing.T) {
	base := &E{C: MapFailed, Op: "map 0x80050000", Err: errors.New("EPERM")}
	wrapped := fmt.Errorf("acquire: %w", base)

	if got := Of(wrapped); got != MapFailed {
		t.Fatalf("Of(wrapped) = %q, want %q", got, MapFailed)
	}
	if got := Of(fmt.Errorf("x: %w", Timeout)); got != Timeout {
		t.Fatalf("Of(bare code) = %q, want %q", got, Timeout)
	}
	if got := Of(nil); got != OK {
		t.Fatalf("Of(nil) = %q, want ok", got)
	}
	if got := Of(errors.New("plain")); got != Error {
		t.Fatalf("Of(plain) = %q, want error", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	if Wrap(IO, "op", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
	err := Wrap(Timeout, "poll", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("cause lost")
	}
	if got, want := err.Error(), "timeout: poll: context deadline exceeded"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
