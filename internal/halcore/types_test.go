package halcore

import "testing"

func TestDeviceStateStringAndConnected(t *testing.T) {
	cases := []struct {
		s    DeviceState
		name string
		conn bool
	}{
		{StateDefault, "default", false},
		{StateAddressed, "addressed", false},
		{StateConfigured, "configured", true},
		{StateSuspend, "suspend", false},
		{DeviceState(42), "unknown", false},
	}
	for _, tc := range cases {
		if got := tc.s.String(); got != tc.name {
			t.Errorf("String(%d)=%q want %q", tc.s, got, tc.name)
		}
		if got := tc.s.Connected(); got != tc.conn {
			t.Errorf("Connected(%s)=%v want %v", tc.name, got, tc.conn)
		}
	}
}
