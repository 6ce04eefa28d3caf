package api

import (
	"net"
	"testing"
)

func TestIsPrivateOrSpecialIP(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1":       true,
		"10.1.2.3":        true,
		"192.168.0.10":    true,
		"169.254.169.254": true,
		"100.64.0.1":      true,
		"0.0.0.0":         true,
		"::1":             true,
		"fe80::1":         true,
		"93.184.216.34":   false,
		"8.8.8.8":         false,
		"100.128.0.1":     false,
	}
	for raw, want := range cases {
		if got := isPrivateOrSpecialIP(net.ParseIP(raw)); got != want {
			t.Errorf("isPrivateOrSpecialIP(%s) = %v, want %v", raw, got, want)
		}
	}
}
