package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashOrigin(t *testing.T) {
	t.Run("is deterministic and non-reversible looking", func(t *testing.T) {
		a := HashOrigin("203.0.113.9")
		b := HashOrigin("203.0.113.9")
		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
		assert.NotContains(t, a, "203")
	})

	t.Run("distinct origins hash differently", func(t *testing.T) {
		assert.NotEqual(t, HashOrigin("203.0.113.9"), HashOrigin("203.0.113.10"))
	})

	t.Run("empty origin stays empty", func(t *testing.T) {
		assert.Equal(t, "", HashOrigin(""))
	})
}

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ipv4 zeroes last octet", "192.168.1.47", "192.168.1.0"},
		{"ipv6 keeps /48 prefix", "2001:db8:85a3::8a2e:370:7334", "2001:0db8:85a3::"},
		{"empty is unknown", "", "unknown"},
		{"garbage is invalid", "not-an-ip", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}

func TestDeviceSummary(t *testing.T) {
	t.Run("desktop browser", func(t *testing.T) {
		ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		assert.Equal(t, "Chrome on Windows 10", DeviceSummary(ua))
	})

	t.Run("empty user agent", func(t *testing.T) {
		assert.Equal(t, "Unknown Device", DeviceSummary(""))
	})
}
