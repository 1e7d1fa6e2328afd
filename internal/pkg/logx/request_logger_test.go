package logx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnonymizeIP(t *testing.T) {
	req := require.New(t)

	req.Equal("203.0.113.0", anonymizeIP("203.0.113.42:5555"))
	req.Equal("127.0.0.1", anonymizeIP("127.0.0.1:80"))
	req.Equal("2001:db8:1:2::", anonymizeIP("[2001:db8:1:2:3:4:5:6]:443"))
	req.Equal("unknown_ip", anonymizeIP("garbage"))
}

func TestCheckFields(t *testing.T) {
	req := require.New(t)

	req.Len(checkFields("Info", []any{"key", "value"}), 2)
	req.Nil(checkFields("Info", []any{"dangling"}))
}
