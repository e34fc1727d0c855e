package common

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressQRCode(t *testing.T) {
	qr, err := AddressQRCode("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")
	require.NoError(t, err)

	png, err := base64.StdEncoding.DecodeString(qr)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{in: "0x0aff", want: []byte{0x0a, 0xff}},
		{in: "0aff", want: []byte{0x0a, 0xff}},
		{in: " 0X0AFF ", want: []byte{0x0a, 0xff}},
		{in: "", wantErr: true},
		{in: "0x", wantErr: true},
		{in: "0xabc", wantErr: true},
		{in: "zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DecodeHex(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeHex(t *testing.T) {
	assert.Equal(t, "0x0aff", EncodeHex([]byte{0x0a, 0xff}))
}
