package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductPayloadRoundTrip(t *testing.T) {
	payload := ProductPayload("PROD-AB12CD34")

	identity, err := DecodePayload(payload)
	require.NoError(t, err)
	assert.Equal(t, KindProduct, identity.Kind)
	assert.Equal(t, "PROD-AB12CD34", identity.Value)
}

func TestTicketPayloadRoundTrip(t *testing.T) {
	payload := TicketPayload(1042)

	identity, err := DecodePayload(payload)
	require.NoError(t, err)
	assert.Equal(t, KindTicket, identity.Kind)
	assert.Equal(t, "1042", identity.Value)
}

func TestDecodePayloadMalformed(t *testing.T) {
	cases := []string{
		"",
		"garbage",
		"product:",
		"ticket:",
		"ticket:not-a-number",
		"voucher:123",
	}

	for _, payload := range cases {
		_, err := DecodePayload(payload)
		assert.ErrorIs(t, err, ErrMalformedPayload, "payload %q", payload)
	}
}

func TestEncodePNGDeterministic(t *testing.T) {
	first, err := EncodePNG(TicketPayload(7))
	require.NoError(t, err)
	second, err := EncodePNG(TicketPayload(7))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestEncodeBase64(t *testing.T) {
	img, err := EncodeBase64(ProductPayload("X"))
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}
