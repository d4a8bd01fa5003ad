package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerCursorRoundTrip(t *testing.T) {

	original := CustomerCursor{
		UpdatedAt:  time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC),
		CustomerId: "0d4f2f9e-1f3c-4bfa-9a5d-1c9a2f1e6b77",
	}

	decoded, err := DecodeCustomerCursor(EncodeCustomerCursor(original))
	require.NoError(t, err)
	assert.True(t, original.UpdatedAt.Equal(decoded.UpdatedAt))
	assert.Equal(t, original.CustomerId, decoded.CustomerId)
}

func TestDecodeCustomerCursorEmpty(t *testing.T) {

	decoded, err := DecodeCustomerCursor("")
	assert.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeCustomerCursorRejectsGarbage(t *testing.T) {

	_, err := DecodeCustomerCursor("not-base64!!!")
	assert.Error(t, err)

	// Valid base64, wrong payload.
	_, err = DecodeCustomerCursor("aGVsbG8")
	assert.Error(t, err)
}
