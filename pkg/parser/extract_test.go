package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_AmountAndTimestamp(t *testing.T) {
	fields, err := Extract("you have received 5000 rwf from john on 2024-01-15 10:30:00")
	require.NoError(t, err)

	require.NotNil(t, fields.Amount)
	assert.Equal(t, int64(5000), *fields.Amount)
	require.NotNil(t, fields.Timestamp)
	assert.Equal(t, "2024-01-15 10:30:00", *fields.Timestamp)
}

func TestExtract_AmountOnly(t *testing.T) {
	fields, err := Extract("your payment of 1200 rwf to shop was successful")
	require.NoError(t, err)

	require.NotNil(t, fields.Amount)
	assert.Equal(t, int64(1200), *fields.Amount)
	assert.Nil(t, fields.Timestamp)
}

func TestExtract_NothingToExtract(t *testing.T) {
	fields, err := Extract("network congestion notice")
	require.NoError(t, err)
	assert.Nil(t, fields.Amount)
	assert.Nil(t, fields.Timestamp)

	// Re-running on the same body is idempotent.
	again, err := Extract("network congestion notice")
	require.NoError(t, err)
	assert.Equal(t, fields, again)
}

// Only the first amount match counts: a balance figure following the
// transaction amount is ignored.
func TestExtract_FirstAmountWins(t *testing.T) {
	fields, err := Extract("payment of 1200 rwf completed. new balance: 56000 rwf")
	require.NoError(t, err)

	require.NotNil(t, fields.Amount)
	assert.Equal(t, int64(1200), *fields.Amount)
}

func TestExtract_FirstTimestampWins(t *testing.T) {
	fields, err := Extract("at 2024-01-15 10:30:00, settled 2024-01-16 09:00:00")
	require.NoError(t, err)

	require.NotNil(t, fields.Timestamp)
	assert.Equal(t, "2024-01-15 10:30:00", *fields.Timestamp)
}

// The timestamp pattern is shape-only: no calendar validation is performed, so
// an impossible date is still extracted. Known looseness, kept on purpose.
func TestExtract_LenientTimestamp(t *testing.T) {
	fields, err := Extract("charged on 2024-13-99 25:61:61")
	require.NoError(t, err)

	require.NotNil(t, fields.Timestamp)
	assert.Equal(t, "2024-13-99 25:61:61", *fields.Timestamp)
}

func TestExtract_WhitespaceBeforeCurrencyMarker(t *testing.T) {
	fields, err := Extract("deposit of 2500   rwf confirmed")
	require.NoError(t, err)

	require.NotNil(t, fields.Amount)
	assert.Equal(t, int64(2500), *fields.Amount)
}

func TestParseAmount_EmptyDigitSpan(t *testing.T) {
	_, err := parseAmount("rwf")
	assert.ErrorIs(t, err, ErrMalformedAmount)
}

func TestParseAmount_Overflow(t *testing.T) {
	_, err := parseAmount("99999999999999999999 rwf")
	assert.ErrorIs(t, err, ErrMalformedAmount)
}
