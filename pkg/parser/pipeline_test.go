package parser

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayitare/momoledger/pkg/api"
)

func testPipeline() *Pipeline {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProcess_DropsUntrackedPreservingOrder(t *testing.T) {
	messages := []api.RawMessage{
		{Body: "you have received 5000 rwf from john"},
		{Body: "network congestion notice"},
		{Body: "you have withdrawn 3000 rwf"},
	}

	records, stats := testPipeline().Process(messages)

	require.Len(t, records, 2)
	assert.Equal(t, CategoryIncoming, records[0].Category)
	assert.Equal(t, CategoryWithdrawals, records[1].Category)

	assert.Equal(t, Stats{Total: 3, Accepted: 2, Skipped: 1}, stats)
}

func TestProcess_EmptyBatch(t *testing.T) {
	records, stats := testPipeline().Process(nil)
	assert.Empty(t, records)
	assert.Equal(t, Stats{}, stats)
}

func TestProcess_EmptyBodiesAreSkipped(t *testing.T) {
	messages := []api.RawMessage{
		{Body: ""},
		{Body: "airtime purchase of 500 rwf"},
		{Body: ""},
	}

	records, stats := testPipeline().Process(messages)

	require.Len(t, records, 1)
	assert.Equal(t, CategoryAirtime, records[0].Category)
	assert.Equal(t, Stats{Total: 3, Accepted: 1, Skipped: 2}, stats)
}

func TestProcess_OutputNeverLongerThanInput(t *testing.T) {
	messages := []api.RawMessage{
		{Body: "payment of 100 rwf"},
		{Body: "payment of 200 rwf"},
		{Body: "nothing interesting"},
	}

	records, stats := testPipeline().Process(messages)
	assert.LessOrEqual(t, len(records), len(messages))
	assert.Equal(t, len(records), stats.Accepted)
}

// Re-invoking with the same input yields the same output; the pipeline keeps
// no state between runs.
func TestProcess_Idempotent(t *testing.T) {
	messages := []api.RawMessage{
		{Body: "you have received 5000 rwf from john on 2024-01-15 10:30:00"},
		{Body: "your payment of 1200 rwf to shop was successful"},
	}

	p := testPipeline()
	first, firstStats := p.Process(messages)
	second, secondStats := p.Process(messages)

	assert.Equal(t, first, second)
	assert.Equal(t, firstStats, secondStats)
}
