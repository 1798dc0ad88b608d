package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayitare/momoledger/internal/plugins"
	"github.com/kayitare/momoledger/pkg/api"
)

type readerFunc func(ctx context.Context, out chan<- *api.TransactionRecord) error

func (f readerFunc) Read(ctx context.Context, out chan<- *api.TransactionRecord) error {
	return f(ctx, out)
}

type writerFunc func(ctx context.Context, in <-chan *api.TransactionRecord) error

func (f writerFunc) Write(ctx context.Context, in <-chan *api.TransactionRecord) error {
	return f(ctx, in)
}

type stubReaderPlugin struct{ reader api.Reader }

func (p *stubReaderPlugin) Name() string               { return "stubreader" }
func (p *stubReaderPlugin) Description() string        { return "stub reader" }
func (p *stubReaderPlugin) ConfigSchema() map[string]any { return map[string]any{} }
func (p *stubReaderPlugin) NewReader(_ json.RawMessage, _ *slog.Logger) (api.Reader, error) {
	return p.reader, nil
}

type stubWriterPlugin struct{ writer api.Writer }

func (p *stubWriterPlugin) Name() string               { return "stubwriter" }
func (p *stubWriterPlugin) Description() string        { return "stub writer" }
func (p *stubWriterPlugin) ConfigSchema() map[string]any { return map[string]any{} }
func (p *stubWriterPlugin) NewWriter(_ json.RawMessage, _ *slog.Logger) (api.Writer, error) {
	return p.writer, nil
}

func newTestRegistry(t *testing.T, reader api.Reader, writer api.Writer) *plugins.Registry {
	t.Helper()
	registry := plugins.NewRegistry()
	require.NoError(t, registry.RegisterReader(&stubReaderPlugin{reader: reader}))
	require.NoError(t, registry.RegisterWriter(&stubWriterPlugin{writer: writer}))
	return registry
}

func TestRun_StreamsReaderToWriter(t *testing.T) {
	reader := readerFunc(func(ctx context.Context, out chan<- *api.TransactionRecord) error {
		defer close(out)
		for i := 0; i < 3; i++ {
			out <- &api.TransactionRecord{Category: "Payments", Description: fmt.Sprintf("payment %d", i)}
		}
		return nil
	})

	var got []*api.TransactionRecord
	writer := writerFunc(func(ctx context.Context, in <-chan *api.TransactionRecord) error {
		for record := range in {
			got = append(got, record)
		}
		return nil
	})

	runner := New(newTestRegistry(t, reader, writer), slog.Default())
	err := runner.Run(context.Background(), "stubreader", nil, "stubwriter", nil)

	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRun_WriterFailureUnblocksReader(t *testing.T) {
	// Sends far more records than the channel buffers, so the reader is
	// blocked mid-send when the writer gives up.
	reader := readerFunc(func(ctx context.Context, out chan<- *api.TransactionRecord) error {
		defer close(out)
		for i := 0; i < 1000; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- &api.TransactionRecord{Category: "Payments", Description: "payment"}:
			}
		}
		return nil
	})

	writer := writerFunc(func(ctx context.Context, in <-chan *api.TransactionRecord) error {
		<-in
		return errors.New("insert failed")
	})

	runner := New(newTestRegistry(t, reader, writer), slog.Default())

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), "stubreader", nil, "stubwriter", nil)
	}()

	select {
	case err := <-done:
		require.ErrorContains(t, err, "insert failed")
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after the writer failed")
	}
}

func TestRun_UnknownPlugins(t *testing.T) {
	runner := New(plugins.NewRegistry(), slog.Default())

	err := runner.Run(context.Background(), "nope", nil, "also-nope", nil)
	require.ErrorContains(t, err, "not found")
}
