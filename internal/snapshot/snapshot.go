// Package snapshot is the public face of the snapshot codec. It wires the
// single-use serializer and deserializer behind a reusable Codec that adds
// structured logging and metrics around every operation.
package snapshot

import (
	"time"

	"github.com/veldtlabs/websnap/internal/runtime"
	"github.com/veldtlabs/websnap/internal/snapshot/decode"
	"github.com/veldtlabs/websnap/internal/snapshot/encode"
	"github.com/veldtlabs/websnap/internal/telemetry/logger"
	"github.com/veldtlabs/websnap/internal/telemetry/metric"
)

// NewSerializer creates a single-use serializer over heap and exec.
func NewSerializer(heap *runtime.Heap, exec runtime.Executor) *encode.Serializer {
	return encode.NewSerializer(heap, exec)
}

// NewDeserializer creates a single-use deserializer over heap and exec.
func NewDeserializer(heap *runtime.Heap, exec runtime.Executor) *decode.Deserializer {
	return decode.NewDeserializer(heap, exec)
}

// Codec runs snapshot operations against one heap/executor pair. Unlike
// the underlying serializer and deserializer it is reusable: every call
// creates a fresh single-use instance.
type Codec struct {
	heap    *runtime.Heap
	exec    runtime.Executor
	log     logger.Logger
	metrics *metric.Registry
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the codec logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Codec) { c.log = l }
}

// WithMetrics sets the metrics registry the codec reports into.
func WithMetrics(m *metric.Registry) Option {
	return func(c *Codec) { c.metrics = m }
}

// NewCodec creates a codec over the given heap and executor.
func NewCodec(heap *runtime.Heap, exec runtime.Executor, opts ...Option) *Codec {
	c := &Codec{heap: heap, exec: exec, log: logger.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode captures the subgraph reachable from the named export bindings
// and returns the snapshot buffer.
func (c *Codec) Encode(exportNames []string) ([]byte, error) {
	start := time.Now()
	buf, err := encode.NewSerializer(c.heap, c.exec).TakeSnapshot(exportNames)
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.EncodesTotal.WithLabelValues(metric.OutcomeOf(err)).Inc()
		c.metrics.EncodeDuration.Observe(elapsed.Seconds())
		if err == nil {
			c.metrics.SnapshotBytes.Observe(float64(len(buf)))
		}
	}
	if err != nil {
		c.log.Error("snapshot encode failed", "error", err, "exports", len(exportNames))
		return nil, err
	}
	c.log.Debug("snapshot encoded",
		"exports", len(exportNames),
		"bytes", len(buf),
		"elapsed", elapsed,
	)
	return buf, nil
}

// Export describes one export binding found in a snapshot.
type Export struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Summary describes a snapshot buffer without retaining its contents.
type Summary struct {
	Bytes   int                `json:"bytes"`
	Tables  decode.TableCounts `json:"tables"`
	Exports []Export           `json:"exports"`
}

// Inspect decodes buf into a throwaway heap and reports its table counts
// and exports. Trailing executable statements are not run.
func Inspect(buf []byte) (*Summary, error) {
	ns := runtime.NewNamespace()
	d := decode.NewDeserializer(runtime.NewHeap(), runtime.NopExecutor{})
	if err := d.Deserialize(buf, ns); err != nil {
		return nil, err
	}

	summary := &Summary{Bytes: len(buf), Tables: d.TableCounts()}
	for _, name := range ns.Names() {
		v, _ := ns.Get(name)
		summary.Exports = append(summary.Exports, Export{Name: name, Kind: v.Kind.String()})
	}
	return summary, nil
}

// Decode reconstructs buf and installs its exports into ns.
func (c *Codec) Decode(buf []byte, ns *runtime.Namespace) error {
	start := time.Now()
	err := decode.NewDeserializer(c.heap, c.exec).Deserialize(buf, ns)
	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.DecodesTotal.WithLabelValues(metric.OutcomeOf(err)).Inc()
		c.metrics.DecodeDuration.Observe(elapsed.Seconds())
	}
	if err != nil {
		c.log.Error("snapshot decode failed", "error", err, "bytes", len(buf))
		return err
	}
	c.log.Debug("snapshot decoded",
		"bytes", len(buf),
		"exports", ns.Len(),
		"elapsed", elapsed,
	)
	return nil
}
