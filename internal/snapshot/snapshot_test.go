package snapshot

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/veldtlabs/websnap/internal/runtime"
	"github.com/veldtlabs/websnap/internal/telemetry/metric"
)

type scriptedExecutor struct {
	values map[string]runtime.Value
}

func (e scriptedExecutor) RunScript(source string) (runtime.Value, error) {
	v, ok := e.values[source]
	if !ok {
		return runtime.Value{}, fmt.Errorf("unresolved binding %q", source)
	}
	return v, nil
}

func (e scriptedExecutor) CompileFunction(*runtime.Function) error {
	return nil
}

func TestCodecRoundTrip(t *testing.T) {
	heap := runtime.NewHeap()
	exec := scriptedExecutor{values: map[string]runtime.Value{
		"answer": runtime.Int(42),
	}}
	metrics := metric.NewRegistry()
	codec := NewCodec(heap, exec, WithMetrics(metrics))

	buf, err := codec.Encode([]string{"answer"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	ns := runtime.NewNamespace()
	outCodec := NewCodec(runtime.NewHeap(), runtime.NopExecutor{}, WithMetrics(metrics))
	if err := outCodec.Decode(buf, ns); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	v, ok := ns.Get("answer")
	if !ok || v.IntVal != 42 {
		t.Fatalf("answer = %+v, want 42", v)
	}
	if got := testutil.ToFloat64(metrics.EncodesTotal.WithLabelValues(metric.OutcomeOK)); got != 1 {
		t.Fatalf("encode counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.DecodesTotal.WithLabelValues(metric.OutcomeOK)); got != 1 {
		t.Fatalf("decode counter = %v, want 1", got)
	}
}

func TestCodecIsReusable(t *testing.T) {
	heap := runtime.NewHeap()
	exec := scriptedExecutor{values: map[string]runtime.Value{"n": runtime.Int(1)}}
	codec := NewCodec(heap, exec)

	for i := 0; i < 3; i++ {
		if _, err := codec.Encode([]string{"n"}); err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
	}
}

func TestInspect(t *testing.T) {
	heap := runtime.NewHeap()
	exec := scriptedExecutor{values: map[string]runtime.Value{
		"count": runtime.Int(7),
		"label": runtime.Str(heap.NewString("hi")),
	}}
	buf, err := NewCodec(heap, exec).Encode([]string{"count", "label"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	summary, err := Inspect(buf)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if summary.Bytes != len(buf) {
		t.Fatalf("Bytes = %d, want %d", summary.Bytes, len(buf))
	}
	kinds := map[string]string{}
	for _, exp := range summary.Exports {
		kinds[exp.Name] = exp.Kind
	}
	if kinds["count"] != "integer" || kinds["label"] != "string" {
		t.Fatalf("exports = %v", kinds)
	}
	if summary.Tables.Exports != 2 || summary.Tables.Strings != 3 {
		t.Fatalf("tables = %+v, want 2 exports and 3 strings", summary.Tables)
	}
}

func TestCodecReportsErrors(t *testing.T) {
	metrics := metric.NewRegistry()
	codec := NewCodec(runtime.NewHeap(), runtime.NopExecutor{}, WithMetrics(metrics))

	if err := codec.Decode([]byte("not a snapshot"), runtime.NewNamespace()); err == nil {
		t.Fatal("decode of garbage succeeded")
	}
	if got := testutil.ToFloat64(metrics.DecodesTotal.WithLabelValues(metric.OutcomeError)); got != 1 {
		t.Fatalf("decode error counter = %v, want 1", got)
	}
}
