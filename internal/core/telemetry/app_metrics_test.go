package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAppMetrics_RecordRequest(t *testing.T) {
	RegisterTestingT(t)
	metrics := NewAppMetrics(prometheus.NewRegistry())

	metrics.RecordRequest(context.Background(), "GET", "/api/users", 200, 10*time.Millisecond)
	metrics.RecordRequest(context.Background(), "GET", "/api/users", 200, 10*time.Millisecond)

	Expect(testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/api/users", "200"))).To(Equal(2.0))
}

func TestAppMetrics_RecordUserOperation(t *testing.T) {
	RegisterTestingT(t)
	metrics := NewAppMetrics(prometheus.NewRegistry())

	metrics.RecordUserOperation(context.Background(), "create", time.Millisecond, nil)
	metrics.RecordUserOperation(context.Background(), "create", time.Millisecond, errors.New("boom"))

	Expect(testutil.ToFloat64(metrics.userOperations.WithLabelValues("create", "success"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.userOperations.WithLabelValues("create", "error"))).To(Equal(1.0))
}

func TestOTELProbe_RecordServiceOperation_FeedsMetrics(t *testing.T) {
	RegisterTestingT(t)
	metrics := NewAppMetrics(prometheus.NewRegistry())
	probe := NewOTELProbe(nil, metrics)

	ctx, span := probe.StartServiceSpan(context.Background(), "user", "delete", nil)
	probe.RecordServiceOperation(ctx, "user", "delete", time.Millisecond, nil)
	span.End()

	Expect(testutil.ToFloat64(metrics.userOperations.WithLabelValues("delete", "success"))).To(Equal(1.0))
}

func TestNoOpProbe(t *testing.T) {
	RegisterTestingT(t)
	probe := NewNoOpProbe()

	ctx, span := probe.StartServiceSpan(context.Background(), "user", "list", nil)

	Expect(ctx).ToNot(BeNil())
	Expect(span).ToNot(BeNil())

	probe.RecordServiceOperation(ctx, "user", "list", time.Millisecond, nil)
	probe.RecordError(ctx, "list", errors.New("ignored"), nil)
}
