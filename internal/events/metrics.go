package events

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"siport/internal/types"
)

// metricNamespace is the CloudWatch namespace for portal core metrics.
const metricNamespace = "Siport/AccessCore"

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchActionMetrics implements types.ActionMetrics by emitting metrics
// to AWS CloudWatch.
//
// Metrics emitted:
//   - ActionAllowed: Dims {Kind, Role, Tier} -- on every successful gated action
//   - ActionDenied:  Dims {Kind, Role, Tier, Reason} -- on every denial
//
// Emission is fire-and-forget: a metrics failure is logged and never
// propagated into the action path.
type CloudWatchActionMetrics struct {
	client CloudWatchClient
	clock  types.Clock
	logger *slog.Logger
}

var _ types.ActionMetrics = (*CloudWatchActionMetrics)(nil)

// NewCloudWatchActionMetrics creates a metrics collector publishing to the
// portal core namespace.
func NewCloudWatchActionMetrics(client CloudWatchClient, clock types.Clock, logger *slog.Logger) *CloudWatchActionMetrics {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchActionMetrics{client: client, clock: clock, logger: logger}
}

// RecordAllowed emits an ActionAllowed data point.
func (m *CloudWatchActionMetrics) RecordAllowed(ctx context.Context, kind types.ActionKind, role types.Role, tier types.Tier) {
	m.put(ctx, "ActionAllowed", baseDims(kind, role, tier))
}

// RecordDenied emits an ActionDenied data point with the denial reason.
func (m *CloudWatchActionMetrics) RecordDenied(ctx context.Context, kind types.ActionKind, role types.Role, tier types.Tier, code types.ErrorCode) {
	dims := append(baseDims(kind, role, tier), cwtypes.Dimension{
		Name:  aws.String("Reason"),
		Value: aws.String(string(code)),
	})
	m.put(ctx, "ActionDenied", dims)
}

func baseDims(kind types.ActionKind, role types.Role, tier types.Tier) []cwtypes.Dimension {
	t := string(tier)
	if t == "" {
		t = "none"
	}
	return []cwtypes.Dimension{
		{Name: aws.String("Kind"), Value: aws.String(string(kind))},
		{Name: aws.String("Role"), Value: aws.String(string(role))},
		{Name: aws.String("Tier"), Value: aws.String(t)},
	}
}

func (m *CloudWatchActionMetrics) put(ctx context.Context, name string, dims []cwtypes.Dimension) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(metricNamespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(name),
				Dimensions: dims,
				Timestamp:  aws.Time(m.clock.Now()),
				Unit:       cwtypes.StandardUnitCount,
				Value:      aws.Float64(1),
			},
		},
	})
	if err != nil {
		m.logger.Warn("metric emission failed", "metric", name, "error", err)
	}
}

// NopMetrics is the no-op metrics collector used when CloudWatch is not
// configured (local development).
type NopMetrics struct{}

var _ types.ActionMetrics = NopMetrics{}

func (NopMetrics) RecordAllowed(context.Context, types.ActionKind, types.Role, types.Tier) {}
func (NopMetrics) RecordDenied(context.Context, types.ActionKind, types.Role, types.Tier, types.ErrorCode) {
}
