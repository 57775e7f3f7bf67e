package core

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"renewradar/internal/types"
)

// RunMetrics receives delivery and run telemetry. Emission is best-effort;
// implementations must never fail the dispatch path.
type RunMetrics interface {
	DeliveryAttempt(ctx context.Context, channel types.ChannelType, result string)
	SendLatency(ctx context.Context, channel types.ChannelType, d time.Duration)
	RunCompleted(ctx context.Context, res *RunResult, d time.Duration)
}

// Delivery attempt results reported to RunMetrics.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultDuplicate = "duplicate"
)

// NoopMetrics discards all telemetry. Default for local runs and tests.
type NoopMetrics struct{}

func (NoopMetrics) DeliveryAttempt(ctx context.Context, channel types.ChannelType, result string) {}
func (NoopMetrics) SendLatency(ctx context.Context, channel types.ChannelType, d time.Duration)   {}
func (NoopMetrics) RunCompleted(ctx context.Context, res *RunResult, d time.Duration)             {}

// CloudWatchAPI is the slice of the CloudWatch client the metrics emitter
// uses, extracted for mocking.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics emits dispatch telemetry to CloudWatch under a single
// namespace. Publish failures are logged and swallowed.
type CloudWatchMetrics struct {
	client    CloudWatchAPI
	namespace string
	logger    types.Logger
}

var _ RunMetrics = (*CloudWatchMetrics)(nil)

// NewCloudWatchMetrics creates a CloudWatch-backed RunMetrics.
func NewCloudWatchMetrics(client CloudWatchAPI, namespace string, logger types.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &CloudWatchMetrics{client: client, namespace: namespace, logger: logger}
}

func (m *CloudWatchMetrics) put(ctx context.Context, data ...cwtypes.MetricDatum) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("failed to publish metrics", "error", err)
	}
}

// DeliveryAttempt counts one send attempt by channel and result.
func (m *CloudWatchMetrics) DeliveryAttempt(ctx context.Context, channel types.ChannelType, result string) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String("DeliveryAttempt"),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String("Channel"), Value: aws.String(string(channel))},
			{Name: aws.String("Result"), Value: aws.String(result)},
		},
	})
}

// SendLatency records the wall time of one provider send.
func (m *CloudWatchMetrics) SendLatency(ctx context.Context, channel types.ChannelType, d time.Duration) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String("SendLatency"),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String("Channel"), Value: aws.String(string(channel))},
		},
	})
}

// RunCompleted records run-level duration and counters.
func (m *CloudWatchMetrics) RunCompleted(ctx context.Context, res *RunResult, d time.Duration) {
	partial := 0.0
	if res.Partial {
		partial = 1.0
	}
	m.put(ctx,
		cwtypes.MetricDatum{
			MetricName: aws.String("RunDuration"),
			Value:      aws.Float64(float64(d.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String("RunProcessed"),
			Value:      aws.Float64(float64(res.Processed)),
			Unit:       cwtypes.StandardUnitCount,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String("RunFailed"),
			Value:      aws.Float64(float64(res.Failed)),
			Unit:       cwtypes.StandardUnitCount,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String("RunPartial"),
			Value:      aws.Float64(partial),
			Unit:       cwtypes.StandardUnitCount,
		},
	)
}
