package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renewradar/internal/types"
)

type mockCloudWatchAPI struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatchAPI) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestCloudWatchMetrics_DeliveryAttempt(t *testing.T) {
	api := &mockCloudWatchAPI{}
	m := NewCloudWatchMetrics(api, "RenewRadar", nil)

	m.DeliveryAttempt(context.Background(), types.ChannelSMS, ResultSuccess)

	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	assert.Equal(t, "RenewRadar", aws.ToString(in.Namespace))
	require.Len(t, in.MetricData, 1)
	datum := in.MetricData[0]
	assert.Equal(t, "DeliveryAttempt", aws.ToString(datum.MetricName))
	assert.Equal(t, float64(1), aws.ToFloat64(datum.Value))

	dims := map[string]string{}
	for _, d := range datum.Dimensions {
		dims[aws.ToString(d.Name)] = aws.ToString(d.Value)
	}
	assert.Equal(t, "sms", dims["Channel"])
	assert.Equal(t, "success", dims["Result"])
}

func TestCloudWatchMetrics_RunCompleted(t *testing.T) {
	api := &mockCloudWatchAPI{}
	m := NewCloudWatchMetrics(api, "RenewRadar", nil)

	res := newRunResult(time.Now(), []int{7})
	res.Processed = 12
	res.Failed = 2
	res.Partial = true
	m.RunCompleted(context.Background(), res, 90*time.Second)

	require.Len(t, api.inputs, 1)
	names := map[string]float64{}
	for _, d := range api.inputs[0].MetricData {
		names[aws.ToString(d.MetricName)] = aws.ToFloat64(d.Value)
	}
	assert.Equal(t, float64(12), names["RunProcessed"])
	assert.Equal(t, float64(2), names["RunFailed"])
	assert.Equal(t, float64(1), names["RunPartial"])
	assert.Equal(t, float64(90000), names["RunDuration"])
}

func TestCloudWatchMetrics_PublishFailureIsSwallowed(t *testing.T) {
	api := &mockCloudWatchAPI{err: errors.New("throttled")}
	m := NewCloudWatchMetrics(api, "RenewRadar", nil)

	// Must not panic or propagate; dispatch never depends on telemetry.
	m.SendLatency(context.Background(), types.ChannelEmail, time.Second)
}
