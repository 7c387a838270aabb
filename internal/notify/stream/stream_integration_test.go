//go:build integration

package stream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	lifecycle "vcc/internal/lifecycle/models"
	"vcc/pkg/testutil/containers"
)

func TestPublishToBroker(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	const topic = "vcc.application-transitions"

	client, err := NewClient([]string{rp.Broker}, topic)
	require.NoError(t, err)
	defer client.Close()

	e := transition()
	New(client, topic).Publish(context.Background(), e)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, client.Flush(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var got lifecycle.TransitionEvent
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, e.ProfileID, got.ProfileID)
	require.Equal(t, e.NewStatus, got.NewStatus)
}
