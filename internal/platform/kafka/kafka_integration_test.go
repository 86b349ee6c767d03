//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"trustscore/internal/events"
	"trustscore/internal/platform/config"
	"trustscore/internal/platform/kafka"
	"trustscore/pkg/domain"
	"trustscore/pkg/testutil/containers"
)

func TestKafkaSinkProducesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rp := containers.GetManager().GetRedpanda(t)
	const topic = "trustscore.events.test"

	client, err := kafka.New(config.KafkaConfig{Brokers: []string{rp.Broker}, Topic: topic})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, kafka.EnsureTopic(ctx, client, topic))
	require.NoError(t, kafka.EnsureTopic(ctx, client, topic), "second call is a no-op")

	sink := events.NewKafkaSink(client, topic)
	e := events.New(ctx, events.TypeMinScoreUpdated, domain.Identity{5}, events.MinScoreUpdated{OldMinScore: 1, NewMinScore: 2})
	require.NoError(t, sink.Write(ctx, []events.Event{e}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	pollCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(pollCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, domain.Identity{5}.String(), string(records[0].Key))
	assert.Contains(t, string(records[0].Value), `"type":"min_score_updated"`)
}
