package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/OliveiraNt/topic-scout/internal/testutil"
	"github.com/OliveiraNt/topic-scout/internal/utils"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"
)

func newTestManager(t *testing.T, brokers ...int32) (*TopicManager, *testutil.FakeKafkaClient, *testutil.FakeClusterRepository) {
	t.Helper()
	utils.InitLogger()
	fake := testutil.NewFakeKafkaClient(brokers...)
	repo := testutil.NewFakeClusterRepository().WithCluster("c1", fake)
	return NewClusterService(repo).TopicManager("c1"), fake, repo
}

func i32(v int32) *int32 { return &v }
func i16(v int16) *int16 { return &v }
func str(v string) *string {
	return &v
}

func uniform(name string, partitions int32, rf int16) domain.CreateTopicRequest {
	return domain.CreateTopicRequest{Name: name, PartitionsCount: i32(partitions), ReplicationFactor: i16(rf)}
}

func TestTopicManager_ListTopics(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(t, 1, 2, 3)
	ctx := context.Background()

	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("orders", 3, 2)))
	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("payments", 1, 1)))

	topics, err := m.ListTopics(ctx, "c1", false)
	require.NoError(t, err)
	require.Len(t, topics, 2)

	names := map[string]int{}
	for _, topic := range topics {
		names[topic.Name]++
		require.Equal(t, "c1", topic.ClusterID)
		for i, p := range topic.Partitions {
			require.Equal(t, int32(i), p.PartitionID)
		}
	}
	require.Equal(t, map[string]int{"orders": 1, "payments": 1}, names)
}

func TestTopicManager_ListTopicsSkipsInternal(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)
	fake.PutDescription(domain.TopicDescription{Name: "__consumer_offsets", IsInternal: true})

	topics, err := m.ListTopics(context.Background(), "c1", false)
	require.NoError(t, err)
	require.Empty(t, topics)
	require.Zero(t, fake.DescribeCalls)
}

func TestTopicManager_ListTopicsEmpty(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)

	// no listing at all is reported as an empty result
	fake.NilListing = true
	topics, err := m.ListTopics(context.Background(), "c1", false)
	require.NoError(t, err)
	require.NotNil(t, topics)
	require.Empty(t, topics)
	require.Zero(t, fake.DescribeCalls)
}

func TestTopicManager_ListTopicsSingleDescribe(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, m.CreateTopic(ctx, "c1", uniform(name, 1, 1)))
	}

	_, err := m.ListTopics(ctx, "c1", false)
	require.NoError(t, err)
	require.Equal(t, 1, fake.DescribeCalls)
	require.ElementsMatch(t, []string{"a", "b", "c"}, fake.LastDescribe)
}

func TestTopicManager_ClusterNotFound(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.ListTopics(ctx, "unknown", false)
	require.ErrorIs(t, err, ErrClusterNotFound)

	_, _, err = m.GetTopic(ctx, "unknown", "t", false)
	require.ErrorIs(t, err, ErrClusterNotFound)

	err = m.CreateTopic(ctx, "unknown", uniform("t", 1, 1))
	require.ErrorIs(t, err, ErrClusterNotFound)

	err = m.DeleteTopic(ctx, "unknown", "t")
	require.ErrorIs(t, err, ErrClusterNotFound)

	// the gateway is never reached for an unknown cluster
	require.Nil(t, fake.LastCreate)
	require.Zero(t, fake.DescribeCalls)
}

func TestTopicManager_ClusterLookupFailure(t *testing.T) {
	t.Parallel()
	utils.InitLogger()
	boom := errors.New("lookup down")
	m := NewTopicManager(failingLookup{err: boom}, testutil.NewFakeKafkaClient())

	_, err := m.ListTopics(context.Background(), "c1", false)
	require.ErrorIs(t, err, boom)

	_, err = m.ListLocalTopics(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestTopicManager_LocalCluster(t *testing.T) {
	t.Parallel()
	m, _, repo := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("local-topic", 2, 1)))

	topics, err := m.ListLocalTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	require.Empty(t, topics[0].AuthorizedOperations)

	topic, ok, err := m.GetLocalTopic(ctx, "local-topic")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "c1", topic.ClusterID)
	require.Equal(t, 2, topic.PartitionsCount())

	repo.Local = "gone"
	_, err = m.ListLocalTopics(ctx)
	require.ErrorIs(t, err, ErrClusterNotFound)
	_, _, err = m.GetLocalTopic(ctx, "local-topic")
	require.ErrorIs(t, err, ErrClusterNotFound)
}

func TestTopicManager_GetTopicCardinality(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	// zero matches
	_, ok, err := m.GetTopic(ctx, "c1", "missing", false)
	require.NoError(t, err)
	require.False(t, ok)

	// exactly one match
	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("t", 1, 1)))
	topic, ok, err := m.GetTopic(ctx, "c1", "t", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "t", topic.Name)

	// more than one match
	fake.Duplicates["t"] = true
	_, ok, err = m.GetTopic(ctx, "c1", "t", false)
	require.ErrorIs(t, err, ErrInvariantViolation)
	require.False(t, ok)
}

func TestTopicManager_GetTopicAuthorizedOperations(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("t", 1, 1)))
	fake.AuthorizedOperations = []kmsg.ACLOperation{kmsg.ACLOperationWrite, kmsg.ACLOperationRead, kmsg.ACLOperationRead}

	topic, ok, err := m.GetTopic(ctx, "c1", "t", true)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []domain.Operation{domain.OperationRead, domain.OperationWrite}, topic.AuthorizedOperations)

	topic, ok, err = m.GetTopic(ctx, "c1", "t", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, topic.AuthorizedOperations)
	require.Empty(t, topic.AuthorizedOperations)
}

func TestTopicManager_GetTopicUpstreamFailure(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)
	fake.Err = kerr.TopicAuthorizationFailed

	_, _, err := m.GetTopic(context.Background(), "c1", "t", false)
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	require.Equal(t, "describe topics", upErr.Op)
	require.ErrorIs(t, err, kerr.TopicAuthorizationFailed)
}

func TestTopicManager_CreateUniform(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t, 1, 2, 3)
	ctx := context.Background()

	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("orders", 3, 2)))
	require.False(t, fake.LastValidate)
	require.Equal(t, int32(3), fake.LastCreate[0].NumPartitions)
	require.Equal(t, int16(2), fake.LastCreate[0].ReplicationFactor)

	topic, ok, err := m.GetTopic(ctx, "c1", "orders", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, topic.PartitionsCount())
	require.Equal(t, int16(2), topic.ReplicationFactor)
	for _, p := range topic.Partitions {
		require.Len(t, p.Replicas, 2)
	}
}

func TestTopicManager_CreateExplicitAssignment(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t, 1, 2, 3)
	ctx := context.Background()

	assignments := map[int32][]int32{0: {2, 3}, 1: {3, 1}}
	req := domain.CreateTopicRequest{
		Name:                "placed",
		PartitionsCount:     i32(10),
		ReplicationFactor:   i16(3),
		ReplicasAssignments: assignments,
	}
	require.NoError(t, m.CreateTopic(ctx, "c1", req))
	require.True(t, fake.LastCreate[0].HasExplicitAssignment())
	require.Equal(t, int32(-1), fake.LastCreate[0].NumPartitions)
	require.Equal(t, int16(-1), fake.LastCreate[0].ReplicationFactor)

	topic, ok, err := m.GetTopic(ctx, "c1", "placed", false)
	require.NoError(t, err)
	require.True(t, ok)
	got := map[int32][]int32{}
	for _, p := range topic.Partitions {
		got[p.PartitionID] = p.BrokerIDs()
	}
	require.Equal(t, assignments, got)
}

func TestTopicManager_CreateKeepsNilConfigs(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)

	req := uniform("t", 1, 1)
	req.Configs = map[string]*string{"cleanup.policy": str("compact"), "retention.ms": nil}
	require.NoError(t, m.CreateTopic(context.Background(), "c1", req))

	configs := fake.LastCreate[0].Configs
	require.Len(t, configs, 2)
	require.Equal(t, "compact", *configs["cleanup.policy"])
	v, ok := configs["retention.ms"]
	require.True(t, ok)
	require.Nil(t, v)
}

func TestTopicManager_CreateRoundTripSingleBroker(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(t, 1)
	ctx := context.Background()

	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("rt", 1, 1)))
	topic, ok, err := m.GetTopic(ctx, "c1", "rt", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, topic.Partitions, 1)
	require.Len(t, topic.Partitions[0].Replicas, 1)

	replica := topic.Partitions[0].Replicas[0]
	require.Equal(t, int32(1), replica.BrokerID)
	require.True(t, replica.IsLeader)
	require.True(t, replica.IsInSync)
	require.Equal(t, "rt", replica.TopicName)
	require.Equal(t, "c1", replica.ClusterID)
}

func TestTopicManager_CreateValidateOnly(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	req := uniform("dry", 1, 1)
	req.ValidateOnly = true
	require.NoError(t, m.CreateTopic(ctx, "c1", req))
	require.True(t, fake.LastValidate)

	_, ok, err := m.GetTopic(ctx, "c1", "dry", false)
	require.NoError(t, err)
	require.False(t, ok)

	// validation still reports what a real create would reject
	req.ReplicationFactor = i16(5)
	err = m.CreateTopic(ctx, "c1", req)
	require.ErrorIs(t, err, kerr.InvalidReplicationFactor)
}

func TestTopicManager_CreateValidation(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.CreateTopicRequest
		want error
	}{
		{"empty name", uniform("", 1, 1), ErrInvalidTopicName},
		{"blank name", uniform("  ", 1, 1), ErrInvalidTopicName},
		{"missing partitions", domain.CreateTopicRequest{Name: "t", ReplicationFactor: i16(1)}, ErrInvalidPartitionCount},
		{"zero partitions", uniform("t", 0, 1), ErrInvalidPartitionCount},
		{"missing replication", domain.CreateTopicRequest{Name: "t", PartitionsCount: i32(1)}, ErrInvalidReplicationFactor},
		{"negative replication", uniform("t", 1, -1), ErrInvalidReplicationFactor},
	}
	for _, tt := range tests {
		err := m.CreateTopic(ctx, "c1", tt.req)
		require.ErrorIs(t, err, tt.want, tt.name)
	}
	require.Nil(t, fake.LastCreate)
}

func TestTopicManager_CreateAlreadyExists(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("t", 1, 1)))
	err := m.CreateTopic(ctx, "c1", uniform("t", 1, 1))
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	require.Equal(t, "create topic", upErr.Op)
	require.ErrorIs(t, err, kerr.TopicAlreadyExists)
}

func TestTopicManager_DeleteTopic(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("t", 1, 1)))
	require.NoError(t, m.DeleteTopic(ctx, "c1", "t"))

	_, ok, err := m.GetTopic(ctx, "c1", "t", false)
	require.NoError(t, err)
	require.False(t, ok)

	err = m.DeleteTopic(ctx, "c1", "t")
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	require.ErrorIs(t, err, kerr.UnknownTopicOrPartition)

	require.ErrorIs(t, m.DeleteTopic(ctx, "c1", ""), ErrInvalidTopicName)
}

func TestTopicManager_UpdatePartitionsCount(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(t, 1, 2, 3)
	ctx := context.Background()

	require.NoError(t, m.CreateTopic(ctx, "c1", uniform("t", 2, 2)))
	before, _, err := m.GetTopic(ctx, "c1", "t", false)
	require.NoError(t, err)

	// not an increase
	for _, n := range []int32{1, 2} {
		err := m.UpdateTopicPartitionsCount(ctx, "t", n)
		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		require.ErrorIs(t, err, kerr.InvalidPartitions)
	}

	require.NoError(t, m.UpdateTopicPartitionsCount(ctx, "t", 5))
	after, ok, err := m.GetTopic(ctx, "c1", "t", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, after.PartitionsCount())
	require.Equal(t, before.Partitions, after.Partitions[:2])

	require.ErrorIs(t, m.UpdateTopicPartitionsCount(ctx, "", 3), ErrInvalidTopicName)
}

func TestTopicManager_UpdatePartitionsCountOfflineCluster(t *testing.T) {
	t.Parallel()
	m, _, repo := newTestManager(t)
	delete(repo.Clients, "c1")

	err := m.UpdateTopicPartitionsCount(context.Background(), "t", 3)
	require.ErrorIs(t, err, ErrClusterOffline)
}

func TestTopicManager_HeterogeneousReplication(t *testing.T) {
	t.Parallel()
	m, fake, _ := newTestManager(t, 1, 2, 3)

	// mid-reassignment: partition 1 carries an extra replica
	fake.PutDescription(domain.TopicDescription{
		Name: "moving",
		Partitions: []domain.PartitionInfo{
			{Partition: 0, Leader: ptrNode(1), Replicas: nodes(1, 2), ISR: nodes(1, 2)},
			{Partition: 1, Leader: ptrNode(2), Replicas: nodes(2, 3, 1), ISR: nodes(2, 3)},
		},
	})

	topic, ok, err := m.GetTopic(context.Background(), "c1", "moving", false)
	require.NoError(t, err)
	require.True(t, ok)
	// the replication factor is read from partition 0 only
	require.Equal(t, int16(2), topic.ReplicationFactor)
	require.Len(t, topic.Partitions[1].Replicas, 3)
}

func TestTopicManager_ConcurrentCalls(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager(t, 1, 2)
	ctx := context.Background()

	names := []string{"a", "b", "c", "d", "e", "f"}
	var wg sync.WaitGroup
	errs := make(chan error, len(names))
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			errs <- m.CreateTopic(ctx, "c1", uniform(name, 2, 2))
		}(name)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	topics, err := m.ListTopics(ctx, "c1", false)
	require.NoError(t, err)
	require.Len(t, topics, len(names))
}

type failingLookup struct {
	err error
}

func (l failingLookup) GetCluster(context.Context, string) (*domain.Cluster, error) {
	return nil, l.err
}

func (l failingLookup) GetLocalCluster(context.Context) (*domain.Cluster, error) {
	return nil, l.err
}

func nodes(ids ...int32) []domain.Node {
	out := make([]domain.Node, len(ids))
	for i, id := range ids {
		out[i] = testutil.Node(id)
	}
	return out
}

func ptrNode(id int32) *domain.Node {
	n := testutil.Node(id)
	return &n
}
