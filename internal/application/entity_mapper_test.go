package application

import (
	"testing"

	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kmsg"
)

func TestToPartition(t *testing.T) {
	tests := []struct {
		name       string
		info       domain.PartitionInfo
		wantLeader int32 // -1 for none
		wantInSync []bool
	}{
		{
			name:       "leader and full isr",
			info:       domain.PartitionInfo{Partition: 0, Leader: ptrNode(2), Replicas: nodes(2, 1), ISR: nodes(1, 2)},
			wantLeader: 2,
			wantInSync: []bool{true, true},
		},
		{
			name:       "lagging follower",
			info:       domain.PartitionInfo{Partition: 3, Leader: ptrNode(1), Replicas: nodes(1, 2, 3), ISR: nodes(1, 3)},
			wantLeader: 1,
			wantInSync: []bool{true, false, true},
		},
		{
			name:       "leaderless",
			info:       domain.PartitionInfo{Partition: 1, Replicas: nodes(1, 2), ISR: nil},
			wantLeader: -1,
			wantInSync: []bool{false, false},
		},
		{
			name:       "leader outside replicas",
			info:       domain.PartitionInfo{Partition: 0, Leader: ptrNode(9), Replicas: nodes(1), ISR: nodes(1)},
			wantLeader: -1,
			wantInSync: []bool{true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := toPartition("c1", "t", tt.info)
			require.Equal(t, "c1", p.ClusterID)
			require.Equal(t, "t", p.TopicName)
			require.Equal(t, tt.info.Partition, p.PartitionID)
			require.Len(t, p.Replicas, len(tt.info.Replicas))

			for i, r := range p.Replicas {
				require.Equal(t, tt.info.Replicas[i].ID, r.BrokerID)
				require.Equal(t, tt.info.Partition, r.PartitionID)
				require.Equal(t, tt.wantInSync[i], r.IsInSync)
			}

			leader, ok := p.Leader()
			if tt.wantLeader < 0 {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, tt.wantLeader, leader.BrokerID)
		})
	}
}

func TestToTopic(t *testing.T) {
	desc := domain.TopicDescription{
		Name:       "events",
		IsInternal: false,
		Partitions: []domain.PartitionInfo{
			{Partition: 0, Leader: ptrNode(1), Replicas: nodes(1, 2, 3), ISR: nodes(1, 2, 3)},
			{Partition: 1, Leader: ptrNode(2), Replicas: nodes(2, 3, 1), ISR: nodes(2, 3, 1)},
		},
		AuthorizedOperations: []kmsg.ACLOperation{kmsg.ACLOperationDescribe, kmsg.ACLOperationAlter},
	}

	topic := toTopic("c1", desc)
	require.Equal(t, "c1", topic.ClusterID)
	require.Equal(t, "events", topic.Name)
	require.Equal(t, int16(3), topic.ReplicationFactor)
	require.Equal(t, 2, topic.PartitionsCount())
	require.Equal(t, []domain.Operation{domain.OperationAlter, domain.OperationDescribe}, topic.AuthorizedOperations)
}

func TestToTopicNoPartitions(t *testing.T) {
	topic := toTopic("c1", domain.TopicDescription{Name: "empty", IsInternal: true})
	require.Zero(t, topic.ReplicationFactor)
	require.True(t, topic.IsInternal)
	require.NotNil(t, topic.Partitions)
	require.Empty(t, topic.Partitions)
	require.NotNil(t, topic.AuthorizedOperations)
}

func TestToOperations(t *testing.T) {
	require.Empty(t, toOperations(nil))
	require.Equal(t,
		[]domain.Operation{domain.OperationRead, domain.OperationUnknown},
		toOperations([]kmsg.ACLOperation{kmsg.ACLOperationRead, kmsg.ACLOperation(99), kmsg.ACLOperationRead}),
	)
}
