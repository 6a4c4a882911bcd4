package application

import (
	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/twmb/franz-go/pkg/kmsg"
)

func toTopic(clusterID string, desc domain.TopicDescription) domain.Topic {
	partitions := make([]domain.Partition, 0, len(desc.Partitions))
	for _, p := range desc.Partitions {
		partitions = append(partitions, toPartition(clusterID, desc.Name, p))
	}

	// Partition 0 speaks for the whole topic, even while a reassignment leaves the
	// partitions with different replica counts.
	var replicationFactor int16
	if len(desc.Partitions) > 0 {
		replicationFactor = int16(len(desc.Partitions[0].Replicas))
	}

	return domain.Topic{
		ClusterID:            clusterID,
		Name:                 desc.Name,
		Partitions:           partitions,
		ReplicationFactor:    replicationFactor,
		IsInternal:           desc.IsInternal,
		AuthorizedOperations: toOperations(desc.AuthorizedOperations),
	}
}

func toPartition(clusterID, topicName string, info domain.PartitionInfo) domain.Partition {
	inSync := make(map[int32]struct{}, len(info.ISR))
	for _, n := range info.ISR {
		inSync[n.ID] = struct{}{}
	}

	replicas := make([]domain.PartitionReplica, 0, len(info.Replicas))
	for _, n := range info.Replicas {
		_, isr := inSync[n.ID]
		replicas = append(replicas, domain.PartitionReplica{
			ClusterID:   clusterID,
			TopicName:   topicName,
			PartitionID: info.Partition,
			BrokerID:    n.ID,
			IsLeader:    info.Leader != nil && info.Leader.ID == n.ID,
			IsInSync:    isr,
		})
	}

	return domain.Partition{
		ClusterID:   clusterID,
		TopicName:   topicName,
		PartitionID: info.Partition,
		Replicas:    replicas,
	}
}

func toOperations(ops []kmsg.ACLOperation) []domain.Operation {
	out := make([]domain.Operation, 0, len(ops))
	seen := make(map[domain.Operation]struct{}, len(ops))
	for _, op := range ops {
		o := domain.OperationFromACL(op)
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	domain.SortOperations(out)
	return out
}
