package domain

// Topic is a named, partitioned log within a cluster. (ClusterID, Name) identifies it.
type Topic struct {
	ClusterID         string      `json:"cluster_id"`
	Name              string      `json:"topic_name"`
	Partitions        []Partition `json:"partitions"`
	ReplicationFactor int16       `json:"replication_factor"`
	IsInternal        bool        `json:"is_internal"`
	// AuthorizedOperations is empty unless it was requested and the cluster reported it.
	AuthorizedOperations []Operation `json:"authorized_operations"`
}

// PartitionsCount returns the number of partitions of the topic.
func (t Topic) PartitionsCount() int {
	return len(t.Partitions)
}

// Partition is one shard of a topic. Replicas keep the cluster's preference order.
type Partition struct {
	ClusterID   string             `json:"cluster_id"`
	TopicName   string             `json:"topic_name"`
	PartitionID int32              `json:"partition_id"`
	Replicas    []PartitionReplica `json:"replicas"`
}

// Leader returns the leading replica, if the partition currently has one.
func (p Partition) Leader() (PartitionReplica, bool) {
	for _, r := range p.Replicas {
		if r.IsLeader {
			return r, true
		}
	}
	return PartitionReplica{}, false
}

// BrokerIDs returns the replica broker ids in preference order.
func (p Partition) BrokerIDs() []int32 {
	ids := make([]int32, len(p.Replicas))
	for i, r := range p.Replicas {
		ids[i] = r.BrokerID
	}
	return ids
}

// PartitionReplica is a broker holding a copy of a partition.
type PartitionReplica struct {
	ClusterID   string `json:"cluster_id"`
	TopicName   string `json:"topic_name"`
	PartitionID int32  `json:"partition_id"`
	BrokerID    int32  `json:"broker_id"`
	IsLeader    bool   `json:"is_leader"`
	IsInSync    bool   `json:"is_in_sync"`
}

// CreateTopicRequest carries the parameters of a topic creation.
//
// When ReplicasAssignments is non-empty the topic is created with exactly that
// partition -> brokers placement and PartitionsCount/ReplicationFactor are ignored.
// Otherwise both counts are required. A nil config value resets the key to its default.
type CreateTopicRequest struct {
	Name                string             `json:"topic_name"`
	PartitionsCount     *int32             `json:"partitions_count,omitempty"`
	ReplicationFactor   *int16             `json:"replication_factor,omitempty"`
	ReplicasAssignments map[int32][]int32  `json:"replicas_assignments,omitempty"`
	Configs             map[string]*string `json:"configs,omitempty"`
	ValidateOnly        bool               `json:"validate_only,omitempty"`
}
