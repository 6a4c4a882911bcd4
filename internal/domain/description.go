package domain

import "github.com/twmb/franz-go/pkg/kmsg"

// Node is a broker as referenced from partition metadata. Only ID identifies it; Host and
// Port are empty for brokers the cluster no longer lists.
type Node struct {
	ID   int32
	Host string
	Port int32
	Rack string
}

// TopicDescription is the cluster-native view of a topic returned by a bulk describe.
type TopicDescription struct {
	Name       string
	IsInternal bool
	Partitions []PartitionInfo
	// AuthorizedOperations is nil when the describe did not ask for them.
	AuthorizedOperations []kmsg.ACLOperation
}

// PartitionInfo is the cluster-native view of a partition.
type PartitionInfo struct {
	Partition int32
	Leader    *Node // nil while the partition is leaderless
	Replicas  []Node
	ISR       []Node
}

// NewTopic is a creation request as sent to the cluster: either uniform (partition count
// and replication factor, -1 meaning broker default) or explicitly assigned.
type NewTopic struct {
	Name              string
	NumPartitions     int32
	ReplicationFactor int16
	ReplicaAssignment map[int32][]int32
	Configs           map[string]*string
}

// NewUniformTopic builds a topic the cluster places itself.
func NewUniformTopic(name string, partitions int32, replicationFactor int16, configs map[string]*string) NewTopic {
	return NewTopic{
		Name:              name,
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
		Configs:           configs,
	}
}

// NewAssignedTopic builds a topic with an explicit partition -> replica brokers placement.
func NewAssignedTopic(name string, assignments map[int32][]int32, configs map[string]*string) NewTopic {
	return NewTopic{
		Name:              name,
		NumPartitions:     -1,
		ReplicationFactor: -1,
		ReplicaAssignment: assignments,
		Configs:           configs,
	}
}

// HasExplicitAssignment reports whether the topic carries its own replica placement.
func (t NewTopic) HasExplicitAssignment() bool {
	return len(t.ReplicaAssignment) > 0
}
