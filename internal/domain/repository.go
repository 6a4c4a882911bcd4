package domain

import (
	"context"

	"github.com/OliveiraNt/topic-scout/internal/config"
)

// ClusterRepository defines operations for managing cluster configurations.
type ClusterRepository interface {
	Save(cfg config.ClusterConfig) error
	Delete(name string) error
	FindByName(name string) (config.ClusterConfig, bool)
	FindAll() []config.ClusterConfig
	LocalClusterName() string
	Watch() error
	GetClient(name string) (KafkaClient, bool)
}

// ClientFactory creates Kafka clients from configuration.
type ClientFactory interface {
	CreateClient(cfg config.ClusterConfig) (KafkaClient, error)
}

// ClusterLookup resolves cluster identifiers. GetCluster returns a nil cluster and a nil
// error when the id is unknown.
type ClusterLookup interface {
	GetCluster(ctx context.Context, clusterID string) (*Cluster, error)
	GetLocalCluster(ctx context.Context) (*Cluster, error)
}

// AdminGateway is the only channel to a cluster controller.
type AdminGateway interface {
	// ListTopicNames returns the non-internal topic names. A nil slice means no listing.
	ListTopicNames(ctx context.Context) ([]string, error)
	// DescribeTopics describes all names in one request. Any unknown name fails the batch.
	DescribeTopics(ctx context.Context, names []string, includeAuthorizedOperations bool) ([]TopicDescription, error)
	CreateTopics(ctx context.Context, topics []NewTopic, validateOnly bool) error
	DeleteTopics(ctx context.Context, names []string) error
	// CreatePartitions grows each topic to the given total partition count.
	CreatePartitions(ctx context.Context, newTotals map[string]int32) error
}

// KafkaClient is a live connection to one cluster.
type KafkaClient interface {
	AdminGateway
	IsHealthy(ctx context.Context) bool
	DescribeCluster(ctx context.Context) (*ClusterMetadata, error)
	Close()
}
