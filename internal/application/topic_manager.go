package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/OliveiraNt/topic-scout/internal/utils"
	"github.com/twmb/franz-go/pkg/kerr"
)

// TopicManager lists, describes, creates, deletes and grows topics. Every call resolves the
// cluster first, then issues the admin request; nothing is cached between calls and no
// state is shared, so any number of calls may run concurrently.
type TopicManager struct {
	clusters domain.ClusterLookup
	admin    domain.AdminGateway
}

// NewTopicManager creates a topic manager bound to one admin gateway.
func NewTopicManager(clusters domain.ClusterLookup, admin domain.AdminGateway) *TopicManager {
	return &TopicManager{clusters: clusters, admin: admin}
}

// ListTopics returns every non-internal topic of the cluster, in the order the describe
// reports them.
func (m *TopicManager) ListTopics(ctx context.Context, clusterID string, includeAuthorizedOperations bool) ([]domain.Topic, error) {
	if _, err := m.requireCluster(ctx, clusterID); err != nil {
		return nil, err
	}
	return m.listTopics(ctx, clusterID, includeAuthorizedOperations)
}

// ListLocalTopics is ListTopics against the local cluster, without authorized operations.
func (m *TopicManager) ListLocalTopics(ctx context.Context) ([]domain.Topic, error) {
	cluster, err := m.localCluster(ctx)
	if err != nil {
		return nil, err
	}
	return m.listTopics(ctx, cluster.ID, false)
}

// GetTopic describes a single topic. The bool is false when the cluster has no such topic.
func (m *TopicManager) GetTopic(ctx context.Context, clusterID, topicName string, includeAuthorizedOperations bool) (domain.Topic, bool, error) {
	if topicName == "" {
		return domain.Topic{}, false, ErrInvalidTopicName
	}
	if _, err := m.requireCluster(ctx, clusterID); err != nil {
		return domain.Topic{}, false, err
	}
	return m.getTopic(ctx, clusterID, topicName, includeAuthorizedOperations)
}

// GetLocalTopic is GetTopic against the local cluster, without authorized operations.
func (m *TopicManager) GetLocalTopic(ctx context.Context, topicName string) (domain.Topic, bool, error) {
	if topicName == "" {
		return domain.Topic{}, false, ErrInvalidTopicName
	}
	cluster, err := m.localCluster(ctx)
	if err != nil {
		return domain.Topic{}, false, err
	}
	return m.getTopic(ctx, cluster.ID, topicName, false)
}

// CreateTopic creates one topic, or only validates the request when req.ValidateOnly is set.
func (m *TopicManager) CreateTopic(ctx context.Context, clusterID string, req domain.CreateTopicRequest) error {
	topic, err := newTopicFromRequest(req)
	if err != nil {
		return err
	}
	if _, err := m.requireCluster(ctx, clusterID); err != nil {
		return err
	}

	if err := m.admin.CreateTopics(ctx, []domain.NewTopic{topic}, req.ValidateOnly); err != nil {
		utils.Logger.Error("create topic failed", "cluster", clusterID, "topic", req.Name, "validate_only", req.ValidateOnly, "err", err)
		return upstream("create topic", err)
	}

	if req.ValidateOnly {
		utils.Logger.Debug("topic creation validated", "cluster", clusterID, "topic", req.Name)
		return nil
	}
	utils.Logger.Info("topic created", "cluster", clusterID, "topic", req.Name, "explicit_assignment", topic.HasExplicitAssignment())
	return nil
}

// DeleteTopic deletes exactly one topic.
func (m *TopicManager) DeleteTopic(ctx context.Context, clusterID, topicName string) error {
	if topicName == "" {
		return ErrInvalidTopicName
	}
	if _, err := m.requireCluster(ctx, clusterID); err != nil {
		return err
	}

	if err := m.admin.DeleteTopics(ctx, []string{topicName}); err != nil {
		utils.Logger.Error("delete topic failed", "cluster", clusterID, "topic", topicName, "err", err)
		return upstream("delete topic", err)
	}

	utils.Logger.Info("topic deleted", "cluster", clusterID, "topic", topicName)
	return nil
}

// UpdateTopicPartitionsCount grows a topic to partitionsCount partitions on the cluster the
// admin gateway is bound to. The cluster rejects counts that do not increase.
func (m *TopicManager) UpdateTopicPartitionsCount(ctx context.Context, topicName string, partitionsCount int32) error {
	if topicName == "" {
		return ErrInvalidTopicName
	}

	if err := m.admin.CreatePartitions(ctx, map[string]int32{topicName: partitionsCount}); err != nil {
		utils.Logger.Error("increase partitions failed", "topic", topicName, "partitions", partitionsCount, "err", err)
		return upstream("create partitions", err)
	}

	utils.Logger.Info("topic partitions increased", "topic", topicName, "partitions", partitionsCount)
	return nil
}

func (m *TopicManager) listTopics(ctx context.Context, clusterID string, includeAuthorizedOperations bool) ([]domain.Topic, error) {
	names, err := m.admin.ListTopicNames(ctx)
	if err != nil {
		utils.Logger.Error("list topics failed", "cluster", clusterID, "err", err)
		return nil, upstream("list topics", err)
	}
	if len(names) == 0 {
		return []domain.Topic{}, nil
	}
	return m.describeTopics(ctx, clusterID, names, includeAuthorizedOperations)
}

func (m *TopicManager) getTopic(ctx context.Context, clusterID, topicName string, includeAuthorizedOperations bool) (domain.Topic, bool, error) {
	topics, err := m.describeTopics(ctx, clusterID, []string{topicName}, includeAuthorizedOperations)
	if errors.Is(err, kerr.UnknownTopicOrPartition) {
		return domain.Topic{}, false, nil
	}
	if err != nil {
		return domain.Topic{}, false, err
	}

	switch len(topics) {
	case 0:
		return domain.Topic{}, false, nil
	case 1:
		return topics[0], true, nil
	default:
		utils.Logger.Error("duplicate topic descriptors", "cluster", clusterID, "topic", topicName, "count", len(topics))
		return domain.Topic{}, false, fmt.Errorf("%w: more than one topic exists with name %s in cluster %s",
			ErrInvariantViolation, topicName, clusterID)
	}
}

// describeTopics issues a single bulk describe for all names.
func (m *TopicManager) describeTopics(ctx context.Context, clusterID string, names []string, includeAuthorizedOperations bool) ([]domain.Topic, error) {
	descs, err := m.admin.DescribeTopics(ctx, names, includeAuthorizedOperations)
	if err != nil {
		if !errors.Is(err, kerr.UnknownTopicOrPartition) {
			utils.Logger.Error("describe topics failed", "cluster", clusterID, "topics", len(names), "err", err)
		}
		return nil, upstream("describe topics", err)
	}

	topics := make([]domain.Topic, 0, len(descs))
	for _, d := range descs {
		topics = append(topics, toTopic(clusterID, d))
	}
	return topics, nil
}

func (m *TopicManager) requireCluster(ctx context.Context, clusterID string) (*domain.Cluster, error) {
	cluster, err := m.clusters.GetCluster(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	if cluster == nil {
		return nil, fmt.Errorf("%w: cluster %s cannot be found", ErrClusterNotFound, clusterID)
	}
	return cluster, nil
}

func (m *TopicManager) localCluster(ctx context.Context) (*domain.Cluster, error) {
	cluster, err := m.clusters.GetLocalCluster(ctx)
	if err != nil {
		return nil, err
	}
	if cluster == nil {
		return nil, fmt.Errorf("%w: no local cluster configured", ErrClusterNotFound)
	}
	return cluster, nil
}

// newTopicFromRequest picks the placement: explicit when assignments are given, uniform
// otherwise. nil config values are kept so the cluster resets those keys.
func newTopicFromRequest(req domain.CreateTopicRequest) (domain.NewTopic, error) {
	if strings.TrimSpace(req.Name) == "" {
		return domain.NewTopic{}, ErrInvalidTopicName
	}

	configs := make(map[string]*string, len(req.Configs))
	for k, v := range req.Configs {
		configs[k] = v
	}

	if len(req.ReplicasAssignments) > 0 {
		return domain.NewAssignedTopic(req.Name, req.ReplicasAssignments, configs), nil
	}

	if req.PartitionsCount == nil || *req.PartitionsCount <= 0 {
		return domain.NewTopic{}, ErrInvalidPartitionCount
	}
	if req.ReplicationFactor == nil || *req.ReplicationFactor <= 0 {
		return domain.NewTopic{}, ErrInvalidReplicationFactor
	}
	return domain.NewUniformTopic(req.Name, *req.PartitionsCount, *req.ReplicationFactor, configs), nil
}
