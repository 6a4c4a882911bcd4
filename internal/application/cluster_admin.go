package application

import (
	"context"
	"fmt"

	"github.com/OliveiraNt/topic-scout/internal/domain"
)

// ClusterAdmin is an AdminGateway bound to one cluster name. The client is looked up on every
// call so a configuration reload that replaces it is picked up.
type ClusterAdmin struct {
	repo    domain.ClusterRepository
	cluster string
}

// NewClusterAdmin binds an admin gateway to the named cluster.
func NewClusterAdmin(repo domain.ClusterRepository, cluster string) *ClusterAdmin {
	return &ClusterAdmin{repo: repo, cluster: cluster}
}

func (a *ClusterAdmin) client() (domain.KafkaClient, error) {
	client, ok := a.repo.GetClient(a.cluster)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClusterOffline, a.cluster)
	}
	return client, nil
}

func (a *ClusterAdmin) ListTopicNames(ctx context.Context) ([]string, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return c.ListTopicNames(ctx)
}

func (a *ClusterAdmin) DescribeTopics(ctx context.Context, names []string, includeAuthorizedOperations bool) ([]domain.TopicDescription, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return c.DescribeTopics(ctx, names, includeAuthorizedOperations)
}

func (a *ClusterAdmin) CreateTopics(ctx context.Context, topics []domain.NewTopic, validateOnly bool) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	return c.CreateTopics(ctx, topics, validateOnly)
}

func (a *ClusterAdmin) DeleteTopics(ctx context.Context, names []string) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	return c.DeleteTopics(ctx, names)
}

func (a *ClusterAdmin) CreatePartitions(ctx context.Context, newTotals map[string]int32) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	return c.CreatePartitions(ctx, newTotals)
}
