package application

import (
	"context"
	"fmt"

	"github.com/OliveiraNt/topic-scout/internal/config"
	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/OliveiraNt/topic-scout/internal/utils"
)

// ClusterService provides operations related to cluster management and resolves cluster ids
// for the topic managers.
type ClusterService struct {
	repo domain.ClusterRepository
}

// NewClusterService creates a new cluster service.
func NewClusterService(repo domain.ClusterRepository) *ClusterService {
	return &ClusterService{repo: repo}
}

// ListClusters lists all configured clusters.
func (s *ClusterService) ListClusters() []domain.Cluster {
	cfgs := s.repo.FindAll()
	local := s.repo.LocalClusterName()
	out := make([]domain.Cluster, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, toCluster(cfg, local))
	}
	return out
}

// AddCluster adds a new cluster configuration.
func (s *ClusterService) AddCluster(cfg config.ClusterConfig) error {
	if cfg.Name == "" || len(cfg.Brokers) == 0 {
		return ErrInvalidClusterConfig
	}
	return s.repo.Save(cfg)
}

// DeleteCluster removes a cluster configuration.
func (s *ClusterService) DeleteCluster(name string) error {
	if _, ok := s.repo.FindByName(name); !ok {
		return fmt.Errorf("%w: cluster %s cannot be found", ErrClusterNotFound, name)
	}
	return s.repo.Delete(name)
}

// GetCluster resolves a configured cluster by id. Unknown ids yield a nil cluster.
func (s *ClusterService) GetCluster(_ context.Context, clusterID string) (*domain.Cluster, error) {
	cfg, ok := s.repo.FindByName(clusterID)
	if !ok {
		return nil, nil
	}
	c := toCluster(cfg, s.repo.LocalClusterName())
	return &c, nil
}

// GetLocalCluster resolves the cluster this process treats as its own.
func (s *ClusterService) GetLocalCluster(ctx context.Context) (*domain.Cluster, error) {
	name := s.repo.LocalClusterName()
	if name == "" {
		return nil, fmt.Errorf("%w: no local cluster configured", ErrClusterNotFound)
	}
	c, err := s.GetCluster(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: local cluster %s cannot be found", ErrClusterNotFound, name)
	}
	return c, nil
}

// GetClusterInfo returns the configured cluster together with what its brokers report.
// Metadata is nil when the cluster cannot be reached.
func (s *ClusterService) GetClusterInfo(ctx context.Context, clusterID string) (*domain.Cluster, *domain.ClusterMetadata, error) {
	cluster, err := s.GetCluster(ctx, clusterID)
	if err != nil {
		return nil, nil, err
	}
	if cluster == nil {
		return nil, nil, fmt.Errorf("%w: cluster %s cannot be found", ErrClusterNotFound, clusterID)
	}

	client, ok := s.repo.GetClient(clusterID)
	if !ok {
		utils.Logger.Warn("get cluster info client not found", "cluster", clusterID)
		return cluster, nil, nil
	}

	meta, err := client.DescribeCluster(ctx)
	if err != nil {
		utils.Logger.Error("describe cluster failed", "cluster", clusterID, "err", err)
		return cluster, nil, nil
	}
	return cluster, meta, nil
}

// TopicManager returns a topic manager whose admin calls go to clusterID.
func (s *ClusterService) TopicManager(clusterID string) *TopicManager {
	return NewTopicManager(s, NewClusterAdmin(s.repo, clusterID))
}

// LocalTopicManager returns a topic manager bound to the local cluster.
func (s *ClusterService) LocalTopicManager() *TopicManager {
	return s.TopicManager(s.repo.LocalClusterName())
}

func toCluster(cfg config.ClusterConfig, local string) domain.Cluster {
	return domain.Cluster{
		ID:       cfg.Name,
		Name:     cfg.Name,
		Brokers:  cfg.Brokers,
		AuthType: cfg.GetAuthType(),
		IsLocal:  cfg.Name == local,
	}
}
