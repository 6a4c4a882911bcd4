// Package testutil holds in-memory doubles shared by the package tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/OliveiraNt/topic-scout/internal/config"
	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// FakeKafkaClient is an in-memory cluster implementing domain.KafkaClient. It places replicas
// round-robin over Brokers, makes the first replica leader and keeps every replica in sync.
type FakeKafkaClient struct {
	mu sync.Mutex

	Brokers []int32
	Healthy bool
	// Err, when set, fails every admin call.
	Err error
	// NilListing makes ListTopicNames report no listing at all.
	NilListing bool
	// AuthorizedOperations is reported for every topic when a describe asks for it.
	AuthorizedOperations []kmsg.ACLOperation
	// Duplicates lists topics a describe reports twice.
	Duplicates map[string]bool

	topics map[string]domain.TopicDescription
	order  []string

	DescribeCalls   int
	LastDescribe    []string
	LastCreate      []domain.NewTopic
	LastValidate    bool
	LastPartitions  map[string]int32
	Closed          bool
	ClusterMetadata *domain.ClusterMetadata
}

// NewFakeKafkaClient creates a healthy single-broker cluster with no topics.
func NewFakeKafkaClient(brokers ...int32) *FakeKafkaClient {
	if len(brokers) == 0 {
		brokers = []int32{1}
	}
	return &FakeKafkaClient{
		Brokers:    brokers,
		Healthy:    true,
		Duplicates: map[string]bool{},
		topics:     map[string]domain.TopicDescription{},
	}
}

// Node returns the broker node the fake reports for id.
func Node(id int32) domain.Node {
	return domain.Node{ID: id, Host: fmt.Sprintf("broker-%d", id), Port: 9092}
}

// PutDescription stores desc verbatim, replacing any topic with the same name.
func (f *FakeKafkaClient) PutDescription(desc domain.TopicDescription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.topics[desc.Name]; !ok {
		f.order = append(f.order, desc.Name)
	}
	f.topics[desc.Name] = desc
}

// HasTopic reports whether the fake cluster holds the topic.
func (f *FakeKafkaClient) HasTopic(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.topics[name]
	return ok
}

func (f *FakeKafkaClient) IsHealthy(_ context.Context) bool { return f.Healthy }

func (f *FakeKafkaClient) DescribeCluster(_ context.Context) (*domain.ClusterMetadata, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.ClusterMetadata != nil {
		return f.ClusterMetadata, nil
	}
	meta := &domain.ClusterMetadata{KafkaClusterID: "fake-cluster", ControllerID: f.Brokers[0]}
	for _, id := range f.Brokers {
		n := Node(id)
		meta.Brokers = append(meta.Brokers, domain.BrokerDetail{ID: id, Host: n.Host, Port: n.Port, IsController: id == f.Brokers[0]})
	}
	return meta, nil
}

func (f *FakeKafkaClient) ListTopicNames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.NilListing {
		return nil, nil
	}
	names := make([]string, 0, len(f.topics))
	for name, t := range f.topics {
		if !t.IsInternal {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *FakeKafkaClient) DescribeTopics(_ context.Context, names []string, includeAuthorizedOperations bool) ([]domain.TopicDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DescribeCalls++
	f.LastDescribe = append([]string(nil), names...)
	if f.Err != nil {
		return nil, f.Err
	}

	out := make([]domain.TopicDescription, 0, len(names))
	for _, name := range names {
		t, ok := f.topics[name]
		if !ok {
			return nil, fmt.Errorf("topic %s: %w", name, kerr.UnknownTopicOrPartition)
		}
		t.AuthorizedOperations = nil
		if includeAuthorizedOperations {
			t.AuthorizedOperations = append([]kmsg.ACLOperation{}, f.AuthorizedOperations...)
		}
		out = append(out, t)
		if f.Duplicates[name] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *FakeKafkaClient) CreateTopics(_ context.Context, topics []domain.NewTopic, validateOnly bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastCreate = append([]domain.NewTopic(nil), topics...)
	f.LastValidate = validateOnly
	if f.Err != nil {
		return f.Err
	}

	built := make([]domain.TopicDescription, 0, len(topics))
	for _, t := range topics {
		if _, ok := f.topics[t.Name]; ok {
			return fmt.Errorf("topic %s: %w", t.Name, kerr.TopicAlreadyExists)
		}
		desc, err := f.place(t)
		if err != nil {
			return fmt.Errorf("topic %s: %w", t.Name, err)
		}
		built = append(built, desc)
	}
	if validateOnly {
		return nil
	}
	for _, desc := range built {
		f.order = append(f.order, desc.Name)
		f.topics[desc.Name] = desc
	}
	return nil
}

func (f *FakeKafkaClient) DeleteTopics(_ context.Context, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for _, name := range names {
		if _, ok := f.topics[name]; !ok {
			return fmt.Errorf("topic %s: %w", name, kerr.UnknownTopicOrPartition)
		}
	}
	for _, name := range names {
		delete(f.topics, name)
		for i, n := range f.order {
			if n == name {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (f *FakeKafkaClient) CreatePartitions(_ context.Context, newTotals map[string]int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPartitions = newTotals
	if f.Err != nil {
		return f.Err
	}
	for name, total := range newTotals {
		t, ok := f.topics[name]
		if !ok {
			return fmt.Errorf("topic %s: %w", name, kerr.UnknownTopicOrPartition)
		}
		if int(total) <= len(t.Partitions) {
			return fmt.Errorf("topic %s has %d partitions, cannot set %d: %w", name, len(t.Partitions), total, kerr.InvalidPartitions)
		}
		rf := 1
		if len(t.Partitions) > 0 {
			rf = len(t.Partitions[0].Replicas)
		}
		partitions := append([]domain.PartitionInfo(nil), t.Partitions...)
		for p := int32(len(t.Partitions)); p < total; p++ {
			partitions = append(partitions, f.partition(p, f.roundRobin(p, rf)))
		}
		t.Partitions = partitions
		f.topics[name] = t
	}
	return nil
}

func (f *FakeKafkaClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
}

func (f *FakeKafkaClient) place(t domain.NewTopic) (domain.TopicDescription, error) {
	desc := domain.TopicDescription{Name: t.Name}

	if t.HasExplicitAssignment() {
		for p := int32(0); p < int32(len(t.ReplicaAssignment)); p++ {
			replicas, ok := t.ReplicaAssignment[p]
			if !ok || len(replicas) == 0 {
				return desc, kerr.InvalidReplicaAssignment
			}
			seen := map[int32]bool{}
			for _, id := range replicas {
				if seen[id] || !f.isBroker(id) {
					return desc, kerr.InvalidReplicaAssignment
				}
				seen[id] = true
			}
			desc.Partitions = append(desc.Partitions, f.partition(p, replicas))
		}
		return desc, nil
	}

	partitions, rf := t.NumPartitions, int(t.ReplicationFactor)
	if partitions == -1 {
		partitions = 1
	}
	if rf == -1 {
		rf = 1
	}
	if partitions <= 0 {
		return desc, kerr.InvalidPartitions
	}
	if rf <= 0 || rf > len(f.Brokers) {
		return desc, kerr.InvalidReplicationFactor
	}
	for p := int32(0); p < partitions; p++ {
		desc.Partitions = append(desc.Partitions, f.partition(p, f.roundRobin(p, rf)))
	}
	return desc, nil
}

func (f *FakeKafkaClient) roundRobin(p int32, rf int) []int32 {
	replicas := make([]int32, rf)
	for i := range replicas {
		replicas[i] = f.Brokers[(int(p)+i)%len(f.Brokers)]
	}
	return replicas
}

func (f *FakeKafkaClient) partition(p int32, replicas []int32) domain.PartitionInfo {
	info := domain.PartitionInfo{Partition: p}
	for _, id := range replicas {
		info.Replicas = append(info.Replicas, Node(id))
		info.ISR = append(info.ISR, Node(id))
	}
	leader := Node(replicas[0])
	info.Leader = &leader
	return info
}

func (f *FakeKafkaClient) isBroker(id int32) bool {
	for _, b := range f.Brokers {
		if b == id {
			return true
		}
	}
	return false
}

// FakeClusterRepository is a simple in-memory repository for tests.
type FakeClusterRepository struct {
	mu      sync.Mutex
	Cfgs    []config.ClusterConfig
	Clients map[string]domain.KafkaClient
	Local   string
}

func NewFakeClusterRepository() *FakeClusterRepository {
	return &FakeClusterRepository{Clients: map[string]domain.KafkaClient{}}
}

// WithCluster registers a cluster configuration backed by client.
func (r *FakeClusterRepository) WithCluster(name string, client domain.KafkaClient) *FakeClusterRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cfgs = append(r.Cfgs, config.ClusterConfig{Name: name, Brokers: []string{name + ":9092"}})
	if client != nil {
		r.Clients[name] = client
	}
	return r
}

func (r *FakeClusterRepository) Save(cfg config.ClusterConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cfgs = append(r.Cfgs, cfg)
	return nil
}

func (r *FakeClusterRepository) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Clients, name)
	for i, c := range r.Cfgs {
		if c.Name == name {
			r.Cfgs = append(r.Cfgs[:i], r.Cfgs[i+1:]...)
			break
		}
	}
	return nil
}

func (r *FakeClusterRepository) FindByName(name string) (config.ClusterConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Cfgs {
		if c.Name == name {
			return c, true
		}
	}
	return config.ClusterConfig{}, false
}

func (r *FakeClusterRepository) FindAll() []config.ClusterConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]config.ClusterConfig(nil), r.Cfgs...)
}

func (r *FakeClusterRepository) LocalClusterName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Local != "" {
		return r.Local
	}
	if len(r.Cfgs) > 0 {
		return r.Cfgs[0].Name
	}
	return ""
}

func (r *FakeClusterRepository) Watch() error { return nil }

func (r *FakeClusterRepository) GetClient(name string) (domain.KafkaClient, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Clients[name]
	return c, ok
}

// FakeFactory returns a FakeKafkaClient for any config.
type FakeFactory struct {
	Client domain.KafkaClient
	Err    error
}

func (f *FakeFactory) CreateClient(_ config.ClusterConfig) (domain.KafkaClient, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Client != nil {
		return f.Client, nil
	}
	return NewFakeKafkaClient(), nil
}
