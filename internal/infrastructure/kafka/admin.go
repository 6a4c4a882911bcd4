package kafka

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
)

// Admin issues topic admin requests. kadm covers the plain cases; describes with
// authorized operations and explicitly placed creates go out as raw protocol requests.
type Admin struct {
	client *kadm.Client
	req    kmsg.Requestor
}

// NewAdmin creates a new Admin on top of a franz-go client.
func NewAdmin(cl *kgo.Client) *Admin {
	return &Admin{client: kadm.NewClient(cl), req: cl}
}

// BrokerMetadata returns broker metadata (used for health checks)
func (a *Admin) BrokerMetadata(ctx context.Context) (kadm.Metadata, error) {
	return a.client.BrokerMetadata(ctx)
}

// ListTopicNames returns the sorted names of all non-internal topics.
func (a *Admin) ListTopicNames(ctx context.Context) (names []string, err error) {
	defer func(start time.Time) { observe("list_topics", start, err) }(time.Now())

	cctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	topics, err := a.client.ListTopics(cctx)
	if err != nil {
		return nil, err
	}

	names = make([]string, 0, len(topics))
	for name, detail := range topics {
		if detail.IsInternal {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DescribeTopics describes names with a single metadata request. An unknown topic fails
// the whole call with kerr.UnknownTopicOrPartition.
func (a *Admin) DescribeTopics(ctx context.Context, names []string, includeAuthorizedOperations bool) (descs []domain.TopicDescription, err error) {
	if len(names) == 0 {
		// an empty topic list would ask the broker for every topic
		return []domain.TopicDescription{}, nil
	}
	defer func(start time.Time) { observe("describe_topics", start, err) }(time.Now())

	cctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	resp, err := newMetadataRequest(names, includeAuthorizedOperations).RequestWith(cctx, a.req)
	if err != nil {
		return nil, err
	}
	return describeFromMetadata(resp, includeAuthorizedOperations)
}

// CreateTopics creates topics, or only validates them. Uniformly placed topics go through
// kadm, explicitly assigned ones through a single CreateTopics request.
func (a *Admin) CreateTopics(ctx context.Context, topics []domain.NewTopic, validateOnly bool) (err error) {
	defer func(start time.Time) { observe("create_topics", start, err) }(time.Now())

	cctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	var assigned []domain.NewTopic
	for _, t := range topics {
		if t.HasExplicitAssignment() {
			assigned = append(assigned, t)
			continue
		}
		if err := a.createUniform(cctx, t, validateOnly); err != nil {
			return err
		}
	}
	if len(assigned) == 0 {
		return nil
	}

	resp, err := newCreateTopicsRequest(assigned, validateOnly).RequestWith(cctx, a.req)
	if err != nil {
		return err
	}
	for _, t := range resp.Topics {
		if err := kerr.ErrorForCode(t.ErrorCode); err != nil {
			if t.ErrorMessage != nil {
				return fmt.Errorf("topic %s: %w: %s", t.Topic, err, *t.ErrorMessage)
			}
			return fmt.Errorf("topic %s: %w", t.Topic, err)
		}
	}
	return nil
}

func (a *Admin) createUniform(ctx context.Context, t domain.NewTopic, validateOnly bool) error {
	create := a.client.CreateTopics
	if validateOnly {
		create = a.client.ValidateCreateTopics
	}

	resp, err := create(ctx, t.NumPartitions, t.ReplicationFactor, t.Configs, t.Name)
	if err != nil {
		return err
	}

	// Check for errors in the response
	for _, r := range resp {
		if r.Err != nil {
			return fmt.Errorf("topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// DeleteTopics deletes topics.
func (a *Admin) DeleteTopics(ctx context.Context, names []string) (err error) {
	defer func(start time.Time) { observe("delete_topics", start, err) }(time.Now())

	cctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	resp, err := a.client.DeleteTopics(cctx, names...)
	if err != nil {
		return err
	}

	// Check for errors in the response
	for _, r := range resp {
		if r.Err != nil {
			return fmt.Errorf("topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// CreatePartitions grows each topic to its new total partition count.
func (a *Admin) CreatePartitions(ctx context.Context, newTotals map[string]int32) (err error) {
	defer func(start time.Time) { observe("create_partitions", start, err) }(time.Now())

	cctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	byTotal := make(map[int32][]string)
	for name, total := range newTotals {
		byTotal[total] = append(byTotal[total], name)
	}
	totals := make([]int32, 0, len(byTotal))
	for total := range byTotal {
		totals = append(totals, total)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i] < totals[j] })

	for _, total := range totals {
		resp, err := a.client.UpdatePartitions(cctx, int(total), byTotal[total]...)
		if err != nil {
			return err
		}
		for _, r := range resp {
			if r.Err != nil {
				return fmt.Errorf("topic %s: %w", r.Topic, r.Err)
			}
		}
	}
	return nil
}

// DescribeCluster returns what the brokers report about the cluster.
func (a *Admin) DescribeCluster(ctx context.Context) (meta *domain.ClusterMetadata, err error) {
	defer func(start time.Time) { observe("describe_cluster", start, err) }(time.Now())

	cctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	m, err := a.client.BrokerMetadata(cctx)
	if err != nil {
		return nil, err
	}

	meta = &domain.ClusterMetadata{
		KafkaClusterID: m.Cluster,
		ControllerID:   m.Controller,
		Brokers:        make([]domain.BrokerDetail, 0, len(m.Brokers)),
	}
	for _, b := range m.Brokers {
		rack := ""
		if b.Rack != nil {
			rack = *b.Rack
		}
		meta.Brokers = append(meta.Brokers, domain.BrokerDetail{
			ID:           b.NodeID,
			Host:         b.Host,
			Port:         b.Port,
			Rack:         rack,
			IsController: b.NodeID == m.Controller,
		})
	}
	sort.Slice(meta.Brokers, func(i, j int) bool { return meta.Brokers[i].ID < meta.Brokers[j].ID })
	return meta, nil
}

func newMetadataRequest(names []string, includeAuthorizedOperations bool) *kmsg.MetadataRequest {
	req := kmsg.NewPtrMetadataRequest()
	req.AllowAutoTopicCreation = false
	req.IncludeTopicAuthorizedOperations = includeAuthorizedOperations
	for _, name := range names {
		t := kmsg.NewMetadataRequestTopic()
		t.Topic = kmsg.StringPtr(name)
		req.Topics = append(req.Topics, t)
	}
	return req
}

func describeFromMetadata(resp *kmsg.MetadataResponse, includeAuthorizedOperations bool) ([]domain.TopicDescription, error) {
	brokers := make(map[int32]domain.Node, len(resp.Brokers))
	for _, b := range resp.Brokers {
		n := domain.Node{ID: b.NodeID, Host: b.Host, Port: b.Port}
		if b.Rack != nil {
			n.Rack = *b.Rack
		}
		brokers[b.NodeID] = n
	}
	node := func(id int32) domain.Node {
		if n, ok := brokers[id]; ok {
			return n
		}
		return domain.Node{ID: id}
	}
	nodes := func(ids []int32) []domain.Node {
		out := make([]domain.Node, 0, len(ids))
		for _, id := range ids {
			out = append(out, node(id))
		}
		return out
	}

	descs := make([]domain.TopicDescription, 0, len(resp.Topics))
	for _, t := range resp.Topics {
		name := ""
		if t.Topic != nil {
			name = *t.Topic
		}
		if err := kerr.ErrorForCode(t.ErrorCode); err != nil {
			return nil, fmt.Errorf("topic %s: %w", name, err)
		}

		desc := domain.TopicDescription{
			Name:       name,
			IsInternal: t.IsInternal,
			Partitions: make([]domain.PartitionInfo, 0, len(t.Partitions)),
		}
		for _, p := range t.Partitions {
			info := domain.PartitionInfo{
				Partition: p.Partition,
				Replicas:  nodes(p.Replicas),
				ISR:       nodes(p.ISR),
			}
			if p.Leader >= 0 {
				leader := node(p.Leader)
				info.Leader = &leader
			}
			desc.Partitions = append(desc.Partitions, info)
		}
		sort.Slice(desc.Partitions, func(i, j int) bool {
			return desc.Partitions[i].Partition < desc.Partitions[j].Partition
		})
		if includeAuthorizedOperations {
			desc.AuthorizedOperations = decodeAuthorizedOperations(t.AuthorizedOperations)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// decodeAuthorizedOperations unpacks the metadata bitfield, where bit i set means
// kmsg.ACLOperation(i) is allowed. math.MinInt32 is the broker's "not reported" value.
func decodeAuthorizedOperations(bitfield int32) []kmsg.ACLOperation {
	ops := []kmsg.ACLOperation{}
	if bitfield == math.MinInt32 {
		return ops
	}
	for i := 0; i < 32; i++ {
		if bitfield&(1<<uint(i)) != 0 {
			ops = append(ops, kmsg.ACLOperation(i))
		}
	}
	return ops
}

func newCreateTopicsRequest(topics []domain.NewTopic, validateOnly bool) *kmsg.CreateTopicsRequest {
	req := kmsg.NewPtrCreateTopicsRequest()
	req.TimeoutMillis = int32(writeTimeout.Milliseconds())
	req.ValidateOnly = validateOnly

	for _, t := range topics {
		rt := kmsg.NewCreateTopicsRequestTopic()
		rt.Topic = t.Name
		rt.NumPartitions = -1
		rt.ReplicationFactor = -1

		partitions := make([]int32, 0, len(t.ReplicaAssignment))
		for p := range t.ReplicaAssignment {
			partitions = append(partitions, p)
		}
		sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })
		for _, p := range partitions {
			ra := kmsg.NewCreateTopicsRequestTopicReplicaAssignment()
			ra.Partition = p
			ra.Replicas = t.ReplicaAssignment[p]
			rt.ReplicaAssignment = append(rt.ReplicaAssignment, ra)
		}

		keys := make([]string, 0, len(t.Configs))
		for k := range t.Configs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c := kmsg.NewCreateTopicsRequestTopicConfig()
			c.Name = k
			c.Value = t.Configs[k]
			rt.Configs = append(rt.Configs, c)
		}

		req.Topics = append(req.Topics, rt)
	}
	return req
}
