// Package domain defines the entities topic-scout exposes (clusters, topics, partitions and
// replicas), the cluster-native descriptors the admin gateway reports, and the capability
// interfaces the application layer is built on.
package domain

// Cluster is a configured Kafka cluster. ID is the name it is registered under.
type Cluster struct {
	ID       string   `json:"cluster_id"`
	Name     string   `json:"name"`
	Brokers  []string `json:"brokers"`
	AuthType string   `json:"auth_type"`
	IsLocal  bool     `json:"is_local"`
}

// ClusterMetadata is what the brokers themselves report about the cluster.
type ClusterMetadata struct {
	KafkaClusterID string         `json:"kafka_cluster_id"`
	ControllerID   int32          `json:"controller_id"`
	Brokers        []BrokerDetail `json:"brokers"`
}

// BrokerDetail holds detailed information about a broker
type BrokerDetail struct {
	ID           int32  `json:"id"`
	Host         string `json:"host"`
	Port         int32  `json:"port"`
	Rack         string `json:"rack,omitempty"`
	IsController bool   `json:"is_controller"`
}
