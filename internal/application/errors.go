package application

import "errors"

var (
	// ErrClusterNotFound is returned when a cluster id (or the local cluster) does not resolve
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrInvalidClusterConfig is returned when cluster configuration is invalid
	ErrInvalidClusterConfig = errors.New("invalid cluster configuration")

	// ErrClusterOffline is returned when a cluster is configured but has no live client
	ErrClusterOffline = errors.New("cluster is offline")

	// ErrInvariantViolation is returned when the cluster view breaks a uniqueness guarantee,
	// such as two topics reported under one name
	ErrInvariantViolation = errors.New("invariant violation")

	ErrInvalidTopicName         = errors.New("invalid topic name")
	ErrInvalidPartitionCount    = errors.New("invalid partition count")
	ErrInvalidReplicationFactor = errors.New("invalid replication factor")
)

// UpstreamError is a failure reported by the admin gateway. Err is kept as is so callers
// can still match Kafka protocol errors with errors.Is.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}
