package domain

import (
	"sort"

	"github.com/twmb/franz-go/pkg/kmsg"
)

// Operation is an action a principal may be authorized to perform on a resource.
type Operation string

const (
	OperationUnknown         Operation = "UNKNOWN"
	OperationAny             Operation = "ANY"
	OperationAll             Operation = "ALL"
	OperationRead            Operation = "READ"
	OperationWrite           Operation = "WRITE"
	OperationCreate          Operation = "CREATE"
	OperationDelete          Operation = "DELETE"
	OperationAlter           Operation = "ALTER"
	OperationDescribe        Operation = "DESCRIBE"
	OperationClusterAction   Operation = "CLUSTER_ACTION"
	OperationDescribeConfigs Operation = "DESCRIBE_CONFIGS"
	OperationAlterConfigs    Operation = "ALTER_CONFIGS"
	OperationIdempotentWrite Operation = "IDEMPOTENT_WRITE"
	OperationCreateTokens    Operation = "CREATE_TOKENS"
	OperationDescribeTokens  Operation = "DESCRIBE_TOKENS"
)

// OperationFromACL translates the Kafka protocol ACL operation into an Operation.
func OperationFromACL(op kmsg.ACLOperation) Operation {
	switch op {
	case kmsg.ACLOperationAny:
		return OperationAny
	case kmsg.ACLOperationAll:
		return OperationAll
	case kmsg.ACLOperationRead:
		return OperationRead
	case kmsg.ACLOperationWrite:
		return OperationWrite
	case kmsg.ACLOperationCreate:
		return OperationCreate
	case kmsg.ACLOperationDelete:
		return OperationDelete
	case kmsg.ACLOperationAlter:
		return OperationAlter
	case kmsg.ACLOperationDescribe:
		return OperationDescribe
	case kmsg.ACLOperationClusterAction:
		return OperationClusterAction
	case kmsg.ACLOperationDescribeConfigs:
		return OperationDescribeConfigs
	case kmsg.ACLOperationAlterConfigs:
		return OperationAlterConfigs
	case kmsg.ACLOperationIdempotentWrite:
		return OperationIdempotentWrite
	case kmsg.ACLOperationCreateTokens:
		return OperationCreateTokens
	case kmsg.ACLOperationDescribeTokens:
		return OperationDescribeTokens
	default:
		return OperationUnknown
	}
}

// SortOperations orders operations by name so sets render deterministically.
func SortOperations(ops []Operation) {
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
}
