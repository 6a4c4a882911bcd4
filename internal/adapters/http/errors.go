package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/OliveiraNt/topic-scout/internal/application"
	"github.com/OliveiraNt/topic-scout/internal/utils"
	"github.com/twmb/franz-go/pkg/kerr"
)

// errorResponse follows the Kafka REST error body.
type errorResponse struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrClusterNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrClusterOffline):
		return http.StatusServiceUnavailable
	case errors.Is(err, application.ErrInvalidTopicName),
		errors.Is(err, application.ErrInvalidPartitionCount),
		errors.Is(err, application.ErrInvalidReplicationFactor),
		errors.Is(err, application.ErrInvalidClusterConfig):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrInvariantViolation):
		return http.StatusInternalServerError

	case errors.Is(err, kerr.UnknownTopicOrPartition):
		return http.StatusNotFound
	case errors.Is(err, kerr.TopicAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, kerr.InvalidTopicException),
		errors.Is(err, kerr.InvalidPartitions),
		errors.Is(err, kerr.InvalidReplicationFactor),
		errors.Is(err, kerr.InvalidReplicaAssignment),
		errors.Is(err, kerr.InvalidConfig),
		errors.Is(err, kerr.InvalidRequest),
		errors.Is(err, kerr.PolicyViolation):
		return http.StatusBadRequest
	case errors.Is(err, kerr.TopicAuthorizationFailed),
		errors.Is(err, kerr.ClusterAuthorizationFailed):
		return http.StatusForbidden
	case errors.Is(err, kerr.RequestTimedOut),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		utils.Logger.Error("api request failed", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{ErrorCode: status, Message: err.Error()})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{ErrorCode: status, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Logger.Error("encode response failed", "err", err)
	}
}
