package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/OliveiraNt/topic-scout/internal/application"
	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/go-chi/chi/v5"
)

type topicList struct {
	Data []domain.Topic `json:"data"`
}

type updatePartitionsRequest struct {
	PartitionsCount *int32 `json:"partitions_count"`
}

func includeAuthorizedOperations(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("include_authorized_operations"))
	return v
}

func (s *Server) apiListTopics(w http.ResponseWriter, r *http.Request) {
	clusterID := chi.URLParam(r, "clusterId")
	topics, err := s.clusterService.TopicManager(clusterID).ListTopics(r.Context(), clusterID, includeAuthorizedOperations(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topicList{Data: topics})
}

func (s *Server) apiGetTopic(w http.ResponseWriter, r *http.Request) {
	clusterID := chi.URLParam(r, "clusterId")
	topicName := chi.URLParam(r, "topicName")

	topic, ok, err := s.clusterService.TopicManager(clusterID).GetTopic(r.Context(), clusterID, topicName, includeAuthorizedOperations(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("topic %s not found in cluster %s", topicName, clusterID))
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (s *Server) apiListLocalTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.clusterService.LocalTopicManager().ListLocalTopics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topicList{Data: topics})
}

func (s *Server) apiGetLocalTopic(w http.ResponseWriter, r *http.Request) {
	topicName := chi.URLParam(r, "topicName")

	topic, ok, err := s.clusterService.LocalTopicManager().GetLocalTopic(r.Context(), topicName)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("topic %s not found in the local cluster", topicName))
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (s *Server) apiCreateTopic(w http.ResponseWriter, r *http.Request) {
	clusterID := chi.URLParam(r, "clusterId")

	var req domain.CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if v := r.URL.Query().Get("validate_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid validate_only: "+v)
			return
		}
		req.ValidateOnly = b
	}

	if err := s.clusterService.TopicManager(clusterID).CreateTopic(r.Context(), clusterID, req); err != nil {
		writeError(w, err)
		return
	}
	if req.ValidateOnly {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// The created topic is echoed back when the cluster already reports it.
	topic, ok, err := s.clusterService.TopicManager(clusterID).GetTopic(r.Context(), clusterID, req.Name, false)
	if err != nil || !ok {
		w.WriteHeader(http.StatusCreated)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (s *Server) apiUpdateTopicPartitions(w http.ResponseWriter, r *http.Request) {
	clusterID := chi.URLParam(r, "clusterId")
	topicName := chi.URLParam(r, "topicName")

	var req updatePartitionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.PartitionsCount == nil || *req.PartitionsCount <= 0 {
		writeError(w, application.ErrInvalidPartitionCount)
		return
	}

	// the topic manager is bound to the cluster's admin, so resolve the id up front
	cluster, err := s.clusterService.GetCluster(r.Context(), clusterID)
	if err != nil {
		writeError(w, err)
		return
	}
	if cluster == nil {
		writeError(w, fmt.Errorf("%w: cluster %s cannot be found", application.ErrClusterNotFound, clusterID))
		return
	}

	if err := s.clusterService.TopicManager(clusterID).UpdateTopicPartitionsCount(r.Context(), topicName, *req.PartitionsCount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiDeleteTopic(w http.ResponseWriter, r *http.Request) {
	clusterID := chi.URLParam(r, "clusterId")
	topicName := chi.URLParam(r, "topicName")

	if err := s.clusterService.TopicManager(clusterID).DeleteTopic(r.Context(), clusterID, topicName); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
