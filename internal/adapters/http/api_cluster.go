package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/OliveiraNt/topic-scout/internal/config"
	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/OliveiraNt/topic-scout/internal/utils"
	"github.com/go-chi/chi/v5"
)

type clusterList struct {
	Data []domain.Cluster `json:"data"`
}

type clusterInfo struct {
	domain.Cluster
	Online   bool                    `json:"online"`
	Metadata *domain.ClusterMetadata `json:"metadata,omitempty"`
}

func (s *Server) apiListClusters(w http.ResponseWriter, _ *http.Request) {
	clusters := s.clusterService.ListClusters()
	utils.Logger.Debug("api list clusters", "count", len(clusters))
	writeJSON(w, http.StatusOK, clusterList{Data: clusters})
}

func (s *Server) apiAddCluster(w http.ResponseWriter, r *http.Request) {
	var c config.ClusterConfig
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.Logger.Warn("api add cluster bad request", "err", err)
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.clusterService.AddCluster(c); err != nil {
		utils.Logger.Error("api add cluster failed", "cluster", c.Name, "err", err)
		writeError(w, err)
		return
	}
	utils.Logger.Info("cluster added", "cluster", c.Name)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) apiGetCluster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clusterId")
	cluster, meta, err := s.clusterService.GetClusterInfo(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clusterInfo{Cluster: *cluster, Online: meta != nil, Metadata: meta})
}

func (s *Server) apiDeleteCluster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clusterId")
	if err := s.clusterService.DeleteCluster(id); err != nil {
		utils.Logger.Error("api delete cluster failed", "cluster", id, "err", err)
		writeError(w, err)
		return
	}
	utils.Logger.Info("cluster deleted", "cluster", id)
	w.WriteHeader(http.StatusNoContent)
}
