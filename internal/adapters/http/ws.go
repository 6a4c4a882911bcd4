package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/OliveiraNt/topic-scout/internal/application"
	"github.com/OliveiraNt/topic-scout/internal/domain"
	"github.com/OliveiraNt/topic-scout/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	defaultWatchInterval = 5 * time.Second
	minWatchInterval     = time.Second
	wsWriteTimeout       = 10 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	// TODO: restrict origins once topic-scout is served behind a known host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// topicSnapshot is one frame of the watch feed.
type topicSnapshot struct {
	ClusterID string         `json:"cluster_id"`
	Time      time.Time      `json:"time"`
	Topics    []domain.Topic `json:"topics"`
	Error     string         `json:"error,omitempty"`
}

func watchInterval(r *http.Request) time.Duration {
	d, err := time.ParseDuration(r.URL.Query().Get("interval"))
	if err != nil {
		return defaultWatchInterval
	}
	if d < minWatchInterval {
		return minWatchInterval
	}
	return d
}

// wsWatchTopics upgrades to WebSocket and pushes a listing of the cluster's topics on every
// tick until the client goes away.
func (s *Server) wsWatchTopics(w http.ResponseWriter, r *http.Request) {
	clusterID := chi.URLParam(r, "clusterId")

	cluster, err := s.clusterService.GetCluster(r.Context(), clusterID)
	if err != nil {
		writeError(w, err)
		return
	}
	if cluster == nil {
		writeError(w, fmt.Errorf("%w: cluster %s cannot be found", application.ErrClusterNotFound, clusterID))
		return
	}
	interval := watchInterval(r)
	includeOps := includeAuthorizedOperations(r)

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Logger.Error("websocket upgrade failed", "cluster", clusterID, "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				utils.Logger.Info("websocket client disconnected", "cluster", clusterID, "err", err)
				return
			}
		}
	}()

	manager := s.clusterService.TopicManager(clusterID)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap := topicSnapshot{ClusterID: clusterID, Time: time.Now().UTC(), Topics: []domain.Topic{}}
		topics, err := manager.ListTopics(ctx, clusterID, includeOps)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			snap.Error = err.Error()
		} else {
			snap.Topics = topics
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(snap); err != nil {
			utils.Logger.Info("websocket write failed, stopping watch", "cluster", clusterID, "err", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
