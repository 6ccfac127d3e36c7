package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// LikesToggled counts like toggles by outcome (liked, unliked).
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_likes_toggled_total",
		Help: "Total like toggles by resulting status",
	}, []string{"status"})

	// CommentsTotal counts comment writes by operation (created, deleted).
	CommentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_comments_total",
		Help: "Total comment writes by operation",
	}, []string{"operation"})

	// PostsArchived counts posts moved to the archive.
	PostsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_posts_archived_total",
		Help: "Total number of posts deleted into the archive",
	})

	// AdminRoleGrants counts admin role grants by source (signup_prefix, cli).
	AdminRoleGrants = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_admin_role_grants_total",
		Help: "Total admin role grants by source",
	}, []string{"source"})

	// FeedCacheResults counts feed cache lookups by result (hit, miss).
	FeedCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_feed_cache_results_total",
		Help: "Feed cache lookups by result",
	}, []string{"result"})

	// WebSocketConnections is the gauge of active feed websocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inkwell_websocket_connections",
		Help: "Number of active feed WebSocket connections",
	})

	// WebSocketBackpressureDrops counts events dropped because a client's send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket events dropped due to backpressure",
	})
)
