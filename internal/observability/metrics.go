// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journals_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PrivacyCascadePosts counts posts rewritten by journal privacy sweeps.
	PrivacyCascadePosts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "journals_privacy_cascade_posts_total",
		Help: "Total number of posts updated by journal privacy cascades",
	})

	// PINChallenges counts PIN challenges by outcome (valid, invalid, rejected, limited).
	PINChallenges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journals_pin_challenges_total",
		Help: "Total number of PIN challenges by outcome",
	}, []string{"outcome"})

	// AccessDenied counts refused reads and writes by action.
	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journals_access_denied_total",
		Help: "Total number of denied operations by action",
	}, []string{"action"})

	// FollowConflicts counts rejected follow attempts by kind (self, duplicate).
	FollowConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journals_follow_conflicts_total",
		Help: "Total number of rejected follow attempts by kind",
	}, []string{"kind"})
)

// Challenge outcomes.
const (
	ChallengeValid    = "valid"
	ChallengeInvalid  = "invalid"
	ChallengeRejected = "rejected"
	ChallengeLimited  = "limited"
)
