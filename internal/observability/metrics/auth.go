package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts by result",
		},
		[]string{"result"},
	)

	RefreshAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_refresh_attempts_total",
			Help: "Total number of refresh attempts by result",
		},
		[]string{"result"},
	)

	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	RefreshTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_issued_total",
			Help: "Total number of refresh tokens persisted",
		},
	)

	RefreshTokensUsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_used_total",
			Help: "Total number of refresh tokens consumed by rotation",
		},
	)

	RefreshTokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_revoked_total",
			Help: "Total number of refresh tokens deleted by logout",
		},
	)

	RefreshTokensExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_expired_total",
			Help: "Total number of expired refresh tokens swept on persist",
		},
	)

	RefreshTokensReplayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_replayed_total",
			Help: "Total number of refresh tokens lost to a concurrent consume",
		},
	)

	RefreshTokenScanSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_token_scan_size",
			Help:    "Number of active refresh token records hash-verified per lookup",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	JWTValidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jwt_validations_total",
			Help: "Total number of JWT validations",
		},
	)

	JWTValidationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jwt_validations_failed_total",
			Help: "Total number of failed JWT validations by reason",
		},
		[]string{"reason"},
	)

	AuthorizationDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_denied_total",
			Help: "Total number of requests rejected by the role guard",
		},
		[]string{"required_role"},
	)
)
