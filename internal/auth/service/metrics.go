package service

import (
	"github.com/AlibekovAA/nexus-admin/backend/internal/observability/metrics"
)

func recordLogin(result string) {
	metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
}

func recordRegistration(result string) {
	metrics.RegistrationsTotal.WithLabelValues(result).Inc()
}

func recordRefresh(result string) {
	metrics.RefreshAttemptsTotal.WithLabelValues(result).Inc()
}

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

func incrementRefreshTokensIssued() {
	metrics.RefreshTokensIssued.Inc()
}

func incrementRefreshTokensUsed() {
	metrics.RefreshTokensUsed.Inc()
}

func incrementRefreshTokensReplayed() {
	metrics.RefreshTokensReplayed.Inc()
}

func addRefreshTokensRevoked(n int) {
	metrics.RefreshTokensRevoked.Add(float64(n))
}

func addRefreshTokensExpired(n int64) {
	metrics.RefreshTokensExpired.Add(float64(n))
}

func observeScanSize(n int) {
	metrics.RefreshTokenScanSize.Observe(float64(n))
}
