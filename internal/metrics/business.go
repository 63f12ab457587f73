// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus business metrics for contactd.
// HTTP-level metrics live in the API middleware; these counters track
// domain events. No per-user labels, to keep cardinality bounded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignupsTotal counts account registrations by result.
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contactd_signups_total",
		Help: "Total number of signup attempts, by result (created/duplicate/error).",
	}, []string{"result"})

	// LoginsTotal counts login attempts by result.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contactd_logins_total",
		Help: "Total number of login attempts, by result (ok/bad_credentials/unconfirmed/error).",
	}, []string{"result"})

	// EmailsTotal counts outbound confirmation emails by result.
	EmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contactd_emails_total",
		Help: "Total number of outbound emails, by result (sent/error).",
	}, []string{"result"})

	// ContactsCreatedTotal counts created contacts.
	ContactsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contactd_contacts_created_total",
		Help: "Total number of contacts created.",
	})

	// UserCacheTotal counts current-user cache lookups by outcome.
	UserCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contactd_user_cache_total",
		Help: "Total number of current-user cache lookups, by outcome (hit/miss).",
	}, []string{"outcome"})
)

// RecordSignup increments the signup counter.
func RecordSignup(result string) {
	SignupsTotal.WithLabelValues(result).Inc()
}

// RecordLogin increments the login counter.
func RecordLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

// RecordEmail increments the outbound email counter.
func RecordEmail(result string) {
	EmailsTotal.WithLabelValues(result).Inc()
}

// RecordUserCache increments the user cache lookup counter.
func RecordUserCache(outcome string) {
	UserCacheTotal.WithLabelValues(outcome).Inc()
}
