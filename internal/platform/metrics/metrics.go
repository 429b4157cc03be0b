package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	IdentitiesCreated   prometheus.Counter
	VisitsRegistered    *prometheus.CounterVec
	TeamsRegistered     *prometheus.CounterVec
	TeamSize            prometheus.Histogram
	RegistrationsFailed *prometheus.CounterVec
	NotificationsQueued prometheus.Counter
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	RequestLatency      *prometheus.HistogramVec
	RateLimited         *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg; tests pass a fresh prometheus.NewRegistry().
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IdentitiesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "visitreg_identities_created_total",
			Help: "Total number of accounts created through self-registration",
		}),
		VisitsRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitreg_visits_registered_total",
			Help: "Visits persisted, by site",
		}, []string{"site"}),
		TeamsRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitreg_teams_registered_total",
			Help: "Team registrations committed, by site",
		}, []string{"site"}),
		TeamSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "visitreg_team_size",
			Help:    "Roster size of committed team registrations, leader included",
			Buckets: []float64{2, 3, 5, 8, 13, 21},
		}),
		RegistrationsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitreg_registrations_failed_total",
			Help: "Registrations rejected before commit, by error code",
		}, []string{"code"}),
		NotificationsQueued: f.NewCounter(prometheus.CounterOpts{
			Name: "visitreg_notifications_queued_total",
			Help: "Site-manager notifications accepted by the queue",
		}),
		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitreg_notifications_sent_total",
			Help: "Notifications delivered, by channel",
		}, []string{"channel"}),
		NotificationsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitreg_notifications_failed_total",
			Help: "Notifications that could not be queued or delivered, by stage",
		}, []string{"stage"}),
		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visitreg_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitreg_rate_limited_total",
			Help: "Requests refused by rate limiting, by scope",
		}, []string{"scope"}),
	}
}

// IncrementIdentitiesCreated increments the accounts created counter by 1
func (m *Metrics) IncrementIdentitiesCreated() {
	m.IdentitiesCreated.Inc()
}

func (m *Metrics) IncrementVisits(site string, n int) {
	m.VisitsRegistered.WithLabelValues(site).Add(float64(n))
}

func (m *Metrics) ObserveTeam(site string, rosterSize int) {
	m.TeamsRegistered.WithLabelValues(site).Inc()
	m.TeamSize.Observe(float64(rosterSize))
}

func (m *Metrics) IncrementRegistrationFailed(code string) {
	m.RegistrationsFailed.WithLabelValues(code).Inc()
}

func (m *Metrics) IncrementNotificationQueued() {
	m.NotificationsQueued.Inc()
}

func (m *Metrics) IncrementNotificationSent(channel string) {
	m.NotificationsSent.WithLabelValues(channel).Inc()
}

// IncrementNotificationFailed counts a failure by pipeline stage, e.g.
// "enqueue" or "send".
func (m *Metrics) IncrementNotificationFailed(stage string) {
	m.NotificationsFailed.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveRequestLatency(method, route string, d time.Duration) {
	m.RequestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// IncrementRateLimited counts a refusal with scope "ip" or "login".
func (m *Metrics) IncrementRateLimited(scope string) {
	m.RateLimited.WithLabelValues(scope).Inc()
}
