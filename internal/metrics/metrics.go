// Package metrics exposes Prometheus collectors for watch mode.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/certwatch-app/cw-sslcheck/internal/checker"
)

// Registry holds every cw-sslcheck collector plus the Go and process collectors
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CertificateValid,
		CertificateDaysRemaining,
		CertificateFreshness,
		CertificateExpirySeconds,
		CheckErrorsTotal,
		ChecksTotal,
		RunDuration,
		AgentInfo,
		URLsConfigured,
	)
}

var (
	// Certificate metrics

	// CertificateValid tracks whether the leaf certificate passed evaluation
	CertificateValid = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "certificate_valid",
		Help:      "Whether the certificate is valid (1=valid, 0=invalid)",
	}, []string{"url", "issuer"})

	// CertificateDaysRemaining tracks whole days until expiry
	CertificateDaysRemaining = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "certificate_days_remaining",
		Help:      "Whole days until the certificate expires",
	}, []string{"url"})

	// CertificateFreshness tracks the freshness state
	CertificateFreshness = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "certificate_freshness",
		Help:      "Certificate freshness (0=ok, 1=warning, 2=error)",
	}, []string{"url"})

	// CertificateExpirySeconds tracks certificate expiry as Unix timestamp
	CertificateExpirySeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "certificate_expiry_seconds",
		Help:      "Unix timestamp of certificate expiry",
	}, []string{"url"})

	// Check metrics

	// CheckErrorsTotal counts failed checks by error kind
	CheckErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "check_errors_total",
		Help:      "Total number of failed checks",
	}, []string{"kind"})

	// ChecksTotal counts completed checks by result
	ChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "checks_total",
		Help:      "Total number of checks",
	}, []string{"result"})

	// RunDuration tracks the duration of a full batch
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "run_duration_seconds",
		Help:      "Duration of a check run in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// Agent info metrics

	// AgentInfo provides agent metadata
	AgentInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "agent_info",
		Help:      "Agent information",
	}, []string{"version", "name_match"})

	// URLsConfigured tracks number of configured URLs
	URLsConfigured = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "sslcheck",
		Name:      "urls_configured",
		Help:      "Number of URLs being checked",
	})
)

// Record publishes a run's outcomes. Per-URL gauges are reset first so URLs
// that failed or were removed do not keep stale values.
func Record(outcomes []checker.Outcome, duration time.Duration) {
	CertificateValid.Reset()
	CertificateDaysRemaining.Reset()
	CertificateFreshness.Reset()
	CertificateExpirySeconds.Reset()

	for _, o := range outcomes {
		if o.Err != nil {
			CheckErrorsTotal.WithLabelValues(o.Err.Kind.String()).Inc()
			ChecksTotal.WithLabelValues("error").Inc()
			continue
		}
		if o.Verdict == nil {
			continue
		}

		v := o.Verdict
		valid := 0.0
		if v.Valid {
			valid = 1
		}
		CertificateValid.WithLabelValues(o.URL, v.Issuer).Set(valid)
		CertificateDaysRemaining.WithLabelValues(o.URL).Set(float64(v.DaysRemaining))
		CertificateFreshness.WithLabelValues(o.URL).Set(float64(v.Freshness))
		CertificateExpirySeconds.WithLabelValues(o.URL).Set(float64(v.NotAfter.Unix()))
		ChecksTotal.WithLabelValues("success").Inc()
	}

	RunDuration.Observe(duration.Seconds())
}

// SetAgentInfo records static agent metadata
func SetAgentInfo(version, nameMatch string, urls int) {
	AgentInfo.Reset()
	AgentInfo.WithLabelValues(version, nameMatch).Set(1)
	URLsConfigured.Set(float64(urls))
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
