package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	apiRequestsTotal        *prometheus.CounterVec
	apiLatencySeconds       *prometheus.HistogramVec
	apiErrorsTotal          *prometheus.CounterVec
	uploadLatencySeconds    prometheus.Histogram
	uploadRequestsTotal     *prometheus.CounterVec
	uploadRejectedTotal     *prometheus.CounterVec
	approvalTransitionTotal *prometheus.CounterVec
	assignmentChangesTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholartrack_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scholartrack_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholartrack_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scholartrack_upload_latency_seconds",
			Help:    "Time spent validating and storing submission files.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholartrack_uploads_total",
			Help: "Accepted submission uploads by detected content type.",
		}, []string{"content_type"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholartrack_upload_rejected_total",
			Help: "Rejected submission uploads by reason.",
		}, []string{"reason"})

		approvalTransitionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholartrack_approval_transitions_total",
			Help: "Submission approval status changes.",
		}, []string{"from", "to"})

		assignmentChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholartrack_assignment_changes_total",
			Help: "Assignment edges added or removed by reconciliation.",
		}, []string{"change"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			uploadLatencySeconds,
			uploadRequestsTotal,
			uploadRejectedTotal,
			approvalTransitionTotal,
			assignmentChangesTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// UploadLatency exposes the submission upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// UploadRequests exposes the accepted upload counter.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the rejected upload counter.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// ApprovalTransitions exposes the approval status transition counter.
func ApprovalTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return approvalTransitionTotal
}

// AssignmentChanges exposes the assignment reconciliation counter.
func AssignmentChanges() *prometheus.CounterVec {
	RegisterMetrics()
	return assignmentChangesTotal
}
