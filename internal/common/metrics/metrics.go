// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	FlowMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_messages_total",
			Help: "Messages handled per industry and step they were received on",
		},
		[]string{"industry", "step"},
	)

	LeadLevels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_level_total",
			Help: "Scored messages per industry and resulting lead level",
		},
		[]string{"industry", "level"},
	)

	CRMActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_actions_total",
			Help: "CRM actions attempted per provider",
		},
		[]string{"provider", "action", "success"},
	)

	BroadcastSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_sends_total",
			Help: "Broadcast deliveries per channel and result",
		},
		[]string{"channel", "result"},
	)

	LeadAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_alerts_total",
			Help: "Internal hot-lead alerts per industry and delivery result",
		},
		[]string{"industry", "result"},
	)
)

// RecordCRMAction counts one CRM action outcome.
func RecordCRMAction(provider, action string, success bool) {
	CRMActions.WithLabelValues(provider, action, strconv.FormatBool(success)).Inc()
}

// RecordBroadcastSend counts one broadcast delivery attempt.
func RecordBroadcastSend(channel string, err error) {
	BroadcastSends.WithLabelValues(channel, sendResult(err)).Inc()
}

// RecordLeadAlert counts one internal lead alert delivery attempt.
func RecordLeadAlert(industry string, err error) {
	LeadAlerts.WithLabelValues(industry, sendResult(err)).Inc()
}

func sendResult(err error) string {
	if err != nil {
		return "failed"
	}
	return "sent"
}
