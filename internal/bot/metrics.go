package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	CommandsProcessed    *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	ReportsSent          *prometheus.CounterVec
	ReportChunksFailed   prometheus.Counter
	SheetReadDuration    prometheus.Histogram
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		CommandsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "report_bot_commands_processed_total",
			Help: "Total number of commands processed",
		}, []string{"command"}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "report_bot_errors_total",
			Help: "Total number of processing errors",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "report_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		ReportsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "report_bot_reports_sent_total",
			Help: "Reports delivered, labelled by what triggered them",
		}, []string{"origin"}),

		ReportChunksFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "report_bot_report_chunks_failed_total",
			Help: "Report chunks that failed to deliver after retries",
		}),

		SheetReadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "report_bot_sheet_read_duration_seconds",
			Help:    "Time spent reading the task sheet",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
