package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kits-erp/marks-registry/internal/models"
)

var (
	UploadRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marks", Name: "upload_rows_total", Help: "Sheet rows processed by outcome",
	}, []string{"component", "outcome"})
	UploadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "marks", Name: "upload_errors_total", Help: "Rejected or failed sheet uploads",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "marks", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	MissingMarks = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "marks", Name: "missing_records", Help: "Records still holding the default value for a component",
	}, []string{"component"})
	ExceedingMarks = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "marks", Name: "exceeding_records", Help: "Records above the subject maximum for a component",
	}, []string{"component"})
	LockedRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "marks", Name: "locked_records", Help: "Locked marks records",
	})
)

func init() {
	prometheus.MustRegister(UploadRows, UploadErrors, DBPing, MissingMarks, ExceedingMarks, LockedRecords)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// SetCompletion publishes a completion snapshot.
func SetCompletion(c models.Completion) {
	MissingMarks.WithLabelValues(string(models.CIE)).Set(float64(c.MissingCIE))
	MissingMarks.WithLabelValues(string(models.ISE)).Set(float64(c.MissingISE))
	MissingMarks.WithLabelValues(string(models.ESE)).Set(float64(c.MissingESE))
	ExceedingMarks.WithLabelValues(string(models.CIE)).Set(float64(c.ExceedCIE))
	ExceedingMarks.WithLabelValues(string(models.ISE)).Set(float64(c.ExceedISE))
	ExceedingMarks.WithLabelValues(string(models.ESE)).Set(float64(c.ExceedESE))
	LockedRecords.Set(float64(c.LockedCount))
}
