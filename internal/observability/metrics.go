package observability

import "github.com/prometheus/client_golang/prometheus"

// Domain counters for the import and alert pipeline. Label values are fixed
// small sets to keep cardinality bounded.
var (
	// ImportRows counts CSV data rows by result: imported|skipped.
	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "CSV data rows processed, by result.",
		},
		[]string{"result"},
	)

	// PricesRecorded counts persisted price observations by source: import|api.
	PricesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prices_recorded_total",
			Help: "Price observations written, by write path.",
		},
		[]string{"source"},
	)

	// PriceDrops counts detected price drops.
	PriceDrops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_drops_detected_total",
		Help: "Price drops detected against the previous observation.",
	})

	// AlertNotifications counts persisted notification rows.
	AlertNotifications = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "alert_notifications_total",
		Help: "Price-drop notifications persisted.",
	})

	// AlertEmails counts email attempts by result: sent|failed|skipped.
	AlertEmails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_emails_total",
			Help: "Price-drop email dispatch attempts, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(ImportRows, PricesRecorded, PriceDrops, AlertNotifications, AlertEmails)
}
