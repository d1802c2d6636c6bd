package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ListingsCreated counts listings created through the listing manager
var ListingsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "novatoken_listings_created_total",
		Help: "Total number of listings created",
	},
)

// SalesSettled counts completed settlements (listing sold + ownership transferred)
var SalesSettled = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "novatoken_sales_settled_total",
		Help: "Total number of sales settled",
	},
)

// ListingsCancelled counts cancelled listings
var ListingsCancelled = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "novatoken_listings_cancelled_total",
		Help: "Total number of listings cancelled",
	},
)

// SettlementConflicts counts settlement attempts rejected because the
// listing was no longer active
var SettlementConflicts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "novatoken_settlement_conflicts_total",
		Help: "Total number of settlement attempts rejected by the active-status check",
	},
)

// Database connection pool metrics
var (
	DBOpenConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "novatoken_db_open_connections",
			Help: "Number of open connections in the DB pool",
		},
		[]string{"db"},
	)

	DBIdleConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "novatoken_db_idle_connections",
			Help: "Number of idle connections in the DB pool",
		},
		[]string{"db"},
	)

	DBInUseConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "novatoken_db_in_use_connections",
			Help: "Number of in-use connections in the DB pool",
		},
		[]string{"db"},
	)
)

func init() {
	prometheus.MustRegister(ListingsCreated, SalesSettled, ListingsCancelled, SettlementConflicts)
	prometheus.MustRegister(DBOpenConns, DBIdleConns, DBInUseConns)
}
