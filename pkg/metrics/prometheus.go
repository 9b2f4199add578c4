// Package metrics provides Prometheus metrics for the tier list service.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation results.
const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
)

// Manager owns every collector registered by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ranking engine
	mutations       *prometheus.CounterVec
	historySteps    *prometheus.CounterVec
	h2hComparisons  *prometheus.CounterVec
	h2hFinishes     prometheus.Counter
	idempotentHits  prometheus.Counter
	importsRejected prometheus.Counter

	// Sessions and catalog
	activeSessions     prometheus.Gauge
	sessionsCreated    prometheus.Counter
	datasetReloads     *prometheus.CounterVec
	datasetContestants prometheus.Gauge

	// Autosave queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Autosave workers
	workerActive      prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter
	autosavesComplete prometheus.Counter

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // package-level recorders write here

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry

func init() { //nolint:gochecknoinits // recorders must work before main wires anything
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates and registers every collector.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tierlist",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.mutations = auto.NewCounterVec(m.counterOpts("mutations_total",
		"Tier mutations by operation and result (applied or noop)"), []string{"op", "result"})
	m.historySteps = auto.NewCounterVec(m.counterOpts("history_steps_total",
		"Undo and redo requests by direction and result"), []string{"direction", "result"})
	m.h2hComparisons = auto.NewCounterVec(m.counterOpts("h2h_comparisons_total",
		"Head-to-head comparisons by outcome (choose or skip)"), []string{"outcome"})
	m.h2hFinishes = auto.NewCounter(m.counterOpts("h2h_finishes_total",
		"Head-to-head rankings applied to tiers"))
	m.idempotentHits = auto.NewCounter(m.counterOpts("idempotent_replays_total",
		"Mutations skipped because their idempotency key was already seen"))
	m.importsRejected = auto.NewCounter(m.counterOpts("imports_rejected_total",
		"Imported or loaded rankings rejected by shape validation"))

	m.activeSessions = auto.NewGauge(m.gaugeOpts("active_sessions", "Sessions currently held in memory"))
	m.sessionsCreated = auto.NewCounter(m.counterOpts("sessions_created_total", "Sessions created"))
	m.datasetReloads = auto.NewCounterVec(m.counterOpts("dataset_reloads_total",
		"Contestant catalog reloads by result"), []string{"result"})
	m.datasetContestants = auto.NewGauge(m.gaugeOpts("dataset_contestants", "Contestants in the loaded catalog"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("autosave_queue_size", "Pending autosave events"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("autosave_queue_capacity", "Autosave queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("autosave_queue_utilization_ratio", "Autosave queue size over capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("autosave_enqueued_total", "Autosave events enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("autosave_dequeued_total", "Autosave events dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("autosave_enqueue_errors_total",
		"Autosave events dropped because the queue was full or closed"))

	m.workerActive = auto.NewGauge(m.gaugeOpts("autosave_workers", "Autosave workers running"))
	m.workerLatency = auto.NewHistogram(m.histogramOpts("autosave_latency_milliseconds", "Time to persist one autosave event"))
	m.workerErrors = auto.NewCounter(m.counterOpts("autosave_errors_total", "Autosave events that failed to persist"))
	m.autosavesComplete = auto.NewCounter(m.counterOpts("autosaves_total", "Autosave events persisted"))

	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"Ranking store latency by operation"), []string{"op"})
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total",
		"Ranking store failures by operation"), []string{"op"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and type"), []string{"component", "error_type"})

	m.systemMemory = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes in use"))
	m.systemGoroutines = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Goroutines running"))
}

func result(changed bool) string {
	if changed {
		return ResultApplied
	}
	return ResultNoop
}

// RecordMutation counts one tier mutation.
func RecordMutation(op string, changed bool) {
	globalManager.mutations.WithLabelValues(op, result(changed)).Inc()
}

// RecordHistoryStep counts an undo or redo.
func RecordHistoryStep(direction string, changed bool) {
	globalManager.historySteps.WithLabelValues(direction, result(changed)).Inc()
}

func RecordHeadToHeadComparison(outcome string) {
	globalManager.h2hComparisons.WithLabelValues(outcome).Inc()
}

func RecordHeadToHeadFinish() {
	globalManager.h2hFinishes.Inc()
}

func RecordIdempotentReplay() {
	globalManager.idempotentHits.Inc()
}

func RecordImportRejected() {
	globalManager.importsRejected.Inc()
}

func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// RecordDatasetReload counts a catalog reload and, on success, its size.
func RecordDatasetReload(ok bool, contestants int) {
	if !ok {
		globalManager.datasetReloads.WithLabelValues("error").Inc()
		return
	}
	globalManager.datasetReloads.WithLabelValues("ok").Inc()
	globalManager.datasetContestants.Set(float64(contestants))
}

func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

func RecordAutosave() {
	globalManager.autosavesComplete.Inc()
}

// RecordStoreOperation observes a store call and counts it as failed when err is set.
func RecordStoreOperation(op string, latencyMs float64, err error) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMetrics samples heap and goroutine gauges.
func UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemory.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutines.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the registry served at /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
