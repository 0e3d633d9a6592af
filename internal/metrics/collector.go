// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。nil *Collector 上的所有 Record 方法都是空操作。
type Collector struct {
	// 组件选择指标
	selectionsTotal *prometheus.CounterVec
	selectionErrors *prometheus.CounterVec

	// 数据集指标
	datasetSplits *prometheus.CounterVec
	datasetItems  *prometheus.GaugeVec

	// 模型元数据指标
	metadataFetchDuration *prometheus.HistogramVec

	// 缓存指标
	cacheRequests *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器并注册到 reg。reg 为 nil 时使用独立的新 Registry。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.selectionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "component_selections_total",
			Help:      "Total number of component variants selected from configuration",
		},
		[]string{"component", "variant"},
	)

	c.selectionErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "component_selection_errors_total",
			Help:      "Total number of failed component selections",
		},
		[]string{"component", "code"},
	)

	c.datasetSplits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_splits_total",
			Help:      "Total number of dataset split resolutions",
		},
		[]string{"split", "status"}, // status: loaded, missing
	)

	c.datasetItems = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_items",
			Help:      "Number of items in the most recently loaded split",
		},
		[]string{"split"},
	)

	c.metadataFetchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "metadata_fetch_duration_seconds",
			Help:      "Model metadata fetch duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"source"}, // source: local, remote, cache
	)

	c.cacheRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Total number of cache lookups",
		},
		[]string{"cache", "result"}, // result: hit, miss, error
	)

	return c
}

// =============================================================================
// 📝 记录方法
// =============================================================================

// RecordSelection 记录一次组件选择
func (c *Collector) RecordSelection(component, variant string) {
	if c == nil {
		return
	}
	c.selectionsTotal.WithLabelValues(component, variant).Inc()
}

// RecordSelectionError 记录一次失败的组件选择
func (c *Collector) RecordSelectionError(component, code string) {
	if c == nil {
		return
	}
	c.selectionErrors.WithLabelValues(component, code).Inc()
}

// RecordSplit 记录数据集切分的加载结果
func (c *Collector) RecordSplit(split string, loaded bool, items int) {
	if c == nil {
		return
	}
	if !loaded {
		c.datasetSplits.WithLabelValues(split, "missing").Inc()
		return
	}
	c.datasetSplits.WithLabelValues(split, "loaded").Inc()
	c.datasetItems.WithLabelValues(split).Set(float64(items))
}

// RecordMetadataFetch 记录模型元数据获取耗时
func (c *Collector) RecordMetadataFetch(source string, duration time.Duration) {
	if c == nil {
		return
	}
	c.metadataFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(cache string) {
	if c == nil {
		return
	}
	c.cacheRequests.WithLabelValues(cache, "hit").Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss(cache string) {
	if c == nil {
		return
	}
	c.cacheRequests.WithLabelValues(cache, "miss").Inc()
}

// RecordCacheError 记录缓存访问失败
func (c *Collector) RecordCacheError(cache string) {
	if c == nil {
		return
	}
	c.cacheRequests.WithLabelValues(cache, "error").Inc()
	c.logger.Debug("cache request failed", zap.String("cache", cache))
}
