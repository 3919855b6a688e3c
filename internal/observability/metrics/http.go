// Package metrics 以 Prometheus 文本格式暴露 HTTP 层的请求指标，
// 不引入外部采集依赖。
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type sampleKey struct {
	handler string
	method  string
	code    string
}

// collector 聚合各处理器的请求计数与时延分布。
type collector struct {
	mu       sync.Mutex
	requests map[sampleKey]uint64
	buckets  []float64
	latency  map[string][]uint64
	sums     map[string]float64
	counts   map[string]uint64
}

var httpCollector = &collector{
	requests: make(map[sampleKey]uint64),
	buckets:  []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	latency:  make(map[string][]uint64),
	sums:     make(map[string]float64),
	counts:   make(map[string]uint64),
}

// Observe 记录一次 HTTP 请求的状态码与耗时。
func Observe(handler, method string, status int, duration time.Duration) {
	httpCollector.observe(handler, method, status, duration)
}

func (c *collector) observe(handler, method string, status int, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := sampleKey{handler: handler, method: method, code: strconv.Itoa(status)}
	c.requests[key]++

	seconds := duration.Seconds()
	hist := c.latency[handler]
	if hist == nil {
		hist = make([]uint64, len(c.buckets))
		c.latency[handler] = hist
	}
	for idx, bound := range c.buckets {
		if seconds <= bound {
			for i := idx; i < len(hist); i++ {
				hist[i]++
			}
			break
		}
	}
	c.sums[handler] += seconds
	c.counts[handler]++
}

// statusRecorder 捕获写出的状态码，缺省按 200 计。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware 把请求计量包在处理器外层。
func Middleware(handler string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(recorder, r)
		Observe(handler, r.Method, recorder.status, time.Since(start))
	}
}

// Handler 以 Prometheus 文本格式输出指标。
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = fmt.Fprint(w, httpCollector.render())
	})
}

func (c *collector) render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]sampleKey, 0, len(c.requests))
	for key := range c.requests {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].handler != keys[j].handler {
			return keys[i].handler < keys[j].handler
		}
		if keys[i].method != keys[j].method {
			return keys[i].method < keys[j].method
		}
		return keys[i].code < keys[j].code
	})

	handlers := make([]string, 0, len(c.counts))
	for handler := range c.counts {
		handlers = append(handlers, handler)
	}
	sort.Strings(handlers)

	var builder strings.Builder
	builder.Grow(1024)

	builder.WriteString("# HELP oktoagent_http_requests_total Total number of HTTP requests processed.\n")
	builder.WriteString("# TYPE oktoagent_http_requests_total counter\n")
	for _, key := range keys {
		builder.WriteString(fmt.Sprintf("oktoagent_http_requests_total{handler=%q,method=%q,code=%q} %d\n",
			key.handler, key.method, key.code, c.requests[key]))
	}

	builder.WriteString("# HELP oktoagent_http_request_duration_seconds HTTP request duration in seconds.\n")
	builder.WriteString("# TYPE oktoagent_http_request_duration_seconds histogram\n")
	for _, handler := range handlers {
		hist := c.latency[handler]
		for idx, bound := range c.buckets {
			builder.WriteString(fmt.Sprintf("oktoagent_http_request_duration_seconds_bucket{handler=%q,le=%q} %d\n",
				handler, strconv.FormatFloat(bound, 'g', -1, 64), hist[idx]))
		}
		builder.WriteString(fmt.Sprintf("oktoagent_http_request_duration_seconds_bucket{handler=%q,le=\"+Inf\"} %d\n",
			handler, c.counts[handler]))
		builder.WriteString(fmt.Sprintf("oktoagent_http_request_duration_seconds_sum{handler=%q} %s\n",
			handler, strconv.FormatFloat(c.sums[handler], 'g', -1, 64)))
		builder.WriteString(fmt.Sprintf("oktoagent_http_request_duration_seconds_count{handler=%q} %d\n",
			handler, c.counts[handler]))
	}

	return builder.String()
}
