package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadsTotal       atomic.Uint64
	deletesTotal       atomic.Uint64
	downloadsTotal     atomic.Uint64
	shareAccessesTotal atomic.Uint64
	quotaRejectsTotal  atomic.Uint64

	uploadBytes = newHistogram([]float64{
		64 << 10, 256 << 10, 1 << 20, 4 << 20, 16 << 20, 64 << 20, 256 << 20,
	})
)

// IncUpload increments the upload counter and records the payload size.
func IncUpload(sizeBytes int64) {
	uploadsTotal.Add(1)
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	uploadBytes.Observe(float64(sizeBytes))
}

// IncDelete increments the hard-delete counter.
func IncDelete() {
	deletesTotal.Add(1)
}

// IncDownload increments the payload-delivery counter.
func IncDownload() {
	downloadsTotal.Add(1)
}

// IncShareAccess increments the public share access counter.
func IncShareAccess() {
	shareAccessesTotal.Add(1)
}

// IncQuotaReject increments the quota rejection counter.
func IncQuotaReject() {
	quotaRejectsTotal.Add(1)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "file_uploads_total", "Total files uploaded", uploadsTotal.Load())
	writeCounter(&buf, "file_deletes_total", "Total files hard-deleted", deletesTotal.Load())
	writeCounter(&buf, "file_downloads_total", "Total payload deliveries", downloadsTotal.Load())
	writeCounter(&buf, "share_accesses_total", "Total public share accesses", shareAccessesTotal.Load())
	writeCounter(&buf, "quota_rejects_total", "Total uploads rejected by quota", quotaRejectsTotal.Load())
	writeHistogram(&buf, "upload_size_bytes", "Uploaded payload size in bytes", uploadBytes.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	// counts holds per-bucket tallies; rendering accumulates them.
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
