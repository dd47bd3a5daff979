package metrics

import "github.com/gin-gonic/gin"

// Default holds the editor metrics served on /metrics.
var Default = NewRegistry()

var (
	augmentStarted   = Default.Counter("augment_started_total", "Augmentation calls started.", "field")
	augmentCompleted = Default.Counter("augment_completed_total", "Augmentation results merged into a draft.", "field")
	augmentFailed    = Default.Counter("augment_failed_total", "Augmentation calls that failed.", "field")
	augmentDuration  = Default.Histogram("augment_duration_ms", "Augmentation call duration in milliseconds.",
		100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000)
	exportsTotal   = Default.Counter("exports_total", "Rendered exports.", "format")
	exportDuration = Default.Histogram("export_duration_ms", "Export render duration in milliseconds.",
		10, 50, 100, 250, 500, 1000, 5000, 15000)
	savesTotal   = Default.Counter("saves_total", "Draft save attempts.", "outcome")
	sessionsOpen = Default.Gauge("editor_sessions_open", "Live editing sessions.")
)

func IncAugmentStarted(field string) { augmentStarted.Inc(field) }
func IncAugmentCompleted(field string) { augmentCompleted.Inc(field) }
func IncAugmentFailed(field string) { augmentFailed.Inc(field) }
func ObserveAugmentDurationMs(ms float64) { augmentDuration.Observe(ms) }
func IncExport(format string) { exportsTotal.Inc(format) }
func ObserveExportDurationMs(ms float64) { exportDuration.Observe(ms) }
func SetSessionsOpen(n int) { sessionsOpen.Set(int64(n)) }

// IncSave counts a save attempt by outcome: created, updated, invalid or failed.
func IncSave(outcome string) { savesTotal.Inc(outcome) }

// Handler serves the default registry.
func Handler() gin.HandlerFunc { return Default.Handler() }
