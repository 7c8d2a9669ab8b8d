package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeApplied  = "applied"
	OutcomePreview  = "preview"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studybuilder_resolutions_total",
			Help: "Number of template resolutions by outcome.",
		},
		[]string{"outcome"},
	)

	ResolutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studybuilder_resolution_duration_seconds",
			Help:    "Time taken by the content inclusion resolver.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	FiredRules = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studybuilder_fired_rules",
			Help:    "Number of dependency rules fired per resolution.",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	OrphanedQuestionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studybuilder_orphaned_questions_total",
			Help: "Included questions no template line reaches, appended after the structural walk.",
		},
	)

	SnapshotIssuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studybuilder_snapshot_issues_total",
			Help: "Template and rule integrity issues found before resolution, by kind.",
		},
		[]string{"kind"},
	)

	QuestionnaireLinesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studybuilder_questionnaire_lines_total",
			Help: "Questionnaire lines persisted for studies.",
		},
	)

	SnapshotCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studybuilder_snapshot_cache_total",
			Help: "Template structure cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		ResolutionsTotal,
		ResolutionDuration,
		FiredRules,
		OrphanedQuestionsTotal,
		SnapshotIssuesTotal,
		QuestionnaireLinesTotal,
		SnapshotCacheTotal,
	)
}
