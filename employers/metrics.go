package employers

import (
	"math"

	"freelancehub/models"
)

var metricKeys = []string{"activeJobs", "totalApplications", "activeProjects", "draftJobs"}

// ComputeMetrics derives the dashboard counters from the employer's jobs.
func ComputeMetrics(jobs []models.Job) models.EmployerMetrics {
	var m models.EmployerMetrics
	for i := range jobs {
		j := &jobs[i]
		m.TotalApplications += len(j.Applications)
		switch j.Status {
		case models.JobOpen, models.JobPending:
			m.ActiveJobs++
		case models.JobPaused:
			m.DraftJobs++
		}
		if j.HasAcceptedApplication() && j.Status != models.JobCompleted && j.Status != models.JobCancelled {
			m.ActiveProjects++
		}
	}
	return m
}

// PickMetrics keeps the counters from a request body and drops everything
// else. A counter must be a whole number in [0, MaxInt32].
func PickMetrics(body map[string]any) map[string]int {
	out := map[string]int{}
	for _, k := range metricKeys {
		v, ok := body[k].(float64)
		if !ok || v < 0 || v > math.MaxInt32 || v != math.Trunc(v) {
			continue
		}
		out[k] = int(v)
	}
	return out
}

func asMap(m models.EmployerMetrics) map[string]int {
	return map[string]int{
		"activeJobs":        m.ActiveJobs,
		"totalApplications": m.TotalApplications,
		"activeProjects":    m.ActiveProjects,
		"draftJobs":         m.DraftJobs,
	}
}
