package users

import "freelancehub/models"

// ComputeMetrics derives a freelancer's counters from the jobs they applied
// to and the reviews on their profile.
func ComputeMetrics(freelancerID string, jobs []models.Job, reviews []models.Review) models.FreelancerMetrics {
	m := models.FreelancerMetrics{TotalRating: models.AverageRating(reviews)}
	for i := range jobs {
		a := jobs[i].ApplicationBy(freelancerID)
		if a == nil {
			continue
		}
		switch a.Status {
		case models.ApplicationApplied:
			m.PendingApplications++
		case models.ApplicationAccepted:
			switch jobs[i].Status {
			case models.JobCompleted:
				m.CompletedProjects++
			case models.JobCancelled:
			default:
				m.ActiveProjects++
			}
		}
	}
	return m
}
