package handlers

import (
	"job-board-api/internal/cache"
)

// Cache is the process-wide cache orchestrator. It is assigned at startup
// (and replaced by tests with one backed by an in-memory store), the same
// way database.DB is.
var Cache *cache.Orchestrator

// Tag construction lives with the call sites: which tags a read registers
// under and which tags a write must invalidate is entirely decided here, the
// cache subsystem has no notion of domain data dependencies.

// TagPublicJobs groups every cached variant (filters x pagination, plus the
// HTTP-level mirrors) of the public job listing.
const TagPublicJobs = "jobs:public"

// TagRecruiterJobs groups the cached listing variants of one recruiter's
// postings.
func TagRecruiterJobs(recruiterID string) string {
	return cache.BuildKey("recruiter", recruiterID, "jobs")
}

// TagJobApplications groups the cached applicant listings of one posting.
func TagJobApplications(jobID string) string {
	return cache.BuildKey("job", jobID, "applications")
}

// TagCandidateApplications groups one candidate's cached application
// listings.
func TagCandidateApplications(candidateID string) string {
	return cache.BuildKey("candidate", candidateID, "applications")
}

func keyJobPosting(id string) string {
	return cache.BuildKey("job", id)
}

func keyProfile(userID string) string {
	return cache.BuildKey("profile", userID)
}
