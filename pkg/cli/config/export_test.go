package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewRecallForTest creates a Recall config for testing purposes
func NewRecallForTest(policyFile string, replayDepth, topK, budgetChars int, timeout time.Duration) *Recall {
	return &Recall{
		policyFile:  policyFile,
		replayDepth: replayDepth,
		topK:        topK,
		budgetChars: budgetChars,
		timeout:     timeout,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, databaseID, prefix string) *Repository {
	return &Repository{
		backend:    backend,
		projectID:  projectID,
		databaseID: databaseID,
		prefix:     prefix,
	}
}
