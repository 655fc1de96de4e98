// Package session holds the development-session types exchanged with the
// rule/session layer at its interface boundary. Rule evaluation itself
// lives outside this module.
package session

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a development session.
type State string

// Session states.
const (
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Context describes the environment a session runs in. It is supplied by
// the caller when the session starts and handed to the rule layer with
// every rule application.
type Context struct {
	WorkingDirectory string            `json:"working_directory"`
	ProjectName      string            `json:"project_name,omitempty"`
	GitBranch        string            `json:"git_branch,omitempty"`
	Technologies     []string          `json:"technologies,omitempty"`
	Environment      map[string]string `json:"environment,omitempty"`
}

// Metrics accumulates per-session counters.
type Metrics struct {
	RulesApplied     int `json:"rules_applied"`
	FilesModified    int `json:"files_modified"`
	CommandsExecuted int `json:"commands_executed"`
	ErrorsCount      int `json:"errors_count"`
	WarningsCount    int `json:"warnings_count"`
}

// DevSession is one development session.
type DevSession struct {
	ID           uuid.UUID   `json:"id"`
	StartedAt    time.Time   `json:"started_at"`
	EndedAt      *time.Time  `json:"ended_at,omitempty"`
	Context      Context     `json:"context"`
	AppliedRules []uuid.UUID `json:"applied_rules,omitempty"`
	Metrics      Metrics     `json:"metrics"`
	State        State       `json:"state"`
}

// ExecutionResult is what the rule layer reports back for one applied
// rule.
type ExecutionResult struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
	Data     any           `json:"data,omitempty"`
}
