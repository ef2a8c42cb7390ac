package domain

import "time"

type State int

const (
	StateIdle State = iota
	StateClearing
	StateSeedingAgents
	StateSeedingReviews
	StateSeedingGalleries
	StateSeedingProperties
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClearing:
		return "clearing"
	case StateSeedingAgents:
		return "seeding_agents"
	case StateSeedingReviews:
		return "seeding_reviews"
	case StateSeedingGalleries:
		return "seeding_galleries"
	case StateSeedingProperties:
		return "seeding_properties"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// ItemResult is the outcome of one create or delete. Err is nil on success.
type ItemResult struct {
	Index int
	ID    string
	Err   error
}

func (r ItemResult) OK() bool { return r.Err == nil }

// ClearReport describes the reset of one collection.
type ClearReport struct {
	Collection string
	Removed    int
	Failed     int
	Err        error // listing failure; partial clears are tolerated
}

type StageReport struct {
	Stage      State
	Collection string
	Planned    int
	Items      []ItemResult
	Duration   time.Duration
}

func (s StageReport) Created() int {
	n := 0
	for _, it := range s.Items {
		if it.OK() {
			n++
		}
	}
	return n
}

func (s StageReport) Failed() int { return len(s.Items) - s.Created() }

type RunReport struct {
	RunID      string
	DatabaseID string
	StartedAt  time.Time
	FinishedAt time.Time
	State      State
	Cleared    []ClearReport
	Stages     []StageReport
}

// Counts maps collection name to the number of records created.
func (r RunReport) Counts() map[string]int {
	out := make(map[string]int, len(r.Stages))
	for _, s := range r.Stages {
		out[s.Collection] = s.Created()
	}
	return out
}

// RunSummary is the serializable view of a RunReport.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	DatabaseID string         `json:"database_id"`
	State      string         `json:"state"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Cleared    []ClearSummary `json:"cleared"`
	Stages     []StageSummary `json:"stages"`
}

type ClearSummary struct {
	Collection string `json:"collection"`
	Removed    int    `json:"removed"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
}

type StageSummary struct {
	Collection string         `json:"collection"`
	Stage      string         `json:"stage"`
	Planned    int            `json:"planned"`
	Created    int            `json:"created"`
	Failed     int            `json:"failed"`
	DurationMS int64          `json:"duration_ms"`
	Failures   map[int]string `json:"failures,omitempty"` // index -> error
}

func (r RunReport) Summary() RunSummary {
	out := RunSummary{
		RunID:      r.RunID,
		DatabaseID: r.DatabaseID,
		State:      r.State.String(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Cleared:    make([]ClearSummary, 0, len(r.Cleared)),
		Stages:     make([]StageSummary, 0, len(r.Stages)),
	}
	for _, c := range r.Cleared {
		cs := ClearSummary{Collection: c.Collection, Removed: c.Removed, Failed: c.Failed}
		if c.Err != nil {
			cs.Error = c.Err.Error()
		}
		out.Cleared = append(out.Cleared, cs)
	}
	for _, s := range r.Stages {
		ss := StageSummary{
			Collection: s.Collection,
			Stage:      s.Stage.String(),
			Planned:    s.Planned,
			Created:    s.Created(),
			Failed:     s.Failed(),
			DurationMS: s.Duration.Milliseconds(),
		}
		for _, it := range s.Items {
			if it.Err == nil {
				continue
			}
			if ss.Failures == nil {
				ss.Failures = map[int]string{}
			}
			ss.Failures[it.Index] = it.Err.Error()
		}
		out.Stages = append(out.Stages, ss)
	}
	return out
}
