package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type profileContextKey string

const ContextProfileKey profileContextKey = "performanceProfile"

type ProfileEvent struct {
	Name      string    `json:"name"`
	ElapsedMs int64     `json:"elapsedMs"`
	Time      time.Time `json:"time"`
}

type Profile struct {
	StartTime time.Time      `json:"-"`
	Events    []ProfileEvent `json:"events"`
	TotalMs   int64          `json:"totalMs"`
}

// NewProfile returns a profile and a func that stamps the total duration.
func NewProfile() (*Profile, func()) {
	p := &Profile{StartTime: time.Now()}
	return p, p.End
}

// GetProfile pulls the profile off the context. Returns nil when no profile
// was attached, so callers can mark stages unconditionally via Add.
func GetProfile(ctx context.Context) *Profile {
	p, ok := ctx.Value(ContextProfileKey).(*Profile)
	if !ok {
		return nil
	}
	return p
}

func (p *Profile) End() {
	p.TotalMs = time.Since(p.StartTime).Milliseconds()
}

// Add marks a named stage, recording time elapsed since the previous one.
// Safe on a nil profile.
func (p *Profile) Add(name string) {
	if p == nil {
		return
	}
	last := p.StartTime
	if len(p.Events) > 0 {
		last = p.Events[len(p.Events)-1].Time
	}
	now := time.Now()
	p.Events = append(p.Events, ProfileEvent{
		Name:      name,
		ElapsedMs: now.Sub(last).Milliseconds(),
		Time:      now,
	})
}

func (p *Profile) Print() {
	p.End()
	bytes, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(bytes))
}
