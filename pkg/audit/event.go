// Package audit provides audit logging for router configuration changes.
package audit

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Event represents an auditable configuration change event
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	User      string            `json:"user"`
	UserID    string            `json:"user_id,omitempty"`
	GuildID   string            `json:"guild_id,omitempty"`
	Device    string            `json:"device"`
	Operation string            `json:"operation"`
	Interface string            `json:"interface,omitempty"`
	Args      map[string]string `json:"args,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

// Filter defines criteria for querying audit events. Results are oldest
// first unless NewestFirst is set; Offset and Limit apply after ordering.
type Filter struct {
	Device      string
	User        string
	GuildID     string
	Operation   string
	Interface   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	NewestFirst bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, device, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Device:    device,
		Operation: operation,
	}
}

// WithUserID sets the chat user ID
func (e *Event) WithUserID(id string) *Event {
	e.UserID = id
	return e
}

// WithGuild sets the guild the command was issued from
func (e *Event) WithGuild(guildID string) *Event {
	e.GuildID = guildID
	return e
}

// WithInterface sets the interface name
func (e *Event) WithInterface(iface string) *Event {
	e.Interface = iface
	return e
}

// WithArgs records the command arguments
func (e *Event) WithArgs(args map[string]string) *Event {
	e.Args = args
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	e.Error = ""
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

// ArgsString renders Args as sorted key=value pairs.
func (e *Event) ArgsString() string {
	keys := make([]string, 0, len(e.Args))
	for k := range e.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Args[k])
	}
	return strings.Join(parts, " ")
}

// Matches reports whether event satisfies the filter's criteria. Ordering
// and paging are not considered.
func (f Filter) Matches(event *Event) bool {
	if f.Device != "" && event.Device != f.Device {
		return false
	}
	if f.User != "" && event.User != f.User && event.UserID != f.User {
		return false
	}
	if f.GuildID != "" && event.GuildID != f.GuildID {
		return false
	}
	if f.Operation != "" && event.Operation != f.Operation {
		return false
	}
	if f.Interface != "" && event.Interface != f.Interface {
		return false
	}
	if !f.StartTime.IsZero() && event.Timestamp.Before(f.StartTime) {
		return false
	}
	if !f.EndTime.IsZero() && event.Timestamp.After(f.EndTime) {
		return false
	}
	if f.SuccessOnly && !event.Success {
		return false
	}
	if f.FailureOnly && event.Success {
		return false
	}
	return true
}

// page applies ordering, offset and limit to already-filtered events.
func (f Filter) page(events []*Event) []*Event {
	if f.NewestFirst {
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
	}
	if f.Offset > 0 {
		if f.Offset >= len(events) {
			return []*Event{}
		}
		events = events[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(events) {
		events = events[:f.Limit]
	}
	return events
}

var idSeq atomic.Uint64

// generateID returns a unique ID within the process: the creation time plus
// a sequence number, so events created in the same clock tick never collide.
func generateID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), idSeq.Add(1))
}
