package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"adhok_platform/internal/models/deliverable"
)

var (
	ErrNotFound        = errors.New("deliverable not found")
	ErrAlreadyTracking = errors.New("a tracking session is already open")
	ErrNotTracking     = errors.New("no open tracking session")
)

// Engine holds the deliverables of one workspace and applies status
// transitions and time accounting to them. Operations either fully
// apply (state change plus one activity entry) or leave the engine
// untouched. Activity entries are appended in invocation order.
type Engine struct {
	now          func() time.Time
	deliverables map[string]*deliverable.Deliverable
	order        []string
	activity     []string
}

func New(ds []deliverable.Deliverable) *Engine {
	e := &Engine{
		now:          time.Now,
		deliverables: make(map[string]*deliverable.Deliverable, len(ds)),
		order:        make([]string, 0, len(ds)),
	}
	for i := range ds {
		d := ds[i]
		e.deliverables[d.Id] = &d
		e.order = append(e.order, d.Id)
	}
	return e
}

// ChangeStatus sets the deliverable's status unconditionally. A reviewer
// may bounce a deliverable backward, so no forward-only check is made.
func (e *Engine) ChangeStatus(id string, status deliverable.Status) error {
	d, ok := e.deliverables[id]
	if !ok {
		return ErrNotFound
	}

	d.Status = status
	e.activity = append(e.activity, fmt.Sprintf("%s moved to %s", d.Title, status))
	return nil
}

// StartTracking opens a work session. At most one session may be open
// per deliverable.
func (e *Engine) StartTracking(id string) error {
	d, ok := e.deliverables[id]
	if !ok {
		return ErrNotFound
	}
	if d.IsTracking {
		return ErrAlreadyTracking
	}

	d.IsTracking = true
	d.CurrentSession = &deliverable.Session{StartTime: e.now()}
	e.activity = append(e.activity, fmt.Sprintf("Started tracking %s (%gh estimated)", d.Title, d.EstimatedHours))
	return nil
}

// StopTracking closes the open session, appending exactly one time entry
// with the supplied hours and adding them to the accumulated total.
func (e *Engine) StopTracking(id string, hoursLogged float64) error {
	d, ok := e.deliverables[id]
	if !ok {
		return ErrNotFound
	}
	if !d.IsTracking || d.CurrentSession == nil {
		return ErrNotTracking
	}

	end := e.now()
	d.TimeEntries = append(d.TimeEntries, deliverable.TimeEntry{
		StartTime:   d.CurrentSession.StartTime,
		EndTime:     &end,
		HoursLogged: hoursLogged,
	})
	d.ActualHours += hoursLogged
	d.IsTracking = false
	d.CurrentSession = nil
	e.activity = append(e.activity, fmt.Sprintf("Logged %gh on %s (%g/%gh)", hoursLogged, d.Title, d.ActualHours, d.EstimatedHours))
	return nil
}

func (e *Engine) Deliverable(id string) (deliverable.Deliverable, bool) {
	d, ok := e.deliverables[id]
	if !ok {
		return deliverable.Deliverable{}, false
	}
	return *d, true
}

// Deliverables returns the records in their original order.
func (e *Engine) Deliverables() []deliverable.Deliverable {
	out := make([]deliverable.Deliverable, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.deliverables[id])
	}
	return out
}

func (e *Engine) Activity() []string {
	return e.activity
}
