package layout

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingID is reported for appointments without an identity. They
	// are left out of the pass because the view cache is keyed by ID.
	ErrMissingID = errors.New("appointment has no id")
	// ErrDuplicateID is reported for every repeat of an ID already seen in
	// the same pass. Only the first occurrence is laid out.
	ErrDuplicateID = errors.New("duplicate appointment id")
	// ErrEditInProgress is returned when a pass or a second edit session is
	// requested while a title is being edited.
	ErrEditInProgress = errors.New("an edit session is in progress")
	// ErrLocked is returned when editing a locked appointment.
	ErrLocked = errors.New("appointment is locked")
	// ErrNotVisible is returned when editing an appointment absent from the
	// current pass.
	ErrNotVisible = errors.New("appointment is not in the current layout")
	// ErrNoSelection is returned when an edit is requested with no
	// appointment selected.
	ErrNoSelection = errors.New("no appointment selected")
)

// IntervalError reports an appointment that ends before it starts. The
// appointment is still laid out, as a one-slot box at its start.
type IntervalError struct {
	ID    string
	Start time.Time
	End   time.Time
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("appointment %q ends before it starts (%s > %s)",
		e.ID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}
