// Package status defines the lifecycle states shared by every node of an
// action tree and the directions in which an action can be executed.
package status

import (
	"fmt"
	"strings"
)

// Status is the execution state of a command or the derived state of a step.
// The numeric values are the ones exchanged with remote observers.
type Status int

const (
	Completed Status = iota
	Processing
	Initialized
	Invalid
	Error
	// WaitingForResponse marks commands suspended on a user prompt.
	WaitingForResponse
)

// rank orders statuses from best to worst. It differs from the wire value
// only for WaitingForResponse, which sits between Initialized and Invalid.
var rank = map[Status]int{
	Completed:          0,
	Processing:         1,
	Initialized:        2,
	WaitingForResponse: 3,
	Invalid:            4,
	Error:              5,
}

var names = map[Status]string{
	Completed:          "COMPLETED",
	Processing:         "PROCESSING",
	Initialized:        "INITIALIZED",
	Invalid:            "INVALID",
	Error:              "ERROR",
	WaitingForResponse: "WAITING_FOR_RESPONSE",
}

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	_, ok := rank[s]
	return ok
}

// WorseThan reports whether s ranks strictly worse than other.
func (s Status) WorseThan(other Status) bool {
	return rank[s] > rank[other]
}

// Failed reports whether the status halts an action run.
func (s Status) Failed() bool {
	return s == Invalid || s == Error
}

// Worst returns the worst status of the given set. An empty set is Completed.
func Worst(statuses ...Status) Status {
	worst := Completed
	for _, s := range statuses {
		if s.WorseThan(worst) {
			worst = s
		}
	}
	return worst
}

// Aggregate derives the status of a group from the statuses of its members:
// the worst member status, except that a group whose worst member is
// Initialized but that has at least one Completed member reads as Processing.
func Aggregate(statuses []Status) Status {
	worst := Worst(statuses...)
	if worst != Initialized {
		return worst
	}
	for _, s := range statuses {
		if s == Completed {
			return Processing
		}
	}
	return worst
}

// Parse converts a status name or its numeric wire value into a Status.
func Parse(v any) (Status, error) {
	switch value := v.(type) {
	case Status:
		return value, nil
	case int:
		return fromInt(value)
	case int64:
		return fromInt(int(value))
	case float64:
		if value != float64(int(value)) {
			return 0, fmt.Errorf("status %v is not an integer", value)
		}
		return fromInt(int(value))
	case string:
		upper := strings.ToUpper(strings.TrimSpace(value))
		for s, name := range names {
			if name == upper {
				return s, nil
			}
		}
		return 0, fmt.Errorf("unknown status %q", value)
	default:
		return 0, fmt.Errorf("unsupported status value of type %T", v)
	}
}

func fromInt(v int) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return 0, fmt.Errorf("unknown status value %d", v)
	}
	return s, nil
}

// Execution is the direction in which the command cursor moves.
type Execution int

const (
	Forward Execution = iota
	Backward
	Pause
)

// String returns the canonical upper-case name of the direction.
func (e Execution) String() string {
	switch e {
	case Forward:
		return "FORWARD"
	case Backward:
		return "BACKWARD"
	case Pause:
		return "PAUSE"
	default:
		return fmt.Sprintf("Execution(%d)", int(e))
	}
}
