package provision

import (
	"fmt"

	"storeplane/internal/cluster"
)

// State is the aggregate lifecycle classification of a namespace.
type State string

const (
	StateProvisioning State = "PROVISIONING"
	StateReady        State = "READY"
	StateFailed       State = "FAILED"
)

// restartThreshold is the restart count past which a unit is considered
// crash-looping.
const restartThreshold = 5

// Evaluation is the result of classifying one status snapshot.
type Evaluation struct {
	State   State
	Message string
}

// Evaluate classifies a snapshot of workload units into an aggregate state.
// It is deterministic and side-effect-free; the snapshot is discarded after
// each call.
//
// A namespace where every unit is at least Running counts as READY even if
// readiness probes have not passed yet. Slow probes on freshly installed
// stores otherwise hold provisioning open for minutes after the workload
// is serving.
func Evaluate(units []cluster.PodStatus) Evaluation {
	if len(units) == 0 {
		return Evaluation{State: StateProvisioning, Message: "no units observed yet"}
	}

	for _, u := range units {
		if u.Phase == "Failed" {
			return Evaluation{State: StateFailed, Message: fmt.Sprintf("unit %s failed", u.Name)}
		}
		if u.Restarts > restartThreshold {
			return Evaluation{State: StateFailed, Message: fmt.Sprintf("unit %s restarted %d times", u.Name, u.Restarts)}
		}
	}

	allReady := true
	allRunning := true
	running := 0
	for _, u := range units {
		switch u.Phase {
		case "Succeeded":
			running++
		case "Running":
			running++
			if !u.Ready {
				allReady = false
			}
		default:
			allReady = false
			allRunning = false
		}
	}

	if allReady {
		return Evaluation{State: StateReady, Message: "all units ready"}
	}
	if allRunning {
		return Evaluation{State: StateReady, Message: "all units running, readiness probes pending"}
	}

	return Evaluation{State: StateProvisioning, Message: fmt.Sprintf("%d/%d units running", running, len(units))}
}
