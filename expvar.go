package swarm

import (
	"expvar"
)

// These may be attached to an Engine someday.
var (
	superSeedAssignments      = expvar.NewInt("swarmSuperSeedAssignments")
	superSeedUpdatesCollapsed = expvar.NewInt("swarmSuperSeedUpdatesCollapsed")
	superSeedEventWakes       = expvar.NewInt("swarmSuperSeedEventWakes")

	driverTicks = expvar.NewInt("swarmDriverTicks")
)
