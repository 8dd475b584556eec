// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ucdstore/internal/adapters/config"
	_ "go.trai.ch/ucdstore/internal/adapters/logger"
	_ "go.trai.ch/ucdstore/internal/adapters/telemetry/progrock"
	// Register app nodes.
	_ "go.trai.ch/ucdstore/internal/app"
)
