// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/intellitip/internal/adapters/cache"
	_ "go.trai.ch/intellitip/internal/adapters/config"
	_ "go.trai.ch/intellitip/internal/adapters/definition"
	_ "go.trai.ch/intellitip/internal/adapters/fs"
	_ "go.trai.ch/intellitip/internal/adapters/logger"
	_ "go.trai.ch/intellitip/internal/adapters/telemetry"
	_ "go.trai.ch/intellitip/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/intellitip/internal/app"
	_ "go.trai.ch/intellitip/internal/engine/hover"
)
