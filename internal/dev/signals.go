package dev

import "github.com/zoobzio/capitan"

// Server lifecycle signals.
var (
	// ServerStarted is emitted when the dev server begins listening.
	ServerStarted = capitan.NewSignal(
		"vbind.dev.started",
		"Dev server started",
	)

	// Reloaded is emitted after the template or data changed and the VM was rebuilt.
	Reloaded = capitan.NewSignal(
		"vbind.dev.reloaded",
		"Template reloaded",
	)

	// ReloadFailed is emitted when a rebuild fails; the previous VM stays live.
	ReloadFailed = capitan.NewSignal(
		"vbind.dev.reload.failed",
		"Template reload failed",
	)

	// EventHandled is emitted for every live input event.
	EventHandled = capitan.NewSignal(
		"vbind.dev.event",
		"Live input event handled",
	)
)

// Field keys for dev server events.
var (
	// KeyAddress is the listen address.
	KeyAddress = capitan.NewStringKey("address")

	// KeyFile is the file that triggered a reload.
	KeyFile = capitan.NewStringKey("file")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyTarget is the model node index of an input event.
	KeyTarget = capitan.NewIntKey("target")

	// KeyStatus is the outcome of an input event.
	KeyStatus = capitan.NewStringKey("status")

	// KeyClients is the number of connected clients.
	KeyClients = capitan.NewIntKey("clients")
)
