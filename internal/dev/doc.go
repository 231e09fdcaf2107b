// Package dev provides the live development server.
//
// The server renders a template against its store, keeps a websocket open
// to every browser and replays input events from those browsers into the
// engine. Every event and every reload broadcasts the re-rendered mount
// element to all clients.
//
// # Architecture
//
//   - Server: owns the VM, serializes engine access, routes HTTP with chi
//   - LiveHub: websocket client registry and broadcast
//   - FileWatcher: fsnotify watch of the template and data files
//
// # Usage
//
//	srv, err := dev.NewServer(ctx, dev.ServerOptions{Config: cfg, Loader: loader})
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//	return srv.Start(ctx)
//
// # Live Protocol
//
// The browser connects to /_vbind/live via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "input", "target": 0, "value": "..."} // client: input event on the n-th model node
//	{"type": "render", "html": "..."}              // server: new inner HTML of the mount
//	{"type": "error", "error": "..."}              // server: rejected event or failed reload
package dev
