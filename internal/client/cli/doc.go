// Package cli provides the interactive stockkeeper client.
//
// It wires configuration, the local SQLite store, the remote store chosen
// by the config (gRPC gateway, direct Postgres or in-memory), the sync
// orchestrator and the inventory service, then runs a line-oriented REPL.
//
// One sync runs at start and then once per SyncInterval in the background.
// A ping watcher tracks whether the remote is reachable and the prompt
// shows the resulting online/offline mode. All edits go to the local store
// first, so every command except sync and backup works offline.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command list.
package cli
