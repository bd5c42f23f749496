// Package syncer reconciles the local SQLite store with the remote store.
//
// A cycle detects local changes since the cursor, pushes them in the order
// categories, hardware, notes, audit logs, then pulls every remote
// collection and merges it into the local store last-write-wins by
// updated_at. The cursor advances only when both halves succeed.
//
//	o := syncer.NewOrchestrator(db, repos, store, logger, syncer.Options{RemoteTimeout: 15 * time.Second})
//	go o.Start(ctx, time.Minute)
//	res, err := o.RunSync(ctx) // manual trigger
package syncer
