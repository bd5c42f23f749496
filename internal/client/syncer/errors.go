package syncer

import "errors"

var (
	// ErrSyncInProgress is returned when a cycle is triggered while another
	// one is still running.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrPushFailed     = errors.New("push failed")
	ErrPullFailed     = errors.New("pull failed")
)
