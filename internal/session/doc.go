// Package session implements the analysis session state machine.
//
// A Controller owns the selected file, the analysis parameters, and at most
// one in-flight request. Stages advance Idle → FileSelected → Uploading →
// Processing → Complete, with Error reachable from Uploading and Processing.
// Transfer events from the upload tracker drive the transitions; events that
// belong to an earlier attempt are discarded.
//
// Observers receive immutable Snapshots after every transition, in order, and
// never while the controller's lock is held, so they may call back into the
// controller.
package session
