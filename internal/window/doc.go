// Package window owns the shared upcoming-event window and the policy for
// replacing it. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, read-side accessors.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: collaborator interfaces (SkipChecker, Invalidator), UpdateResult.
//   - errors.go: error types and helpers (IsContractViolation).
//   - filter.go: future-only filtering, timezone normalization, skip exclusion,
//     sorting and truncation.
//   - fallback.go: the decision whether a freshly fetched batch can be trusted.
//   - update.go: UpdateWindow, the sole mutation entry point.
//   - events.go: lifecycle event publishing (noop by default).
//   - status_report.go: Status projection for the HTTP layer.
//
// The window is replaced wholesale under the manager's lock; filtering is pure
// compute and runs outside the lock. Readers observe either the fully-old or
// fully-new window, never a partial splice.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (New/NewWithConfig, UpdateWindow, Upcoming, Status,
// Ready). Internal types are subject to change.
package window
