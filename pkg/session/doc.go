/*
Package session implements the interaction registry for suspended pipelines.

A Registry correlates a SessionID with the SessionContext of a pipeline that is
waiting for external input. Contexts live in a ports.SessionStore (memory, file
or Redis), per-session locks serialize resume attempts, and an optional
DistributedLocker extends that guarantee across replicas.

Sessions that are never resumed expire after a TTL; Sweep removes them and a
Janitor runs Sweep periodically.
*/
package session
