package domain

// Scheduled is one pending entry in a Scheduler.
// Seq is assigned at enqueue time and orders entries that match the same trigger.
type Scheduled struct {
	Seq      uint64
	Decision Decision
}

// Scheduler is a persistent queue of pending Decisions.
// Add and Remove return new values; a Scheduler is never mutated in place,
// so older State snapshots keep seeing their own queue.
type Scheduler struct {
	entries []Scheduled
	nextSeq uint64
}

// RestoreScheduler rebuilds a Scheduler from persisted entries.
// nextSeq is raised above the highest entry so new sequence numbers never collide.
func RestoreScheduler(entries []Scheduled, nextSeq uint64) Scheduler {
	cp := make([]Scheduled, len(entries))
	copy(cp, entries)
	for _, e := range cp {
		if e.Seq >= nextSeq {
			nextSeq = e.Seq + 1
		}
	}
	return Scheduler{entries: cp, nextSeq: nextSeq}
}

// Add returns a new Scheduler with the decisions appended in order.
func (s Scheduler) Add(decisions ...Decision) Scheduler {
	if len(decisions) == 0 {
		return s
	}
	next := make([]Scheduled, len(s.entries), len(s.entries)+len(decisions))
	copy(next, s.entries)
	seq := s.nextSeq
	for _, d := range decisions {
		next = append(next, Scheduled{Seq: seq, Decision: d})
		seq++
	}
	return Scheduler{entries: next, nextSeq: seq}
}

// Remove returns a new Scheduler without the entry with the given sequence number.
func (s Scheduler) Remove(seq uint64) Scheduler {
	idx := -1
	for i, e := range s.entries {
		if e.Seq == seq {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	next := make([]Scheduled, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	return Scheduler{entries: next, nextSeq: s.nextSeq}
}

// Query returns the entries matching (phase, when) in enqueue order.
func (s Scheduler) Query(phase string, when Trigger) []Scheduled {
	return s.Filter(func(d Decision) bool {
		return d.Timing().Matches(phase, when)
	})
}

// Filter returns the entries whose decision satisfies pred, in enqueue order.
func (s Scheduler) Filter(pred func(Decision) bool) []Scheduled {
	var out []Scheduled
	for _, e := range s.entries {
		if pred(e.Decision) {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether an entry with the given sequence number is pending.
func (s Scheduler) Contains(seq uint64) bool {
	for _, e := range s.entries {
		if e.Seq == seq {
			return true
		}
	}
	return false
}

// Entries returns a copy of all pending entries.
func (s Scheduler) Entries() []Scheduled {
	out := make([]Scheduled, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of pending entries.
func (s Scheduler) Len() int { return len(s.entries) }

// NextSeq returns the sequence number the next Add will use.
func (s Scheduler) NextSeq() uint64 { return s.nextSeq }
