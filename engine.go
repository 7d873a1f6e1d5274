package fairlock

// parkLocked queues the leaf for the next grants: pending rises on every
// node up to the root so the selection descent can reach the leaf. Returns
// the channel the caller must block on after dropping the mutex.
func (l *Lock) parkLocked(leaf int) chan struct{} {
	for i := leaf; ; i = l.nodes[i].parent {
		l.nodes[i].pending++
		if i == l.nodes[i].parent {
			break
		}
	}
	l.waiting++
	return l.nodes[leaf].ready
}

// pickNextLocked walks from the root towards the parked leaf that should
// run next. At every level the pending child with the least service wins.
// Banned children lose to unbanned ones; when every candidate is banned
// the soonest to expire wins. Ties go to the lowest id, which is the scan
// order since children are sorted.
//
// Must only be called while waiters exist.
func (l *Lock) pickNextLocked(now uint64) int {
	cur := 0
	for !l.nodes[cur].leaf {
		best, banned := -1, -1
		var bestService, bannedExpiry uint64
		for _, c := range l.nodes[cur].children {
			ch := &l.nodes[c]
			if ch.pending == 0 {
				continue
			}
			if ch.bannedUntil > now {
				if banned == -1 || ch.bannedUntil < bannedExpiry {
					banned, bannedExpiry = c, ch.bannedUntil
				}
				continue
			}
			if best == -1 || ch.service < bestService {
				best, bestService = c, ch.service
			}
		}
		if best == -1 {
			best = banned
		}
		cur = best
	}
	return cur
}

// grantLocked hands the lock to the leaf and opens a fresh slice window on
// its whole path.
func (l *Lock) grantLocked(leaf int, now uint64) {
	l.holder = leaf
	l.grantedAt = now
	l.nodes[leaf].grants++
	for i := leaf; ; i = l.nodes[i].parent {
		nd := &l.nodes[i]
		if nd.weight > 0 {
			nd.sliceEnd = now + l.allot(nd.weight)
		}
		if i == nd.parent {
			break
		}
	}
}

// unparkLocked removes the leaf from the wait state, grants it the lock
// and wakes exactly that leaf. The buffered channel makes the send
// non-blocking.
func (l *Lock) unparkLocked(leaf int, now uint64) {
	for i := leaf; ; i = l.nodes[i].parent {
		l.nodes[i].pending--
		if i == l.nodes[i].parent {
			break
		}
	}
	l.waiting--
	l.grantLocked(leaf, now)
	l.nodes[leaf].ready <- struct{}{}
}
