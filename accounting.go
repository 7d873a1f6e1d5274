package fairlock

// allot returns the slice allotment for a node of the given weight,
// proportional to the base slice. Never zero, so a ban can always expire.
func (l *Lock) allot(weight int) uint64 {
	a := l.slice * uint64(weight) / DefaultWeight
	if a == 0 {
		a = 1
	}
	return a
}

// chargeLocked adds the held duration, scaled by weight, to the leaf and
// every ancestor. Service is virtual time: a node of twice the reference
// weight accrues half as fast. The 1-tick floor keeps service moving even
// when a hold is shorter than the clock resolution, which keeps selection
// rotating.
func (l *Lock) chargeLocked(leaf int, held uint64) {
	for i := leaf; ; i = l.nodes[i].parent {
		nd := &l.nodes[i]
		if nd.weight > 0 {
			delta := held * DefaultWeight / uint64(nd.weight)
			if delta == 0 {
				delta = 1
			}
			nd.service += delta
		}
		if i == nd.parent {
			break
		}
	}
}

// banLocked bans every node on the path whose hold overran its allotment.
// The penalty grows with the overrun and shrinks with weight. Penalties are
// finite: a ban throttles a node, it never excludes it for good.
func (l *Lock) banLocked(leaf int, held, now uint64) {
	for i := leaf; ; i = l.nodes[i].parent {
		nd := &l.nodes[i]
		if nd.weight > 0 {
			if a := l.allot(nd.weight); held > a {
				nd.bannedUntil = now + (held-a)*DefaultWeight/uint64(nd.weight)
			}
		}
		if i == nd.parent {
			break
		}
	}
}
