package game

// Assigner maps players to the four question slots for an upcoming round.
//
// With more than four players the room rotates: the stable player list is
// split into windows of four starting at (rotationIndex mod cohortCount)*4,
// wrapping past the end when the count is not a multiple of four, so exactly
// four players hold questions every round and everyone cycles through.
// Players outside the active window spectate the round.
type Assigner struct {
	rng Rand
}

func NewAssigner(rng Rand) Assigner {
	return Assigner{rng: rng}
}

// Assign rewrites the per-player question state for the next round. Every
// player's PreviousQuestion is set to the question they just held (if any),
// AssignedQuestion is cleared, and HasAnswered is reset; the active cohort
// then receives fresh assignments.
//
// Reassignment avoids giving a player the question they just held.
// Eligible players are shuffled and greedily take the first unassigned
// question that differs from their last; a player left facing only their
// own previous question trades with an earlier player whose previous
// differs from the leftover. With four players holding four distinct
// previous questions such a partner always exists, so nobody repeats;
// a repeat can only surface in larger rooms where cohort members carry
// the same previous question.
func (a Assigner) Assign(room *Room) {
	for _, p := range room.Players {
		if p.AssignedQuestion != nil {
			prev := *p.AssignedQuestion
			p.PreviousQuestion = &prev
		}
		p.AssignedQuestion = nil
		p.HasAnswered = false
	}

	eligible := a.activeCohort(room)
	shuffled := make([]*Player, len(eligible))
	copy(shuffled, eligible)
	a.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	unassigned := make([]QuestionType, len(Questions))
	copy(unassigned, Questions[:])

	for _, p := range shuffled {
		if len(unassigned) == 0 {
			break
		}
		idx := -1
		for i, q := range unassigned {
			if p.PreviousQuestion == nil || q != *p.PreviousQuestion {
				idx = i
				break
			}
		}
		if idx == -1 {
			a.tradeLeftover(shuffled, p, unassigned[0])
			unassigned = unassigned[1:]
			continue
		}
		q := unassigned[idx]
		p.AssignedQuestion = &q
		unassigned = append(unassigned[:idx], unassigned[idx+1:]...)
	}

	room.State.QuestionOrder = Questions
	room.State.RotationIndex++
}

// tradeLeftover resolves the case where the only remaining question is the
// one p just held: p takes the question of an already-assigned player whose
// previous differs from the leftover, and that player takes the leftover.
// Both sides end up off their previous question. If no such partner exists
// (colliding previouses in a rotating room) p keeps the repeat.
func (a Assigner) tradeLeftover(assigned []*Player, p *Player, leftover QuestionType) {
	for _, o := range assigned {
		if o == p || o.AssignedQuestion == nil {
			continue
		}
		if o.PreviousQuestion != nil && *o.PreviousQuestion == leftover {
			continue
		}
		theirs := *o.AssignedQuestion
		p.AssignedQuestion = &theirs
		q := leftover
		o.AssignedQuestion = &q
		return
	}
	q := leftover
	p.AssignedQuestion = &q
}

func (a Assigner) activeCohort(room *Room) []*Player {
	n := len(room.Players)
	if n <= len(Questions) {
		return room.Players
	}
	cohorts := (n + len(Questions) - 1) / len(Questions)
	start := (room.State.RotationIndex % cohorts) * len(Questions)
	cohort := make([]*Player, 0, len(Questions))
	for k := 0; k < len(Questions); k++ {
		cohort = append(cohort, room.Players[(start+k)%n])
	}
	return cohort
}
