package game

import "encoding/json"

// PublicSnapshot returns a deep copy of the room safe to broadcast. While
// answers are being collected they stay blind: the copy keeps which slots
// are filled and by whom, but blanks the texts until the reveal phase.
func (r *Room) PublicSnapshot() *Room {
	data, err := json.Marshal(r)
	if err != nil {
		return r
	}
	copied := &Room{}
	if err := json.Unmarshal(data, copied); err != nil {
		return r
	}
	if copied.State.Phase != PhaseReveal {
		for q, a := range copied.State.Answers {
			a.Text = ""
			copied.State.Answers[q] = a
		}
	}
	return copied
}
