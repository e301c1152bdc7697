package renderer

// Converts a level signal (e.g. a key being held down) into discrete
// events that fire once on each transition from released to pressed.
type EdgeTrigger struct {
	pressed bool
}

// Feed the current level and report whether it is a rising edge.
func (t *EdgeTrigger) Update(pressed bool) bool {
	fired := pressed && !t.pressed
	t.pressed = pressed
	return fired
}

// Forget the last seen level.
func (t *EdgeTrigger) Reset() {
	t.pressed = false
}
