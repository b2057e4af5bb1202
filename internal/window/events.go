package window

import (
	"github.com/veandco/go-sdl2/sdl"
)

type EventKind int

const (
	EventQuit EventKind = iota + 1
	EventKeyDown
)

// Event is an input event the application reacts to.
type Event struct {
	Kind EventKind
	Key  sdl.Keycode
}

// IsExit reports whether the event asks the application to stop.
func (e Event) IsExit() bool {
	return e.Kind == EventQuit || (e.Kind == EventKeyDown && e.Key == sdl.K_ESCAPE)
}

// Translate maps an SDL event to an Event. Events the application ignores yield false.
func Translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Kind: EventQuit}, true
	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			return Event{}, false
		}
		return Event{Kind: EventKeyDown, Key: e.Keysym.Sym}, true
	}
	return Event{}, false
}

// Poll drains the SDL event queue.
func Poll() []Event {
	var events []Event
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if translated, ok := Translate(event); ok {
			events = append(events, translated)
		}
	}
	return events
}
