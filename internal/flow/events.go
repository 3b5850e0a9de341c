package flow

import (
	"kopilka/internal/core"
	"kopilka/internal/session"
)

// Event is the tagged-union input of the state machine. The transport maps
// button presses and free text onto these; the machine never sees transport
// types.
type Event interface {
	isEvent()
}

type (
	// Back is the universal "⬅ Назад" control.
	Back struct{}

	// SelectKind starts the add flow for one entry kind.
	SelectKind struct {
		Kind core.Kind
	}

	// SelectAction starts the edit or delete flow.
	SelectAction struct {
		Action session.Action
	}

	// SelectRecord is a bare number, a 1-based position in the shown list.
	SelectRecord struct {
		Position int
	}

	// Confirm is a yes/no button press.
	Confirm struct {
		Yes bool
	}

	// SubmitText is any other free text.
	SubmitText struct {
		Text string
	}
)

func (Back) isEvent()         {}
func (SelectKind) isEvent()   {}
func (SelectAction) isEvent() {}
func (SelectRecord) isEvent() {}
func (Confirm) isEvent()      {}
func (SubmitText) isEvent()   {}
