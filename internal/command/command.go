// Package command defines the user-interaction commands the bridge delivers
// to the editor session, their delivery classification, and the mapping from
// each command to its remote call.
package command

// Class is a command's delivery class.
type Class int

const (
	// ClassGuaranteed commands are delivered exactly once, in submission
	// order.
	ClassGuaranteed Class = iota
	// ClassDroppable commands tolerate being superseded by a newer command
	// of the same delivery class; only the latest buffered value matters.
	ClassDroppable
)

func (c Class) String() string {
	if c == ClassDroppable {
		return "droppable"
	}
	return "guaranteed"
}

// Mouse button actions accepted by the editor.
const (
	MousePress   = "press"
	MouseRelease = "release"
)

// Scroll directions accepted by the editor.
const (
	ScrollUp    = "up"
	ScrollDown  = "down"
	ScrollLeft  = "left"
	ScrollRight = "right"
)

// Command is one immutable user-intent action. Values are never mutated
// after construction; ownership transfers along the pipeline.
type Command interface {
	// Kind names the variant for logging and diagnostics.
	Kind() string

	sealed()
}

// Quit requests session termination.
type Quit struct{}

// Resize requests a grid resize. Width and height are floored to the
// editor's minimum usable grid at execution time.
type Resize struct {
	Width  uint32
	Height uint32
}

// Keyboard forwards input notation verbatim.
type Keyboard struct {
	Input string
}

// MouseButton is a press or release on a grid cell.
type MouseButton struct {
	Action string
	Grid   uint64
	Col    uint32
	Row    uint32
}

// Scroll is a wheel event on a grid cell.
type Scroll struct {
	Direction string
	Grid      uint64
	Col       uint32
	Row       uint32
}

// Drag is a held-button motion on a grid cell.
type Drag struct {
	Grid uint64
	Col  uint32
	Row  uint32
}

// FileDrop asks the session to open a path.
type FileDrop struct {
	Path string
}

// FocusLost and FocusGained fire the editor's focus autocommand hooks when
// the user has registered one.
type FocusLost struct{}
type FocusGained struct{}

// RegisterShellExt and UnregisterShellExt drive the platform shell
// integration collaborator.
type RegisterShellExt struct{}
type UnregisterShellExt struct{}

func (Quit) Kind() string               { return "quit" }
func (Resize) Kind() string             { return "resize" }
func (Keyboard) Kind() string           { return "keyboard" }
func (MouseButton) Kind() string        { return "mouse_button" }
func (Scroll) Kind() string             { return "scroll" }
func (Drag) Kind() string               { return "drag" }
func (FileDrop) Kind() string           { return "file_drop" }
func (FocusLost) Kind() string          { return "focus_lost" }
func (FocusGained) Kind() string        { return "focus_gained" }
func (RegisterShellExt) Kind() string   { return "register_shellext" }
func (UnregisterShellExt) Kind() string { return "unregister_shellext" }

func (Quit) sealed()               {}
func (Resize) sealed()             {}
func (Keyboard) sealed()           {}
func (MouseButton) sealed()        {}
func (Scroll) sealed()             {}
func (Drag) sealed()               {}
func (FileDrop) sealed()           {}
func (FocusLost) sealed()          {}
func (FocusGained) sealed()        {}
func (RegisterShellExt) sealed()   {}
func (UnregisterShellExt) sealed() {}

// Classify maps a command to its delivery class. It is a pure function of
// the variant alone, never of payload values: Resize, Scroll and Drag carry
// pure state where only the latest value matters; everything else must be
// delivered exactly once, in order.
func Classify(c Command) Class {
	switch c.(type) {
	case Resize, Scroll, Drag:
		return ClassDroppable
	default:
		return ClassGuaranteed
	}
}

// AllVariants returns one zero value of every command variant. Tests use it
// to prove the classifier and the execution contract stay exhaustive as
// variants are added.
func AllVariants() []Command {
	return []Command{
		Quit{},
		Resize{},
		Keyboard{},
		MouseButton{},
		Scroll{},
		Drag{},
		FileDrop{},
		FocusLost{},
		FocusGained{},
		RegisterShellExt{},
		UnregisterShellExt{},
	}
}
