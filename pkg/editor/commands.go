package editor

import "github.com/dd0wney/cluso-graphedit/pkg/pathfind"

// Command is one input to Dispatch. The concrete types below are the only
// implementations.
type Command interface {
	// Name is a stable snake_case label used for logs and metrics.
	Name() string
	command()
}

// PrimaryClick selects the node under the pointer, creating one there if
// the pointer is over empty canvas. Coordinates are screen pixels.
type PrimaryClick struct{ X, Y float64 }

// PrimaryDrag moves the selected node to the pointer unless multi-connect
// is active.
type PrimaryDrag struct{ X, Y float64 }

// SecondaryDrag pans the camera by a pointer delta in screen pixels.
type SecondaryDrag struct{ DX, DY float64 }

// Scroll zooms in for positive Delta and out for negative Delta, keeping
// the world point under (X, Y) fixed. Zero Delta does nothing.
type Scroll struct{ Delta, X, Y float64 }

// ToggleMultiConnect flips chaining mode and empties the chain.
type ToggleMultiConnect struct{}

// SetPathStart anchors the path start at the selection.
type SetPathStart struct{}

// SetPathEnd anchors the path end at the selection.
type SetPathEnd struct{}

// ConnectSelectedPair joins the selection to the path start anchor and
// clears that anchor.
type ConnectSelectedPair struct{}

// FindPath searches between the anchors and replaces the last path.
type FindPath struct{}

// ApplyPath installs a background search outcome received from
// Controller.PathResults.
type ApplyPath struct{ Outcome pathfind.Outcome }

// ClearAll empties the graph and resets all interaction state.
type ClearAll struct{}

// Save writes the graph to Location.
type Save struct{ Location string }

// Load replaces the graph with the one stored at Location.
type Load struct{ Location string }

// Tick advances camera motion by one frame.
type Tick struct{}

// Resize changes the viewport size in screen pixels.
type Resize struct{ Width, Height float64 }

// Rename changes the selected node's display name.
type Rename struct{ To string }

// DeleteSelected removes the selected node and its edges.
type DeleteSelected struct{}

// Arrange repositions every node with the named layout inside the
// currently visible region.
type Arrange struct{ Layout string }

func (PrimaryClick) Name() string        { return "primary_click" }
func (PrimaryDrag) Name() string         { return "primary_drag" }
func (SecondaryDrag) Name() string       { return "secondary_drag" }
func (Scroll) Name() string              { return "scroll" }
func (ToggleMultiConnect) Name() string  { return "toggle_multi_connect" }
func (SetPathStart) Name() string        { return "set_path_start" }
func (SetPathEnd) Name() string          { return "set_path_end" }
func (ConnectSelectedPair) Name() string { return "connect_selected_pair" }
func (FindPath) Name() string            { return "find_path" }
func (ApplyPath) Name() string           { return "apply_path" }
func (ClearAll) Name() string            { return "clear_all" }
func (Save) Name() string                { return "save" }
func (Load) Name() string                { return "load" }
func (Tick) Name() string                { return "tick" }
func (Resize) Name() string              { return "resize" }
func (Rename) Name() string              { return "rename" }
func (DeleteSelected) Name() string      { return "delete_selected" }
func (Arrange) Name() string             { return "arrange" }

func (PrimaryClick) command()        {}
func (PrimaryDrag) command()         {}
func (SecondaryDrag) command()       {}
func (Scroll) command()              {}
func (ToggleMultiConnect) command()  {}
func (SetPathStart) command()        {}
func (SetPathEnd) command()          {}
func (ConnectSelectedPair) command() {}
func (FindPath) command()            {}
func (ApplyPath) command()           {}
func (ClearAll) command()            {}
func (Save) command()                {}
func (Load) command()                {}
func (Tick) command()                {}
func (Resize) command()              {}
func (Rename) command()              {}
func (DeleteSelected) command()      {}
func (Arrange) command()             {}
