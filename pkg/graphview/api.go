package graphview

// API provides imperative view controls to a host that keeps a session
// around, e.g. toolbar buttons or keyboard shortcuts.
type API interface {
	FitGraph(padding float64)
	ResetView()
	FocusNode(id string) bool
	ClosePopup()
	ZoomIn()
	ZoomOut()
}

var _ API = (*Session)(nil)
