package graphview

// FitGraph resets the viewport to fit all placed nodes
func (s *Session) FitGraph(padding float64) { s.ctrl.FitGraph(s.nodes, padding) }

// ResetView resets zoom/pan to defaults
func (s *Session) ResetView() { s.ctrl.ResetView() }

// FocusNode centers the viewport on a node ID
func (s *Session) FocusNode(id string) bool { return s.ctrl.FocusNode(s.nodes, id) }

// ClosePopup hides the node popup
func (s *Session) ClosePopup() { s.ctrl.ClosePopup() }

// ZoomIn steps zoom as a modified wheel-up would
func (s *Session) ZoomIn() { s.ctrl.ZoomBy(zoomInFactor) }

// ZoomOut steps zoom as a modified wheel-down would
func (s *Session) ZoomOut() { s.ctrl.ZoomBy(zoomOutFactor) }
