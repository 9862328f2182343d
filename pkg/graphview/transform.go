package graphview

// ToWorld maps a screen-space point to world space under cam:
// world = (screen - center - pan) / zoom
func ToWorld(screen Point, cam Camera) Point {
	z := cam.Zoom
	if z == 0 {
		z = 1
	}
	c := cam.Center()
	return Point{
		X: (screen.X - c.X - cam.PanX) / z,
		Y: (screen.Y - c.Y - cam.PanY) / z,
	}
}

// ToScreen maps a world-space point to screen space under cam:
// screen = center + pan + zoom*world
func ToScreen(world Point, cam Camera) Point {
	z := cam.Zoom
	if z == 0 {
		z = 1
	}
	c := cam.Center()
	return Point{
		X: c.X + cam.PanX + z*world.X,
		Y: c.Y + cam.PanY + z*world.Y,
	}
}
