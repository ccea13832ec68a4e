package app

import (
	"context"
	"time"

	"spherecull/geom"
	"spherecull/hal"
)

func (a *App) pollInput() error {
	in := a.h.Input()
	if in == nil {
		return nil
	}
	kbd := in.Keyboard()
	if kbd == nil {
		return nil
	}
	ch := kbd.Events()
	for {
		select {
		case ev := <-ch:
			if err := a.handleKey(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// handleKey applies one key event. Arrow keys are tracked as held; text keys
// act on press.
func (a *App) handleKey(ev hal.KeyEvent) error {
	if ev.Code != hal.KeyUnknown {
		a.held[ev.Code] = ev.Press
		if ev.Code == hal.KeyEscape && ev.Press {
			return hal.ErrQuit
		}
		return nil
	}
	if !ev.Press {
		return nil
	}
	switch ev.Rune {
	case 'q', 'Q':
		return hal.ErrQuit
	case ' ':
		a.paused = !a.paused
	case 'r', 'R':
		return a.Reseed(context.Background(), a.state.Config().Seed+1)
	case '+', '=':
		a.orbit.Zoom(-zoomStep)
	case '-', '_':
		a.orbit.Zoom(zoomStep)
	}
	return nil
}

func (a *App) updateOrbit(delta time.Duration) {
	step := geom.Scalar(delta.Seconds()) * orbitSpeed
	if step == 0 {
		return
	}
	var yaw, pitch geom.Scalar
	if a.held[hal.KeyLeft] {
		yaw -= step
	}
	if a.held[hal.KeyRight] {
		yaw += step
	}
	if a.held[hal.KeyUp] {
		pitch += step
	}
	if a.held[hal.KeyDown] {
		pitch -= step
	}
	if yaw != 0 || pitch != 0 {
		a.orbit.Rotate(yaw, pitch)
	}
}
