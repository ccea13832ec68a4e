package render

import (
	"math"

	"spherecull/geom"
)

// Camera describes a perspective viewing transform.
type Camera struct {
	Position geom.Vec3
	Target   geom.Vec3
	Up       geom.Vec3

	FOVYRad geom.Scalar
	Near    geom.Scalar
	Far     geom.Scalar
}

// DefaultCamera sits at (0,0,-5) looking at the origin.
func DefaultCamera() Camera {
	return Camera{
		Position: geom.V3(0, 0, -5),
		Target:   geom.V3(0, 0, 0),
		Up:       geom.V3(0, 1, 0),
		FOVYRad:  math.Pi / 4,
		Near:     0.1,
		Far:      100,
	}
}

// View returns the camera view matrix.
func (c Camera) View() geom.Mat4 {
	up := c.Up
	if up == (geom.Vec3{}) {
		up = geom.V3(0, 1, 0)
	}
	return geom.Mat4LookAt(c.Position, c.Target, up)
}

// Projection returns the projection matrix for a target aspect.
func (c Camera) Projection(aspect geom.Scalar) geom.Mat4 {
	fov := c.FOVYRad
	if fov == 0 {
		fov = 1
	}
	near, far := c.Near, c.Far
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = near + 100
	}
	return geom.Mat4Perspective(fov, aspect, near, far)
}

const maxPitch = 1.45

// OrbitController orbits a camera around a target at a given radius.
type OrbitController struct {
	Target geom.Vec3
	Yaw    geom.Scalar
	Pitch  geom.Scalar
	Radius geom.Scalar

	MinRadius geom.Scalar
	MaxRadius geom.Scalar
}

// DefaultOrbit reproduces DefaultCamera's position.
func DefaultOrbit() OrbitController {
	return OrbitController{Yaw: math.Pi, Radius: 5, MinRadius: 1.5, MaxRadius: 20}
}

func (c *OrbitController) Apply(cam *Camera) {
	if cam == nil {
		return
	}
	r := c.Radius
	if r == 0 {
		r = 5
	}
	if c.MinRadius != 0 && r < c.MinRadius {
		r = c.MinRadius
	}
	if c.MaxRadius != 0 && r > c.MaxRadius {
		r = c.MaxRadius
	}

	m := geom.Mat4Mul(geom.Mat4RotateY(c.Yaw), geom.Mat4RotateX(c.Pitch))
	p := geom.Mat4MulV4(m, geom.Vec4{X: 0, Y: 0, Z: r, W: 1})

	cam.Position = c.Target.Add(geom.V3(p.X, p.Y, p.Z))
	cam.Target = c.Target
	if cam.Up == (geom.Vec3{}) {
		cam.Up = geom.V3(0, 1, 0)
	}
}

func (c *OrbitController) Rotate(deltaYaw, deltaPitch geom.Scalar) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

func (c *OrbitController) Zoom(delta geom.Scalar) {
	c.Radius += delta
	if c.MinRadius != 0 && c.Radius < c.MinRadius {
		c.Radius = c.MinRadius
	}
	if c.MaxRadius != 0 && c.Radius > c.MaxRadius {
		c.Radius = c.MaxRadius
	}
}
