package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
)

// Camera projects world coordinates onto a canvas. Points are centred on
// Center, scaled so that a sphere of Radius fits the shorter canvas side,
// rotated about the x, y and z axes and then perspective divided.
type Camera struct {
	Center           r3.Vec
	Radius           float64
	RotX, RotY, RotZ float64
	Zoom             float64

	// Distance is the eye distance in units of Radius.
	Distance float64
}

func NewCamera() *Camera {
	return &Camera{Radius: 1, Zoom: 1, Distance: 4}
}

// Fit centres the camera on the bounding box of every body in recs.
func (c *Camera) Fit(recs []record.Record) {
	lo := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	found := false
	for _, r := range recs {
		for _, p := range physics.Positions(r.State) {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) ||
				math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
				continue
			}
			lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
			hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
			found = true
		}
	}
	if !found {
		return
	}

	c.Center = r3.Scale(0.5, r3.Add(lo, hi))
	c.Radius = 0.5 * r3.Norm(r3.Sub(hi, lo))
	if c.Radius == 0 {
		c.Radius = 1
	}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.02, c.Zoom/1.2) }

// Reset restores the default orientation and zoom, keeping the fit.
func (c *Camera) Reset() {
	c.RotX, c.RotY, c.RotZ, c.Zoom = 0, 0, 0, 1
}

// Rotate applies the camera rotation to a point already relative to Center.
func (c *Camera) Rotate(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps a world point to canvas dot coordinates of a sw x sh dot
// canvas. It reports false for points behind the eye or off the canvas.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, bool) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		return 0, 0, false
	}
	rot := c.Rotate(r3.Scale(c.Zoom/c.Radius, r3.Sub(p, c.Center)))
	if rot.Z >= c.Distance-0.1 {
		return 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z)

	half := 0.5 * float64(min(sw, sh))
	sx := int(math.Round(rot.X*persp*half*0.9)) + sw/2
	sy := int(math.Round(-rot.Y*persp*half*0.9)) + sh/2
	return sx, sy, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}
