package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, mgl32.Vec3{40, 22, 40})

	// Should orbit the box centre
	if cam.Target != (mgl32.Vec3{20, 11, 20}) {
		t.Errorf("expected target (20, 11, 20), got %v", cam.Target)
	}
	if d := cam.Position().Sub(cam.Target).Len(); math.Abs(float64(d-cam.Distance)) > 1e-3 {
		t.Errorf("eye is %f from target, want %f", d, cam.Distance)
	}
}

func TestTargetProjectsToScreenCentre(t *testing.T) {
	cam := New(1280, 720, mgl32.Vec3{40, 22, 40})

	sx, sy, ok := cam.WorldToScreen(cam.Target, mgl32.DegToRad(45))
	if !ok {
		t.Fatal("target should be in front of the camera")
	}
	if math.Abs(float64(sx-640)) > 0.5 || math.Abs(float64(sy-360)) > 0.5 {
		t.Errorf("expected screen centre (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestBehindCamera(t *testing.T) {
	cam := New(800, 600, mgl32.Vec3{10, 10, 10})
	behind := cam.Position().Add(cam.Position().Sub(cam.Target))
	if _, _, ok := cam.WorldToScreen(behind, mgl32.DegToRad(45)); ok {
		t.Error("point behind the eye should not project")
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	cam := New(800, 600, mgl32.Vec3{10, 10, 10})

	cam.Orbit(0, 1e6)
	if cam.Pitch > maxPitch {
		t.Errorf("pitch %f exceeds %f", cam.Pitch, maxPitch)
	}
	cam.Orbit(0, -1e6)
	if cam.Pitch < -maxPitch {
		t.Errorf("pitch %f below %f", cam.Pitch, -maxPitch)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, mgl32.Vec3{10, 10, 10})

	cam.ZoomBy(1000)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to min %f, got %f", cam.MinDistance, cam.Distance)
	}
	cam.ZoomBy(0.0001)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to max %f, got %f", cam.MaxDistance, cam.Distance)
	}
	cam.ZoomBy(0) // ignored
	if cam.Distance != cam.MaxDistance {
		t.Error("ZoomBy(0) should be a no-op")
	}
}

func TestReset(t *testing.T) {
	cam := New(800, 600, mgl32.Vec3{10, 10, 10})
	yaw, pitch, dist := cam.Yaw, cam.Pitch, cam.Distance

	cam.Orbit(120, -40)
	cam.ZoomBy(2)
	cam.Reset()

	if cam.Yaw != yaw || cam.Pitch != pitch || cam.Distance != dist {
		t.Errorf("Reset gave yaw=%f pitch=%f dist=%f", cam.Yaw, cam.Pitch, cam.Distance)
	}
}

func TestResizeAspect(t *testing.T) {
	cam := New(800, 600, mgl32.Vec3{10, 10, 10})
	cam.Resize(1920, 1080)
	if math.Abs(float64(cam.Aspect())-16.0/9.0) > 1e-6 {
		t.Errorf("Aspect = %f, want 16/9", cam.Aspect())
	}
}
