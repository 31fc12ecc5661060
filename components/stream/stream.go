// Package stream writes the pose of every synthesized frame to a serial port
// (or any other writer) as one line of text, for an external visualizer or
// puppet to follow.
package stream

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adammck/biped"
	"github.com/adammck/biped/math3d"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "stream",
})

// Stream is both a skeleton sink, which buffers the pose written by the motion
// loop, and a component, which flushes the buffered pose once per tick.
type Stream struct {
	w io.Writer

	root   math3d.Frame
	joints []mgl64.Vec3
	dirty  bool
}

func New(w io.Writer) *Stream {
	return &Stream{
		w: w,
	}
}

func (s *Stream) SetRoot(f math3d.Frame) {
	s.root = f
	s.joints = s.joints[:0]
	s.dirty = true
}

func (s *Stream) SetJoint(i int, p mgl64.Vec3) {
	for len(s.joints) <= i {
		s.joints = append(s.joints, mgl64.Vec3{})
	}

	s.joints[i] = p
}

func (s *Stream) Boot() error {
	log.Infof("streaming poses")
	return nil
}

// Tick writes the pose buffered since the last tick, if there is one.
func (s *Stream) Tick(now time.Time, state *biped.State) error {
	if !s.dirty {
		return nil
	}

	_, err := io.WriteString(s.w, s.line(state.Frame))
	if err != nil {
		return fmt.Errorf("writing frame %d: %w", state.Frame, err)
	}

	s.dirty = false
	return nil
}

// line formats the pose as:
//
//	frame=<n> root=<x>,<y>,<z>,<heading> joints=<x>,<y>,<z>;<x>,<y>,<z>;...
func (s *Stream) line(frame uint64) string {
	var b strings.Builder
	p := s.root.Position
	fmt.Fprintf(&b, "frame=%d root=%.4f,%.4f,%.4f,%.4f joints=", frame, p.X(), p.Y(), p.Z(), s.root.Heading)

	for i, j := range s.joints {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%.4f,%.4f,%.4f", j.X(), j.Y(), j.Z())
	}

	b.WriteByte('\n')
	return b.String()
}
