package trajectory

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/autopilot/internal/core/systems/physics"
)

// Kind names a segment shape.
type Kind string

const (
	KindCircle Kind = "circle"
	KindLine   Kind = "line"
)

// Spec is the serializable construction record of a segment. Only the fields
// relevant to Kind are read.
type Spec struct {
	Kind   Kind       `json:"kind" yaml:"kind"`
	Center [3]float64 `json:"center" yaml:"center"`
	Normal [3]float64 `json:"normal" yaml:"normal"`
	Radius float64    `json:"radius" yaml:"radius"`
	Start  [3]float64 `json:"start" yaml:"start"`
	End    [3]float64 `json:"end" yaml:"end"`
	Speed  float64    `json:"speed" yaml:"speed"`
}

// CircleSpec describes a circle.
func CircleSpec(center, normal physics.Vec3, radius, speed float64) Spec {
	return Spec{
		Kind:   KindCircle,
		Center: physics.ToArray(center),
		Normal: physics.ToArray(normal),
		Radius: radius,
		Speed:  speed,
	}
}

// LineSpec describes a line.
func LineSpec(start, end physics.Vec3, speed float64) Spec {
	return Spec{
		Kind:  KindLine,
		Start: physics.ToArray(start),
		End:   physics.ToArray(end),
		Speed: speed,
	}
}

// Build constructs the segment described by s.
func (s Spec) Build() (ParametricTrajectory, error) {
	switch s.Kind {
	case KindCircle:
		return NewCircle(physics.FromArray(s.Center), physics.FromArray(s.Normal), s.Radius, s.Speed), nil
	case KindLine:
		return NewLine(physics.FromArray(s.Start), physics.FromArray(s.End), s.Speed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

// CheckFinite returns ErrNonFinite if any parameter used by s.Kind is NaN or
// infinite. The segments themselves accept such values.
func (s Spec) CheckFinite() error {
	for i, v := range s.params() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s parameter %d is %v", ErrNonFinite, s.Kind, i, v)
		}
	}
	return nil
}

// Fingerprint hashes the kind and the parameters it uses. Specs describing the
// same segment share a fingerprint.
func (s Spec) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(string(s.Kind))
	var buf [8]byte
	for _, v := range s.params() {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

func (s Spec) params() []float64 {
	switch s.Kind {
	case KindCircle:
		return []float64{
			s.Center[0], s.Center[1], s.Center[2],
			s.Normal[0], s.Normal[1], s.Normal[2],
			s.Radius, s.Speed,
		}
	case KindLine:
		return []float64{
			s.Start[0], s.Start[1], s.Start[2],
			s.End[0], s.End[1], s.End[2],
			s.Speed,
		}
	default:
		return nil
	}
}
