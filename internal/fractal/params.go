package fractal

import "fmt"

// Field names a rendering parameter.
type Field string

const (
	FieldPosX       Field = "posX"
	FieldPosY       Field = "posY"
	FieldSize       Field = "size"
	FieldIterations Field = "iterations"
	FieldSamples    Field = "samples"
	FieldWidth      Field = "width"
	FieldHeight     Field = "height"
	FieldThreads    Field = "threads"
	FieldPaintMode  Field = "paintMode"
)

// Fields lists every parameter in panel order.
var Fields = []Field{
	FieldPosX, FieldPosY, FieldSize, FieldIterations, FieldSamples,
	FieldWidth, FieldHeight, FieldThreads, FieldPaintMode,
}

// Kind is the semantic type of a field.
type Kind int

const (
	KindReal Kind = iota
	KindInt
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindInt:
		return "int"
	case KindEnum:
		return "enum"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseField resolves a field name.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Kind reports the semantic type of f. Unknown fields report KindReal.
func (f Field) Kind() Kind {
	switch f {
	case FieldIterations, FieldSamples, FieldWidth, FieldHeight, FieldThreads:
		return KindInt
	case FieldPaintMode:
		return KindEnum
	}
	return KindReal
}

// PaintMode selects a color mapping. Values are opaque and supplied by the
// engine's capability description.
type PaintMode int

// PaintModeOption pairs a paint mode with its human-readable label.
type PaintModeOption struct {
	Label string    `json:"label" yaml:"label"`
	Value PaintMode `json:"value" yaml:"value"`
}

// LookupPaintMode finds the option with the given label.
func LookupPaintMode(opts []PaintModeOption, label string) (PaintMode, error) {
	for _, o := range opts {
		if o.Label == label {
			return o.Value, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPaintMode, label)
}

// PaintModeLabel returns the label for m, or its number when no option matches.
func PaintModeLabel(opts []PaintModeOption, m PaintMode) string {
	for _, o := range opts {
		if o.Value == m {
			return o.Label
		}
	}
	return fmt.Sprintf("%d", int(m))
}

// Params is the canonical configuration of the view.
type Params struct {
	PosX       float64   `json:"posX" yaml:"pos_x"`
	PosY       float64   `json:"posY" yaml:"pos_y"`
	Size       float64   `json:"size" yaml:"size"`
	Iterations int       `json:"iterations" yaml:"iterations"`
	Samples    int       `json:"samples" yaml:"samples"`
	Width      int       `json:"width" yaml:"width"`
	Height     int       `json:"height" yaml:"height"`
	Threads    int       `json:"threads" yaml:"threads"`
	PaintMode  PaintMode `json:"paintMode" yaml:"paint_mode"`
}

const (
	DefaultPosX       = 0.0
	DefaultPosY       = 0.0
	DefaultSize       = 4.0
	DefaultIterations = 1000
	DefaultSamples    = 5
	DefaultWidth      = 512
	DefaultHeight     = 512
	DefaultThreads    = 16
)

// DefaultParams returns the startup view. PaintMode is left at zero; callers
// resolve the preferred mode against the engine's capability description.
func DefaultParams() Params {
	return Params{
		PosX:       DefaultPosX,
		PosY:       DefaultPosY,
		Size:       DefaultSize,
		Iterations: DefaultIterations,
		Samples:    DefaultSamples,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Threads:    DefaultThreads,
	}
}

// Get returns the value of a field.
func (p Params) Get(f Field) (Value, error) {
	switch f {
	case FieldPosX:
		return Real(p.PosX), nil
	case FieldPosY:
		return Real(p.PosY), nil
	case FieldSize:
		return Real(p.Size), nil
	case FieldIterations:
		return Int(p.Iterations), nil
	case FieldSamples:
		return Int(p.Samples), nil
	case FieldWidth:
		return Int(p.Width), nil
	case FieldHeight:
		return Int(p.Height), nil
	case FieldThreads:
		return Int(p.Threads), nil
	case FieldPaintMode:
		return Enum(int(p.PaintMode)), nil
	}
	return Value{}, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
}

// Set overwrites one field. Values of a different kind are converted; no
// range checks are applied.
func (p *Params) Set(f Field, v Value) error {
	switch f {
	case FieldPosX:
		p.PosX = v.Float()
	case FieldPosY:
		p.PosY = v.Float()
	case FieldSize:
		p.Size = v.Float()
	case FieldIterations:
		p.Iterations = v.Int()
	case FieldSamples:
		p.Samples = v.Int()
	case FieldWidth:
		p.Width = v.Int()
	case FieldHeight:
		p.Height = v.Int()
	case FieldThreads:
		p.Threads = v.Int()
	case FieldPaintMode:
		p.PaintMode = PaintMode(v.Int())
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
	return nil
}

// Diff lists the fields whose values differ between p and q.
func (p Params) Diff(q Params) []Field {
	var out []Field
	for _, f := range Fields {
		a, _ := p.Get(f)
		b, _ := q.Get(f)
		if a != b {
			out = append(out, f)
		}
	}
	return out
}
