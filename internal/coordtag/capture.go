package coordtag

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/shopspring/decimal"
)

// Ref places a capture inside a game's tag document.
type Ref struct {
	MapID string
	Tag   string
	Index int
}

// Capture is a single recorded coordinate belonging to a tag on a map. It is
// either a *BlockCapture or an *EntityCapture.
type Capture interface {
	Mode() Mode
	Reference() Ref
	// Serialize renders the capture as stored in the tag document.
	Serialize() string
	// Location converts the capture into a point an actor can be sent to.
	Location() host.Location
}

// BlockCapture marks a block position.
type BlockCapture struct {
	Ref
	X, Y, Z int
}

func (c *BlockCapture) Mode() Mode {
	return ModeBlock
}

func (c *BlockCapture) Reference() Ref {
	return c.Ref
}

func (c *BlockCapture) Serialize() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

// Location centers the actor on top of the block.
func (c *BlockCapture) Location() host.Location {
	return host.Location{
		X: float64(c.X) + 0.5,
		Y: float64(c.Y),
		Z: float64(c.Z) + 0.5,
	}
}

// EntityCapture marks an exact position with facing.
type EntityCapture struct {
	Ref
	X, Y, Z    float64
	Yaw, Pitch float32
}

func (c *EntityCapture) Mode() Mode {
	return ModeEntity
}

func (c *EntityCapture) Reference() Ref {
	return c.Ref
}

func (c *EntityCapture) Serialize() string {
	return strings.Join([]string{
		strconv.FormatFloat(c.X, 'f', -1, 64),
		strconv.FormatFloat(c.Y, 'f', -1, 64),
		strconv.FormatFloat(c.Z, 'f', -1, 64),
		strconv.FormatFloat(float64(c.Yaw), 'f', -1, 32),
		strconv.FormatFloat(float64(c.Pitch), 'f', -1, 32),
	}, ",")
}

func (c *EntityCapture) Location() host.Location {
	return host.Location{
		X:     c.X,
		Y:     c.Y,
		Z:     c.Z,
		Yaw:   c.Yaw,
		Pitch: c.Pitch,
	}
}

// NewCapture builds a capture of the given mode from an actor location.
// Block captures take the block the location falls in.
func NewCapture(mode Mode, ref Ref, loc host.Location) (Capture, error) {
	switch mode {
	case ModeBlock:
		return &BlockCapture{
			Ref: ref,
			X:   int(math.Floor(loc.X)),
			Y:   int(math.Floor(loc.Y)),
			Z:   int(math.Floor(loc.Z)),
		}, nil
	case ModeEntity:
		return &EntityCapture{
			Ref:   ref,
			X:     loc.X,
			Y:     loc.Y,
			Z:     loc.Z,
			Yaw:   loc.Yaw,
			Pitch: loc.Pitch,
		}, nil
	default:
		return nil, fmt.Errorf("capture mode must be %s or %s", ModeBlock, ModeEntity)
	}
}

// Parse reads a serialized capture. Block records carry exactly three
// fields, entity records exactly five.
func Parse(mode Mode, ref Ref, record string) (Capture, error) {
	fields := strings.SplitN(record, ",", 5)

	switch mode {
	case ModeBlock:
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: %q has %d fields, want 3", ErrMalformedCapture, record, len(fields))
		}
		var xyz [3]int
		for i, f := range fields {
			d, err := parseDecimal(f)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrMalformedCapture, record, err)
			}
			v, err := blockCoord(d)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrMalformedCapture, record, err)
			}
			xyz[i] = v
		}
		return &BlockCapture{Ref: ref, X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil

	case ModeEntity:
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: %q has %d fields, want 5", ErrMalformedCapture, record, len(fields))
		}
		var vals [5]decimal.Decimal
		for i, f := range fields {
			d, err := parseDecimal(f)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrMalformedCapture, record, err)
			}
			vals[i] = d
		}

		c := &EntityCapture{Ref: ref}
		c.X, _ = vals[0].Float64()
		c.Y, _ = vals[1].Float64()
		c.Z, _ = vals[2].Float64()

		yaw, err := narrow32(vals[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedCapture, record, err)
		}
		pitch, err := narrow32(vals[4])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedCapture, record, err)
		}
		c.Yaw, c.Pitch = yaw, pitch
		return c, nil

	default:
		return nil, fmt.Errorf("cannot parse capture in mode %s", mode)
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

var (
	minBlockCoord = decimal.NewFromInt(math.MinInt)
	maxBlockCoord = decimal.NewFromInt(math.MaxInt)
)

// blockCoord truncates d toward zero.
func blockCoord(d decimal.Decimal) (int, error) {
	t := d.Truncate(0)
	if t.LessThan(minBlockCoord) || t.GreaterThan(maxBlockCoord) {
		return 0, fmt.Errorf("coordinate %s out of range", d)
	}
	return int(t.IntPart()), nil
}

// narrow32 rounds the exact decimal straight to float32 rather than going
// through float64 first.
func narrow32(d decimal.Decimal) (float32, error) {
	f, err := strconv.ParseFloat(d.String(), 32)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}
