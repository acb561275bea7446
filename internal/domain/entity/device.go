package entity

import "fmt"

type DeviceMode string

const (
	ModeBrowser DeviceMode = "browser"
	ModeOS      DeviceMode = "os"
)

func ParseDeviceMode(s string) (DeviceMode, error) {
	switch DeviceMode(s) {
	case ModeBrowser, "":
		return ModeBrowser, nil
	case ModeOS:
		return ModeOS, nil
	default:
		return "", fmt.Errorf("unknown device backend %q (want %q or %q)", s, ModeBrowser, ModeOS)
	}
}

type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

func (s *Screenshot) MediaType() string {
	return "image/" + s.Format
}

type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)
