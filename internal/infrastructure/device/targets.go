package device

import (
	"regexp"
	"strings"

	"medi-cal-assistant/internal/domain/entity"
)

// Target is a fixed screen location of a form control. Offset overrides the
// table's default offset when set.
type Target struct {
	Point  entity.Point
	Offset *entity.Point
}

// TargetTable resolves logical field names to screen coordinates.
type TargetTable struct {
	targets       map[string]Target
	normalized    map[string]string
	defaultOffset entity.Point
}

var DefaultOffset = entity.Point{X: 50, Y: 100}

func defaultTargets() map[string]Target {
	return map[string]Target{
		"homelessness_yes": {Point: entity.Point{X: 1200, Y: 230}},
		"homelessness_no":  {Point: entity.Point{X: 1330, Y: 230}, Offset: &entity.Point{X: 250, Y: 50}},
		"address_line_1":   {Point: entity.Point{X: 1170, Y: 530}},
		"address1":         {Point: entity.Point{X: 1170, Y: 530}},
		"address_line_2":   {Point: entity.Point{X: 1170, Y: 635}},
		"address2":         {Point: entity.Point{X: 1170, Y: 635}},
		"city":             {Point: entity.Point{X: 1170, Y: 800}},
		"state":            {Point: entity.Point{X: 1170, Y: 910}},
		"zip":              {Point: entity.Point{X: 1170, Y: 1020}},
		"zip_code":         {Point: entity.Point{X: 1170, Y: 1020}},
	}
}

func DefaultTargetTable() *TargetTable {
	return NewTargetTable(defaultTargets(), DefaultOffset)
}

func NewTargetTable(targets map[string]Target, defaultOffset entity.Point) *TargetTable {
	t := &TargetTable{
		targets:       make(map[string]Target, len(targets)),
		normalized:    make(map[string]string, len(targets)),
		defaultOffset: defaultOffset,
	}
	for name, target := range targets {
		t.targets[name] = target
		t.normalized[normalize(name)] = name
	}
	return t
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

func normalize(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "")
}

// Resolve tries the exact key, then the normalized key, then a containment
// match that must hit exactly one key. The returned point includes the offset.
func (t *TargetTable) Resolve(name string) (entity.Point, bool) {
	key, ok := t.lookup(name)
	if !ok {
		return entity.Point{}, false
	}
	target := t.targets[key]
	offset := t.defaultOffset
	if target.Offset != nil {
		offset = *target.Offset
	}
	return target.Point.Add(offset), true
}

func (t *TargetTable) lookup(name string) (string, bool) {
	if _, ok := t.targets[name]; ok {
		return name, true
	}
	n := normalize(name)
	if n == "" {
		return "", false
	}
	if key, ok := t.normalized[n]; ok {
		return key, true
	}

	var match string
	count := 0
	for norm, key := range t.normalized {
		if strings.Contains(n, norm) || strings.Contains(norm, n) {
			match = key
			count++
		}
	}
	if count != 1 {
		return "", false
	}
	return match, true
}

func (t *TargetTable) Len() int {
	return len(t.targets)
}
