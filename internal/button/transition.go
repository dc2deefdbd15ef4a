package button

import "fmt"

// strategy computes the next output value for an edge.
// It returns false when the edge is not a reportable transition.
type strategy func(e Edge, value, ceiling int) (int, bool)

// mirror tracks the level: low -> 1, high -> 2.
func mirror(e Edge, _, _ int) (int, bool) {
	return int(e.To) + 1, true
}

// advanceOnPress moves to the next position on rising edges only.
func advanceOnPress(e Edge, value, ceiling int) (int, bool) {
	if !e.Rising() {
		return value, false
	}
	return wrap(value+1, ceiling), true
}

// advanceOnEdge moves to the next position on every edge, so a toggle
// selecting among more than two positions advances on press and release.
func advanceOnEdge(_ Edge, value, ceiling int) (int, bool) {
	return wrap(value+1, ceiling), true
}

func wrap(v, ceiling int) int {
	if v > ceiling {
		return 1
	}
	return v
}

type strategyKey struct {
	kind   InputKind
	mode   OutputMode
	twoWay bool // SelectCeiling == 2
}

var strategies = map[strategyKey]strategy{
	{Push, Direct, false}:   mirror,
	{Push, Direct, true}:    mirror,
	{Toggle, Direct, false}: mirror,
	{Toggle, Direct, true}:  mirror,
	{Push, Select, false}:   advanceOnPress,
	{Push, Select, true}:    advanceOnPress,
	{Toggle, Select, true}:  mirror, // two positions: selecting is mirroring
	{Toggle, Select, false}: advanceOnEdge,
}

func init() {
	for _, k := range []InputKind{Push, Toggle} {
		for _, m := range []OutputMode{Direct, Select} {
			for _, two := range []bool{false, true} {
				if _, ok := strategies[strategyKey{k, m, two}]; !ok {
					panic(fmt.Sprintf("button: no strategy for %v/%v twoWay=%v", k, m, two))
				}
			}
		}
	}
}

// strategyFor returns the transition rule for a validated config.
func strategyFor(c Config) strategy {
	return strategies[strategyKey{kind: c.Kind, mode: c.Mode, twoWay: c.SelectCeiling == 2}]
}
