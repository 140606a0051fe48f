package closure

import "strings"

// Kind identifies the closure variants that can be stored in an Arena.
type Kind int

const (
	kindInvalid Kind = iota
	KindDiffuse
	KindPrincipledDiffuse
	KindBssrdf
)

func (k Kind) String() string {
	switch k {
	case KindDiffuse:
		return "diffuse"
	case KindPrincipledDiffuse:
		return "principledDiffuse"
	case KindBssrdf:
		return "bssrdf"
	}

	return "invalid"
}

// Method selects the subsurface scattering model of a BSSRDF closure.
type Method int

const (
	methodInvalid Method = iota
	MethodBurley
	MethodRandomWalk
	MethodRandomWalkFixedRadius
	MethodRandomWalkSkin
)

// Lookup subsurface method by its name. Returns false for unknown names.
func MethodFromName(name string) (Method, bool) {
	switch name {
	case "burley":
		return MethodBurley, true
	case "randomWalk":
		return MethodRandomWalk, true
	case "randomWalkFixedRadius":
		return MethodRandomWalkFixedRadius, true
	case "randomWalkSkin":
		return MethodRandomWalkSkin, true
	}

	return methodInvalid, false
}

func (m Method) String() string {
	switch m {
	case MethodBurley:
		return "burley"
	case MethodRandomWalk:
		return "randomWalk"
	case MethodRandomWalkFixedRadius:
		return "randomWalkFixedRadius"
	case MethodRandomWalkSkin:
		return "randomWalkSkin"
	}

	return "invalid"
}

// Component selects the terms evaluated by a principled diffuse closure.
type Component uint8

const (
	Lambert Component = 1 << iota
	RetroReflection
)

func (c Component) String() string {
	if c&(Lambert|RetroReflection) == 0 {
		return "none"
	}
	var parts []string
	if c&Lambert != 0 {
		parts = append(parts, "lambert")
	}
	if c&RetroReflection != 0 {
		parts = append(parts, "retroReflection")
	}
	return strings.Join(parts, "|")
}
