// Package model defines domain models for plastic assessments and the ledger.
package model

import "strings"

// Material is a plastic resin label produced by the classifier.
type Material string

var (
	PET   Material = "PET"
	HDPE  Material = "HDPE"
	PP    Material = "PP"
	LDPE  Material = "LDPE"
	PS    Material = "PS"
	PVC   Material = "PVC"
	Other Material = "OTHER"
)

// Materials lists every supported label in a stable order.
var Materials = []Material{PET, HDPE, PP, LDPE, PS, PVC, Other}

// materialAliases maps classifier output spellings onto canonical labels.
var materialAliases = map[string]Material{
	"LDPA": LDPE,
}

// ParseMaterial normalizes a raw label. Unknown labels resolve to Other.
func ParseMaterial(raw string) Material {
	label := strings.ToUpper(strings.TrimSpace(raw))
	if m, ok := materialAliases[label]; ok {
		return m
	}
	for _, m := range Materials {
		if string(m) == label {
			return m
		}
	}
	return Other
}
