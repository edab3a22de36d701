package design

import "github.com/benreynwar/slvcodec/internal/typs"

// StandardPackages names the library packages that are always available
// without resolution.
var StandardPackages = []string{"std_logic_1164", "numeric_std", "math_real", "textio"}

// BuiltinPackages returns the standard packages with their predefined
// types. math_real and textio contribute functions, not encodable types,
// so their type tables are empty.
func BuiltinPackages() map[string]*Package {
	return map[string]*Package{
		"std_logic_1164": {
			Name: "std_logic_1164",
			Types: map[string]typs.Type{
				"std_logic":        typs.Bit{},
				"std_logic_vector": typs.NewVectorFamily("std_logic_vector", typs.Plain),
			},
		},
		"numeric_std": {
			Name: "numeric_std",
			Types: map[string]typs.Type{
				"unsigned": typs.NewVectorFamily("unsigned", typs.UnsignedNum),
				"signed":   typs.NewVectorFamily("signed", typs.SignedNum),
			},
		},
		"math_real": {Name: "math_real"},
		"textio":    {Name: "textio"},
	}
}
