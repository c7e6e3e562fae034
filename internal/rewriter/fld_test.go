package rewriter

import (
	"reflect"
	"testing"
)

func TestRewriteFLD(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			"quoted external reference",
			[]string{`FIL "user/Scenery/Base.FLD"`},
			[]string{`FIL "user/scenery/base.fld"`},
		},
		{
			"unquoted external reference gains quotes",
			[]string{"FIL user/Scenery/Ground.ter"},
			[]string{`FIL "user/scenery/ground.ter"`},
		},
		{
			"packed element untouched",
			[]string{
				`PCK "Tower.srf" 88`,
				`FIL "Tower.srf"`,
				`FIL "user/Scenery/Runway.srf"`,
			},
			[]string{
				`PCK "Tower.srf" 88`,
				`FIL "Tower.srf"`,
				`FIL "user/scenery/runway.srf"`,
			},
		},
		{
			"fil without known extension untouched",
			[]string{`FIL "something.else"`},
			[]string{`FIL "something.else"`},
		},
		{
			"terrain mesh pc2",
			[]string{`FIL "user/Scenery/Hill.PC2"`},
			[]string{`FIL "user/scenery/hill.pc2"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := rewriteFLD("field.fld", tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("rewriteFLD(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
