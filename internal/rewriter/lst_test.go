package rewriter

import (
	"reflect"
	"testing"
)

func TestRewriteLSTAircraftList(t *testing.T) {
	input := []string{
		`Aircraft\MyPlane.dat Aircraft\MyPlane.dnm Aircraft\Coll.srf`,
		"",
	}
	expected := []string{
		"aircraft/myplane.dat aircraft/myplane.dnm aircraft/coll.srf",
		"",
	}

	got, warnings := rewriteLST("air.lst", input)
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("rewriteLST = %v, want %v", got, expected)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestRewriteLSTFlagsBrokenPath(t *testing.T) {
	// "My Plane.dat" was split by a space before conversion could see the
	// whole path; after normalization the orphaned left half has no
	// extension and must be reported for manual review.
	input := []string{
		"aircraft/broken aircraft/rest.dat aircraft/other.dnm extra",
	}

	_, warnings := rewriteLST("air.lst", input)
	if len(warnings) == 0 {
		t.Fatal("expected a warning for the extensionless field")
	}
	found := false
	for _, w := range warnings {
		if w.Field == "aircraft/broken" && w.Line == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning for aircraft/broken, got %v", warnings)
	}
}

func TestRewriteLSTSceneryFirstColumnExemptFromLint(t *testing.T) {
	input := []string{
		"HAWAII user/Scenery/Hawaii.fld user/Scenery/Hawaii.stp",
	}
	expected := []string{
		"hawaii user/scenery/hawaii.fld user/scenery/hawaii.stp",
	}

	got, warnings := rewriteLST("sce_pack.lst", input)
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("rewriteLST = %v, want %v", got, expected)
	}
	for _, w := range warnings {
		if w.Field == "hawaii" {
			t.Errorf("scenery display name must not be linted: %v", w)
		}
	}
}

func TestRewriteLSTShortLinesSkipped(t *testing.T) {
	input := []string{"short line", ""}
	_, warnings := rewriteLST("air.lst", input)
	if len(warnings) != 0 {
		t.Errorf("short lines must not be linted: %v", warnings)
	}
}
