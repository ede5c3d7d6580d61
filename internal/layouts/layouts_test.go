package layouts

import (
	"reflect"
	"testing"

	"resumePreview/internal/catalog"
	"resumePreview/internal/resume"
	"resumePreview/internal/sections"
	"resumePreview/internal/view"
)

func TestResolveFallsBackLikeCatalog(t *testing.T) {
	for _, id := range []string{"", "unknown", "MODERN", "elegant", "corporate"} {
		l := Resolve(id)
		if l.ID != catalog.Resolve(id) {
			t.Errorf("Resolve(%q).ID = %q, catalog resolves to %q", id, l.ID, catalog.Resolve(id))
		}
		if l.compose == nil {
			t.Errorf("Resolve(%q) returned an empty layout", id)
		}
	}
}

func TestEveryCatalogEntryHasLayout(t *testing.T) {
	all := All()
	descs := catalog.All()
	if len(all) != len(descs) {
		t.Fatalf("got %d layouts for %d templates", len(all), len(descs))
	}
	for i, d := range descs {
		if all[i].ID != d.ID {
			t.Errorf("layout %d: got %q want %q", i, all[i].ID, d.ID)
		}
	}
}

func TestSectionOrderForFullRecord(t *testing.T) {
	rec := resume.Sample()
	for _, l := range All() {
		root := l.Render(sections.NewContext(&rec, l.Variant, "https://cdn/p.png"))
		if got := root.Sections(); !reflect.DeepEqual(got, l.Sections()) {
			t.Errorf("%s: sections %v want %v", l.ID, got, l.Sections())
		}
		if root.AttrValue("data-template") != l.ID {
			t.Errorf("%s: missing data-template", l.ID)
		}
	}
}

func TestElegantPutsSidebarFirst(t *testing.T) {
	want := []string{
		sections.KindHeader,
		sections.KindEducation,
		sections.KindSkills,
		sections.KindSummary,
		sections.KindExperience,
	}
	if got := Resolve(catalog.Elegant).Sections(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestBlankSummaryOmittedEverywhere(t *testing.T) {
	rec := resume.Sample()
	rec.Summary = "  "
	for _, l := range All() {
		root := l.Render(sections.NewContext(&rec, l.Variant, ""))
		if root.FindSection(sections.KindSummary) != nil {
			t.Errorf("%s: summary rendered for blank input", l.ID)
		}
		if !isSubsequence(root.Sections(), l.Sections()) {
			t.Errorf("%s: %v is not a subsequence of %v", l.ID, root.Sections(), l.Sections())
		}
	}
}

func TestEmptyRecordRendersSubsequence(t *testing.T) {
	var rec resume.Record
	for _, l := range All() {
		root := l.Render(sections.NewContext(&rec, l.Variant, ""))
		if got := root.Sections(); len(got) != 0 {
			t.Errorf("%s: expected no sections, got %v", l.ID, got)
		}
	}
}

func TestPhotoVisibilityFollowsVariant(t *testing.T) {
	rec := resume.Sample()
	for _, l := range All() {
		root := l.Render(sections.NewContext(&rec, l.Variant, "https://cdn/p.png"))
		hasImg := root.Find(func(n *view.Node) bool { return n.Tag == "img" }) != nil
		if hasImg != l.ShowsPhoto() {
			t.Errorf("%s: img present %v, ShowsPhoto %v", l.ID, hasImg, l.ShowsPhoto())
		}
	}
}

func isSubsequence(got, full []string) bool {
	i := 0
	for _, s := range full {
		if i < len(got) && got[i] == s {
			i++
		}
	}
	return i == len(got)
}
