package tags

import (
	"slices"
	"testing"

	"github.com/matzehuels/docsmith/pkg/doc"
)

func TestHighlightsInline(t *testing.T) {
	c := doc.Content("{@include [A]}")
	regions, err := Find(c, NameSet("include"))
	if err != nil || len(regions) != 1 {
		t.Fatalf("Find() = %v, %v", regions, err)
	}

	hs := Highlights(c, regions[0], true, false)
	byKind := map[Kind][]Highlight{}
	for _, h := range hs {
		byKind[h.Kind] = append(byKind[h.Kind], h)
	}

	if got := byKind[KindTag][0].Ranges; !slices.Equal(got, []Range{{1, 8}}) {
		t.Errorf("tag ranges = %v, want [{1 8}]", got)
	}
	if got := byKind[KindTagKey][0].Ranges; !slices.Equal(got, []Range{{10, 12}}) {
		t.Errorf("key ranges = %v, want [{10 12}]", got)
	}
	if n := len(byKind[KindBracket]); n != 2 {
		t.Fatalf("bracket highlights = %d, want 2", n)
	}
	if rel := byKind[KindBracket][0].Related; len(rel) != 1 || rel[0].Ranges[0] != (Range{13, 13}) {
		t.Errorf("left bracket related = %v, want right bracket", rel)
	}
	if got := byKind[KindBackground][0].Ranges; !slices.Equal(got, []Range{{0, 12}, {13, 13}}) {
		t.Errorf("background ranges = %v", got)
	}
}

func TestHighlightsBlockValue(t *testing.T) {
	c := doc.Content("@set key some value")
	regions, err := Find(c, NameSet("set"))
	if err != nil || len(regions) != 1 {
		t.Fatalf("Find() = %v, %v", regions, err)
	}

	hs := Highlights(c, regions[0], true, true)
	var key, value *Highlight
	for i := range hs {
		switch hs[i].Kind {
		case KindTagKey:
			key = &hs[i]
		case KindTagValue:
			value = &hs[i]
		case KindBracket:
			t.Errorf("block tag has bracket highlight %v", hs[i])
		}
	}
	if key == nil || key.Ranges[0] != (Range{5, 7}) {
		t.Errorf("key = %v, want {5 7}", key)
	}
	if value == nil || value.Ranges[0] != (Range{9, 18}) {
		t.Errorf("value = %v, want {9 18}", value)
	}
}

func TestCommentHighlight(t *testing.T) {
	hs := CommentHighlight(Region{Name: "comment", Start: 3, End: 10, Block: true})
	if len(hs) != 1 || hs[0].Kind != KindComment || hs[0].Ranges[0] != (Range{3, 9}) {
		t.Errorf("CommentHighlight() = %v", hs)
	}
}
