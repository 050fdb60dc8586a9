package flow

import (
	"slices"
	"testing"
)

func TestLintClean(t *testing.T) {
	g := newTestGraph()
	play := mustAdd(t, g, TypePlay)
	end := mustAdd(t, g, TypeEnd)
	mustConnect(t, g, g.StartID(), play.ID)
	mustConnect(t, g, play.ID, end.ID)

	if w := Lint(g); len(w) != 0 {
		t.Errorf("Lint() = %v, want none", w)
	}
}

func TestLint(t *testing.T) {
	g := newTestGraph()
	menu := mustAdd(t, g, TypeMenu)
	end := mustAdd(t, g, TypeEnd)
	orphan := mustAdd(t, g, TypeSplitter)
	pixel := mustAdd(t, g, TypePixel)
	mustConnect(t, g, g.StartID(), menu.ID)
	mustConnect(t, g, menu.ID, end.ID)
	mustConnect(t, g, end.ID, pixel.ID)

	if err := g.UpdateNodeConfig(menu.ID, map[string]any{
		"options": []MenuOption{{Key: "1"}, {Key: "1"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := g.UpdateNodeConfig(orphan.ID, map[string]any{
		"targets": []SplitTarget{{Name: "A", Percentage: 70}, {Name: "B", Percentage: 20}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := g.UpdateNodeConfig(pixel.ID, map[string]any{"url": "ftp://tracker"}); err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, w := range Lint(g) {
		got = append(got, w.String())
	}
	want := []string{
		`node-1: menu key "1" is used more than once`,
		`node-2: end node "New end" has outgoing connections`,
		`node-3: "New splitter" is not reachable from the start node`,
		`node-3: "New splitter" has no outgoing connection`,
		`node-3: split percentages add up to 90, not 100`,
		`node-4: "New pixel" has no outgoing connection`,
		`node-4: pixel URL must use http or https scheme`,
	}
	if !slices.Equal(got, want) {
		t.Errorf("Lint() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuyerIDs(t *testing.T) {
	g := newTestGraph()
	a := mustAdd(t, g, TypeAction)
	r := mustAdd(t, g, TypeRouter)
	if err := g.UpdateNodeConfig(a.ID, map[string]any{"buyerId": "b-1"}); err != nil {
		t.Fatal(err)
	}
	if err := g.UpdateNodeConfig(r.ID, map[string]any{
		"targets": []RouterTarget{{BuyerID: "b-2"}, {BuyerID: "b-1"}, {BuyerID: ""}},
	}); err != nil {
		t.Fatal(err)
	}

	if got := BuyerIDs(g); !slices.Equal(got, []string{"b-1", "b-2"}) {
		t.Errorf("BuyerIDs() = %v", got)
	}
}

func mustAdd(t *testing.T, g *Graph, typ NodeType) *Node {
	t.Helper()
	n, err := g.AddNode(typ, Position{X: 100, Y: 100})
	if err != nil {
		t.Fatalf("AddNode(%s): %v", typ, err)
	}
	return n
}

func mustConnect(t *testing.T, g *Graph, src, dst string) {
	t.Helper()
	if _, err := g.AddConnection(src, dst, nil); err != nil {
		t.Fatalf("AddConnection(%s, %s): %v", src, dst, err)
	}
}
