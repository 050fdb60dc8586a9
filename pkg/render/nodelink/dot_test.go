package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/ivrflow/pkg/flow"
)

func buildFlow(t *testing.T) *flow.Graph {
	t.Helper()
	g := flow.New(flow.WithIDGenerator(flow.NewSequence()))
	menu, err := g.AddNode(flow.TypeMenu, flow.Position{X: 250, Y: 200})
	if err != nil {
		t.Fatal(err)
	}
	end, err := g.AddNode(flow.TypeEnd, flow.Position{X: 250, Y: 350})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddConnection(g.StartID(), menu.ID, nil); err != nil {
		t.Fatal(err)
	}
	empty := ""
	c, err := g.AddConnection(menu.ID, end.ID, &empty)
	if err != nil {
		t.Fatal(err)
	}
	cond := "digit == 1"
	if err := g.UpdateConnectionCondition(c.ID, &cond); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(buildFlow(t), Options{})

	want := []string{
		"digraph flow {",
		"rankdir=TB;",
		`"start" [label="Call Start", shape=oval`,
		`"node-1" [label="New menu", shape=box`,
		`"node-2" [label="New end", shape=oval`,
		`"start" -> "node-1" [label="Default"];`,
		`"node-1" -> "node-2" [label="+", tooltip="digit == 1"];`,
	}
	for _, w := range want {
		if !strings.Contains(dot, w) {
			t.Errorf("DOT missing %q\n%s", w, dot)
		}
	}
}

func TestToDOTAbsentLabel(t *testing.T) {
	g, err := flow.Restore(
		[]flow.Node{
			{ID: "s", Type: flow.TypeStart, Data: flow.NodeData{Label: "Start", Config: flow.EmptyConfig{}}},
			{ID: "e", Type: flow.TypeEnd, Data: flow.NodeData{Label: "Bye", Config: flow.DefaultConfig(flow.TypeEnd)}},
		},
		[]flow.Connection{{ID: "c", Source: "s", Target: "e"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(g, Options{LeftToRight: true})
	if !strings.Contains(dot, `"s" -> "e";`) {
		t.Errorf("expected a bare edge:\n%s", dot)
	}
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Errorf("expected LR layout:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(buildFlow(t), Options{Detailed: true})
	if !strings.Contains(dot, `label="New menu\npress 1, 2"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="New end\nhangup"`) {
		t.Errorf("detailed end label missing:\n%s", dot)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		typ  flow.NodeType
		want string
	}{
		{flow.TypeStart, ""},
		{flow.TypeCondition, "time between 09:00-17:00"},
		{flow.TypeAction, "route"},
		{flow.TypeMenu, "press 1, 2"},
		{flow.TypeGather, "digits, 10 digits"},
		{flow.TypePlay, "Thank you for calling."},
		{flow.TypeHours, "America/New_York"},
		{flow.TypeRouter, "priority, 0 targets"},
		{flow.TypeSplitter, "50% / 50%"},
		{flow.TypePixel, "GET"},
		{flow.TypeJavaScript, "script, 5000ms"},
		{flow.TypeEnd, "hangup"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := Summary(flow.DefaultConfig(tt.typ)); got != tt.want {
				t.Errorf("Summary(%s) = %q, want %q", tt.typ, got, tt.want)
			}
		})
	}
}

func TestSummaryAction(t *testing.T) {
	if got := Summary(flow.ActionConfig{ActionType: "route", BuyerID: "b-7"}); got != "route to buyer b-7" {
		t.Errorf("got %q", got)
	}
	if got := Summary(flow.ActionConfig{ActionType: "route", Destination: "+15550100"}); got != "route to +15550100" {
		t.Errorf("got %q", got)
	}
}

func TestSummaryTruncates(t *testing.T) {
	msg := strings.Repeat("a", 40)
	got := Summary(flow.PlayConfig{AudioType: flow.AudioTTS, Message: msg})
	if n := len([]rune(got)); n != 32 {
		t.Errorf("len = %d, want 32", n)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("got %q, want ellipsis", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="120pt" height="80pt" viewBox="0.00 0.00 120.00 80.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 120.00 80.00" width="120" height="80"`) {
		t.Errorf("unexpected root: %s", out)
	}
	if strings.Contains(out, "pt\"") {
		t.Errorf("point units left: %s", out)
	}

	plain := []byte("<svg></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("without viewBox input should be unchanged, got %s", got)
	}
}
