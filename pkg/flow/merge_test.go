package flow

import (
	"reflect"
	"testing"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name     string
		typ      NodeType
		partial  map[string]any
		check    func(t *testing.T, c Config)
		wantCode errs.Code
	}{
		{
			name:    "MenuTimeout",
			typ:     TypeMenu,
			partial: map[string]any{"timeout": 20},
			check: func(t *testing.T, c Config) {
				m := c.(MenuConfig)
				if m.Timeout != 20 || m.Retries != 3 || len(m.Options) != 2 {
					t.Errorf("merged = %+v", m)
				}
			},
		},
		{
			name:    "JSONNumber",
			typ:     TypeGather,
			partial: map[string]any{"numDigits": float64(4)},
			check: func(t *testing.T, c Config) {
				if got := c.(GatherConfig).NumDigits; got != 4 {
					t.Errorf("NumDigits = %d, want 4", got)
				}
			},
		},
		{
			name: "ReplacesWholeList",
			typ:  TypeMenu,
			partial: map[string]any{"options": []any{
				map[string]any{"key": "9", "label": "Operator", "action": "transfer"},
			}},
			check: func(t *testing.T, c Config) {
				want := []MenuOption{{Key: "9", Label: "Operator", Action: "transfer"}}
				if got := c.(MenuConfig).Options; !reflect.DeepEqual(got, want) {
					t.Errorf("Options = %+v, want %+v", got, want)
				}
			},
		},
		{
			name:    "NestedStructReplaced",
			typ:     TypeCondition,
			partial: map[string]any{"value": map[string]any{"start": "08:00"}},
			check: func(t *testing.T, c Config) {
				v := c.(ConditionConfig).Value
				if v.Start != "08:00" || v.End != "" {
					t.Errorf("Value = %+v, want shallow replacement", v)
				}
			},
		},
		{
			name:    "Empty",
			typ:     TypePlay,
			partial: map[string]any{},
			check: func(t *testing.T, c Config) {
				if c != DefaultConfig(TypePlay) {
					t.Errorf("empty merge changed config: %+v", c)
				}
			},
		},
		{
			name:     "UnknownKey",
			typ:      TypePlay,
			partial:  map[string]any{"volume": 11},
			wantCode: errs.ErrCodeInvalidInput,
		},
		{
			name:     "WrongShape",
			typ:      TypeMenu,
			partial:  map[string]any{"timeout": "soon"},
			wantCode: errs.ErrCodeInvalidInput,
		},
		{
			name:     "FractionalTimeout",
			typ:      TypeMenu,
			partial:  map[string]any{"timeout": 7.9},
			wantCode: errs.ErrCodeInvalidInput,
		},
		{
			name:    "WholeFloatTimeout",
			typ:     TypeJavaScript,
			partial: map[string]any{"timeout": 2500.0},
			check: func(t *testing.T, c Config) {
				if got := c.(JavaScriptConfig).Timeout; got != 2500 {
					t.Errorf("Timeout = %d, want 2500", got)
				}
			},
		},
		{
			name:     "UnknownType",
			typ:      "fax",
			partial:  map[string]any{},
			wantCode: errs.ErrCodeInvalidNodeType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MergeConfig(tt.typ, DefaultConfig(tt.typ), tt.partial)
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Fatalf("err = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("MergeConfig: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestMergeConfigLeavesBaseUntouched(t *testing.T) {
	base := DefaultConfig(TypeSplitter)
	_, err := MergeConfig(TypeSplitter, base, map[string]any{"splitType": "weight"})
	if err != nil {
		t.Fatalf("MergeConfig: %v", err)
	}
	if base.(SplitterConfig).SplitType != "percentage" {
		t.Error("base modified")
	}
}

func TestMergeConfigMismatchedBase(t *testing.T) {
	_, err := MergeConfig(TypeMenu, DefaultConfig(TypePlay), nil)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want invalid input", err)
	}
}

func TestUpdateNodeConfig(t *testing.T) {
	g := newTestGraph()
	n, _ := g.AddNode(TypeRouter, Position{})

	err := g.UpdateNodeConfig(n.ID, map[string]any{
		"rtbEnabled": true,
		"targets":    []any{map[string]any{"buyerId": "b-1", "priority": 1, "capacity": 25}},
	})
	if err != nil {
		t.Fatalf("UpdateNodeConfig: %v", err)
	}
	cfg := n.Data.Config.(RouterConfig)
	if !cfg.RTBEnabled || !cfg.FailoverEnabled || cfg.RoutingType != "priority" {
		t.Errorf("config = %+v", cfg)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].BuyerID != "b-1" || cfg.Targets[0].Capacity != 25 {
		t.Errorf("Targets = %+v", cfg.Targets)
	}

	before := n.Data.Config
	if err := g.UpdateNodeConfig(n.ID, map[string]any{"nope": 1}); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !reflect.DeepEqual(n.Data.Config, before) {
		t.Error("rejected update changed config")
	}
}

func TestSetNodeConfig(t *testing.T) {
	g := newTestGraph()
	n, _ := g.AddNode(TypeEnd, Position{})

	if err := g.SetNodeConfig(n.ID, EndConfig{EndType: EndMessage, Message: "Goodbye"}); err != nil {
		t.Fatalf("SetNodeConfig: %v", err)
	}
	if err := g.SetNodeConfig(n.ID, PlayConfig{}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want invalid input", err)
	}
	if got := n.Data.Config.(EndConfig).Message; got != "Goodbye" {
		t.Errorf("Message = %q", got)
	}
}

func TestConfigToMap(t *testing.T) {
	m, err := ConfigToMap(DefaultConfig(TypeHours))
	if err != nil {
		t.Fatalf("ConfigToMap: %v", err)
	}
	if m["timezone"] != "America/New_York" {
		t.Errorf("timezone = %v", m["timezone"])
	}
	hours, ok := m["businessHours"].(map[string]any)
	if !ok {
		t.Fatalf("businessHours is %T, want map", m["businessHours"])
	}
	if _, ok := hours["saturday"]; !ok {
		t.Error("saturday missing")
	}
}
