package flow

// DefaultConfig returns the default configuration for a node type.
//
// The values are a contract with the execution engine, which expects the
// required fields pre-populated. Every call returns fresh slices, so callers
// may modify the result. Start and unknown types yield [EmptyConfig].
func DefaultConfig(t NodeType) Config {
	switch t {
	case TypeCondition:
		return ConditionConfig{
			ConditionType: ConditionTime,
			Operator:      "between",
			Value:         ConditionValue{Start: "09:00", End: "17:00"},
		}
	case TypeAction:
		return ActionConfig{
			ActionType:  ActionRoute,
			Destination: "",
			BuyerID:     "",
		}
	case TypeMenu:
		return MenuConfig{
			MenuType:       "dtmf",
			WelcomeMessage: "Welcome! Press 1 for sales or 2 for support.",
			Options: []MenuOption{
				{Key: "1", Label: "Sales", Action: ActionRoute},
				{Key: "2", Label: "Support", Action: ActionRoute},
			},
			Timeout: 10,
			Retries: 3,
		}
	case TypeGather:
		return GatherConfig{
			GatherType:  GatherDigits,
			Prompt:      "Please enter your information followed by the pound key.",
			NumDigits:   10,
			Timeout:     5,
			FinishOnKey: "#",
		}
	case TypePlay:
		return PlayConfig{
			AudioType: AudioTTS,
			Message:   "Thank you for calling.",
			AudioURL:  "",
			Voice:     "alice",
			Language:  "en-US",
		}
	case TypeHours:
		weekday := DayHours{Open: "09:00", Close: "17:00", Enabled: true}
		weekend := DayHours{Open: "09:00", Close: "17:00", Enabled: false}
		return HoursConfig{
			Timezone: "America/New_York",
			BusinessHours: BusinessHours{
				Monday:    weekday,
				Tuesday:   weekday,
				Wednesday: weekday,
				Thursday:  weekday,
				Friday:    weekday,
				Saturday:  weekend,
				Sunday:    weekend,
			},
			HolidayHandling: "closed",
		}
	case TypeRouter:
		return RouterConfig{
			RoutingType:     RoutingPriority,
			RTBEnabled:      false,
			CapacityLimits:  true,
			FailoverEnabled: true,
			Targets:         []RouterTarget{},
		}
	case TypeSplitter:
		return SplitterConfig{
			SplitType: SplitPercentage,
			Targets: []SplitTarget{
				{Name: "Route A", Percentage: 50, Destination: ""},
				{Name: "Route B", Percentage: 50, Destination: ""},
			},
		}
	case TypePixel:
		return PixelConfig{
			PixelType:  PixelPostback,
			URL:        "",
			Method:     "GET",
			Parameters: []PixelParameter{},
		}
	case TypeJavaScript:
		return JavaScriptConfig{
			Code:    "// Return the label of the connection to follow.\nreturn 'Default';",
			Timeout: 5000,
		}
	case TypeEnd:
		return EndConfig{
			EndType: EndHangup,
			Message: "",
		}
	default:
		return EmptyConfig{}
	}
}

// DefaultLabel returns the display name given to a freshly created node.
func DefaultLabel(t NodeType) string {
	if t == TypeStart {
		return StartLabel
	}
	return "New " + string(t)
}

// decoders build a zero variant for t and fill it through decode. They back
// every codec (JSON, BSON, YAML, partial-map merge) so the per-type switch
// exists once.
var decoders = map[NodeType]func(decode func(any) error) (Config, error){
	TypeStart:      decodeAs[EmptyConfig],
	TypeCondition:  decodeAs[ConditionConfig],
	TypeAction:     decodeAs[ActionConfig],
	TypeMenu:       decodeAs[MenuConfig],
	TypeGather:     decodeAs[GatherConfig],
	TypePlay:       decodeAs[PlayConfig],
	TypeHours:      decodeAs[HoursConfig],
	TypeRouter:     decodeAs[RouterConfig],
	TypeSplitter:   decodeAs[SplitterConfig],
	TypePixel:      decodeAs[PixelConfig],
	TypeJavaScript: decodeAs[JavaScriptConfig],
	TypeEnd:        decodeAs[EndConfig],
}

func decodeAs[C Config](decode func(any) error) (Config, error) {
	var c C
	if err := decode(&c); err != nil {
		return nil, err
	}
	return c, nil
}
