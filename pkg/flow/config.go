package flow

// Config is the type-specific configuration of a node.
//
// It is a closed tagged union: every variant below reports the [NodeType] it
// belongs to, and a node's config must always report the node's own type.
// Switch on the concrete type to handle each variant:
//
//	switch cfg := n.Data.Config.(type) {
//	case flow.MenuConfig:
//	    // cfg.Options ...
//	case flow.PlayConfig:
//	    // cfg.Message ...
//	}
type Config interface {
	NodeType() NodeType
}

// EmptyConfig is the config of the start node, and the empty record the
// registry returns for types it does not know.
type EmptyConfig struct{}

// NodeType implements [Config].
func (EmptyConfig) NodeType() NodeType { return TypeStart }

// =============================================================================
// condition
// =============================================================================

// Condition kinds.
const (
	ConditionTime     = "time"
	ConditionCaller   = "caller"
	ConditionCapacity = "capacity"
)

// ConditionConfig branches on time of day, caller attributes or buyer capacity.
type ConditionConfig struct {
	ConditionType string         `json:"conditionType" bson:"conditionType" yaml:"conditionType"`
	Operator      string         `json:"operator" bson:"operator" yaml:"operator"`
	Value         ConditionValue `json:"value" bson:"value" yaml:"value"`
}

// ConditionValue is the operand range of a condition.
type ConditionValue struct {
	Start string `json:"start" bson:"start" yaml:"start"`
	End   string `json:"end" bson:"end" yaml:"end"`
}

// NodeType implements [Config].
func (ConditionConfig) NodeType() NodeType { return TypeCondition }

// =============================================================================
// action
// =============================================================================

// Action kinds.
const (
	ActionRoute   = "route"
	ActionPlay    = "play"
	ActionCollect = "collect"
	ActionRTB     = "rtb"
)

// ActionConfig routes, plays, collects or runs an RTB auction.
// BuyerID refers to an entry of the buyer lookup provider.
type ActionConfig struct {
	ActionType  string `json:"actionType" bson:"actionType" yaml:"actionType"`
	Destination string `json:"destination" bson:"destination" yaml:"destination"`
	BuyerID     string `json:"buyerId" bson:"buyerId" yaml:"buyerId"`
}

// NodeType implements [Config].
func (ActionConfig) NodeType() NodeType { return TypeAction }

// =============================================================================
// menu
// =============================================================================

// MenuConfig is an IVR menu keyed by DTMF digits.
type MenuConfig struct {
	MenuType       string       `json:"menuType" bson:"menuType" yaml:"menuType"`
	WelcomeMessage string       `json:"welcomeMessage" bson:"welcomeMessage" yaml:"welcomeMessage"`
	Options        []MenuOption `json:"options" bson:"options" yaml:"options"`
	Timeout        int          `json:"timeout" bson:"timeout" yaml:"timeout"`
	Retries        int          `json:"retries" bson:"retries" yaml:"retries"`
}

// MenuOption maps a key press to an action.
type MenuOption struct {
	Key    string `json:"key" bson:"key" yaml:"key"`
	Label  string `json:"label" bson:"label" yaml:"label"`
	Action string `json:"action" bson:"action" yaml:"action"`
}

// NodeType implements [Config].
func (MenuConfig) NodeType() NodeType { return TypeMenu }

// =============================================================================
// gather
// =============================================================================

// Gather input kinds.
const (
	GatherDigits = "digits"
	GatherSpeech = "speech"
	GatherBoth   = "both"
)

// GatherConfig collects caller input.
type GatherConfig struct {
	GatherType  string `json:"gatherType" bson:"gatherType" yaml:"gatherType"`
	Prompt      string `json:"prompt" bson:"prompt" yaml:"prompt"`
	NumDigits   int    `json:"numDigits" bson:"numDigits" yaml:"numDigits"`
	Timeout     int    `json:"timeout" bson:"timeout" yaml:"timeout"`
	FinishOnKey string `json:"finishOnKey" bson:"finishOnKey" yaml:"finishOnKey"`
}

// NodeType implements [Config].
func (GatherConfig) NodeType() NodeType { return TypeGather }

// =============================================================================
// play
// =============================================================================

// Audio sources.
const (
	AudioTTS = "tts"
	AudioURL = "url"
)

// PlayConfig plays text-to-speech or a recorded audio file.
type PlayConfig struct {
	AudioType string `json:"audioType" bson:"audioType" yaml:"audioType"`
	Message   string `json:"message" bson:"message" yaml:"message"`
	AudioURL  string `json:"audioUrl" bson:"audioUrl" yaml:"audioUrl"`
	Voice     string `json:"voice" bson:"voice" yaml:"voice"`
	Language  string `json:"language" bson:"language" yaml:"language"`
}

// NodeType implements [Config].
func (PlayConfig) NodeType() NodeType { return TypePlay }

// =============================================================================
// hours
// =============================================================================

// HoursConfig branches on business hours in a time zone.
type HoursConfig struct {
	Timezone        string        `json:"timezone" bson:"timezone" yaml:"timezone"`
	BusinessHours   BusinessHours `json:"businessHours" bson:"businessHours" yaml:"businessHours"`
	HolidayHandling string        `json:"holidayHandling" bson:"holidayHandling" yaml:"holidayHandling"`
}

// BusinessHours holds one schedule entry per weekday.
type BusinessHours struct {
	Monday    DayHours `json:"monday" bson:"monday" yaml:"monday"`
	Tuesday   DayHours `json:"tuesday" bson:"tuesday" yaml:"tuesday"`
	Wednesday DayHours `json:"wednesday" bson:"wednesday" yaml:"wednesday"`
	Thursday  DayHours `json:"thursday" bson:"thursday" yaml:"thursday"`
	Friday    DayHours `json:"friday" bson:"friday" yaml:"friday"`
	Saturday  DayHours `json:"saturday" bson:"saturday" yaml:"saturday"`
	Sunday    DayHours `json:"sunday" bson:"sunday" yaml:"sunday"`
}

// DayHours is the open window of a single day, as "HH:MM" strings.
type DayHours struct {
	Open    string `json:"open" bson:"open" yaml:"open"`
	Close   string `json:"close" bson:"close" yaml:"close"`
	Enabled bool   `json:"enabled" bson:"enabled" yaml:"enabled"`
}

// NodeType implements [Config].
func (HoursConfig) NodeType() NodeType { return TypeHours }

// =============================================================================
// router
// =============================================================================

// Routing strategies.
const (
	RoutingPriority   = "priority"
	RoutingRoundRobin = "round-robin"
	RoutingCapacity   = "capacity"
	RoutingRTB        = "rtb"
)

// RouterConfig distributes a call across buyer targets.
type RouterConfig struct {
	RoutingType     string         `json:"routingType" bson:"routingType" yaml:"routingType"`
	RTBEnabled      bool           `json:"rtbEnabled" bson:"rtbEnabled" yaml:"rtbEnabled"`
	CapacityLimits  bool           `json:"capacityLimits" bson:"capacityLimits" yaml:"capacityLimits"`
	FailoverEnabled bool           `json:"failoverEnabled" bson:"failoverEnabled" yaml:"failoverEnabled"`
	Targets         []RouterTarget `json:"targets" bson:"targets" yaml:"targets"`
}

// RouterTarget is one buyer the router may send the call to.
type RouterTarget struct {
	BuyerID  string `json:"buyerId" bson:"buyerId" yaml:"buyerId"`
	Priority int    `json:"priority" bson:"priority" yaml:"priority"`
	Capacity int    `json:"capacity" bson:"capacity" yaml:"capacity"`
}

// NodeType implements [Config].
func (RouterConfig) NodeType() NodeType { return TypeRouter }

// =============================================================================
// splitter
// =============================================================================

// Split modes.
const (
	SplitPercentage = "percentage"
	SplitWeight     = "weight"
)

// SplitterConfig divides traffic between destinations.
type SplitterConfig struct {
	SplitType string        `json:"splitType" bson:"splitType" yaml:"splitType"`
	Targets   []SplitTarget `json:"targets" bson:"targets" yaml:"targets"`
}

// SplitTarget is one branch of a traffic split.
type SplitTarget struct {
	Name        string `json:"name" bson:"name" yaml:"name"`
	Percentage  int    `json:"percentage" bson:"percentage" yaml:"percentage"`
	Destination string `json:"destination" bson:"destination" yaml:"destination"`
}

// NodeType implements [Config].
func (SplitterConfig) NodeType() NodeType { return TypeSplitter }

// =============================================================================
// pixel
// =============================================================================

// Pixel kinds.
const (
	PixelPostback = "postback"
	PixelImage    = "pixel"
)

// PixelConfig fires a tracking pixel or server-side postback.
type PixelConfig struct {
	PixelType  string           `json:"pixelType" bson:"pixelType" yaml:"pixelType"`
	URL        string           `json:"url" bson:"url" yaml:"url"`
	Method     string           `json:"method" bson:"method" yaml:"method"`
	Parameters []PixelParameter `json:"parameters" bson:"parameters" yaml:"parameters"`
}

// PixelParameter is one query or body parameter of a pixel request.
type PixelParameter struct {
	Name  string `json:"name" bson:"name" yaml:"name"`
	Value string `json:"value" bson:"value" yaml:"value"`
}

// NodeType implements [Config].
func (PixelConfig) NodeType() NodeType { return TypePixel }

// =============================================================================
// javascript
// =============================================================================

// JavaScriptConfig runs operator-supplied script text. Timeout is in milliseconds.
type JavaScriptConfig struct {
	Code    string `json:"code" bson:"code" yaml:"code"`
	Timeout int    `json:"timeout" bson:"timeout" yaml:"timeout"`
}

// NodeType implements [Config].
func (JavaScriptConfig) NodeType() NodeType { return TypeJavaScript }

// =============================================================================
// end
// =============================================================================

// End kinds.
const (
	EndHangup  = "hangup"
	EndMessage = "message"
)

// EndConfig terminates the call, optionally after a message.
type EndConfig struct {
	EndType string `json:"endType" bson:"endType" yaml:"endType"`
	Message string `json:"message" bson:"message" yaml:"message"`
}

// NodeType implements [Config].
func (EndConfig) NodeType() NodeType { return TypeEnd }

// Compile-time checks that every variant implements Config.
var (
	_ Config = EmptyConfig{}
	_ Config = ConditionConfig{}
	_ Config = ActionConfig{}
	_ Config = MenuConfig{}
	_ Config = GatherConfig{}
	_ Config = PlayConfig{}
	_ Config = HoursConfig{}
	_ Config = RouterConfig{}
	_ Config = SplitterConfig{}
	_ Config = PixelConfig{}
	_ Config = JavaScriptConfig{}
	_ Config = EndConfig{}
)
