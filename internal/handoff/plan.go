package handoff

import (
	"time"

	"github.com/angelmondragon/vitrine-backend/pkg/enums"
)

// DefaultGrace is how long the primary channel gets before the web link is opened anyway.
const DefaultGrace = 1500 * time.Millisecond

type Channel string

const (
	ChannelIntent Channel = "intent"
	ChannelApp    Channel = "app"
	ChannelWeb    Channel = "web"
)

// Step is one navigation attempt.
type Step struct {
	Channel Channel       `json:"channel"`
	URL     string        `json:"url"`
	After   time.Duration `json:"-"`
	AfterMS int64         `json:"after_ms"`
	NewTab  bool          `json:"new_tab"`
}

// Plan attempts Primary and then Fallback after its delay, whether or not the primary appeared to work.
type Plan struct {
	Device   enums.DeviceClass `json:"device"`
	Message  string            `json:"message"`
	Links    Links             `json:"links"`
	Primary  Step              `json:"primary"`
	Fallback *Step             `json:"fallback,omitempty"`
}

func NewPlan(device enums.DeviceClass, message string, links Links, grace time.Duration) Plan {
	if grace <= 0 {
		grace = DefaultGrace
	}
	plan := Plan{Device: device, Message: message, Links: links}
	web := Step{Channel: ChannelWeb, URL: links.Web, NewTab: true}

	switch device {
	case enums.DeviceClassAndroid:
		plan.Primary = Step{Channel: ChannelIntent, URL: links.Intent}
	case enums.DeviceClassMobile:
		plan.Primary = Step{Channel: ChannelApp, URL: links.App}
	default:
		plan.Primary = web
		return plan
	}

	web.After = grace
	web.AfterMS = grace.Milliseconds()
	plan.Fallback = &web
	return plan
}
