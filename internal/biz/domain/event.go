package domain

// Channel method names invoked on a live consumer
const (
	MethodOnNotification = "onNotification"
	MethodOnSms          = "onSms"
)

// ActionNotifEvent is the broadcast action carrying a captured notification
const ActionNotifEvent = "msgmirror.intent.action.NOTIF_EVENT"

// EventRecord is the normalized form of one captured notification.
// It holds only value fields, so every copy is independent of the capture code.
type EventRecord struct {
	App         string
	Title       string
	Text        string // resolved text, never nil
	SubText     string
	SummaryText string
	BigText     string
	InfoText    string

	Category      string
	ChannelID     string
	GroupKey      string
	Color         string
	Visibility    int
	Priority      int
	BadgeIconType int

	People  string // comma-joined
	Actions string // pipe-joined

	LargeIcon string // base64 PNG
	Picture   string // base64 PNG

	When           int64 // epoch millis
	IsGroupSummary bool
}

// ToMap returns the field set passed to a live consumer's onNotification
func (e EventRecord) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"app":            e.App,
		"title":          e.Title,
		"text":           e.Text,
		"subText":        e.SubText,
		"summaryText":    e.SummaryText,
		"bigText":        e.BigText,
		"infoText":       e.InfoText,
		"category":       e.Category,
		"channelId":      e.ChannelID,
		"groupKey":       e.GroupKey,
		"color":          e.Color,
		"visibility":     e.Visibility,
		"priority":       e.Priority,
		"badgeIconType":  e.BadgeIconType,
		"people":         e.People,
		"actions":        e.Actions,
		"largeIcon":      e.LargeIcon,
		"picture":        e.Picture,
		"when":           e.When,
		"isGroupSummary": e.IsGroupSummary,
	}
}

// ToIntent builds the device-wide broadcast for this record
func (e EventRecord) ToIntent() Intent {
	return Intent{Action: ActionNotifEvent, Extras: e.ToMap()}
}

// Intent is an out-of-process broadcast: an action plus discrete typed extras
type Intent struct {
	ID     string                 `json:"id,omitempty"`
	Action string                 `json:"action"`
	Extras map[string]interface{} `json:"extras"`
}

// StringExtra returns the string extra under key, or "" if absent or mistyped
func (i Intent) StringExtra(key string) string {
	s, _ := i.Extras[key].(string)
	return s
}

// LongExtra returns the integer extra under key, or def.
// Numbers decoded from JSON arrive as float64.
func (i Intent) LongExtra(key string, def int64) int64 {
	switch v := i.Extras[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return def
	}
}

// BoolExtra returns the boolean extra under key, or def
func (i Intent) BoolExtra(key string, def bool) bool {
	if v, ok := i.Extras[key].(bool); ok {
		return v
	}
	return def
}

// SmsMessage is the most recent inbound SMS row
type SmsMessage struct {
	From string `json:"from"`
	Body string `json:"body"`
	Date int64  `json:"date"` // epoch millis
}

// ToMap returns the field set passed to a live consumer's onSms
func (m SmsMessage) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"from": m.From,
		"body": m.Body,
		"date": m.Date,
	}
}
