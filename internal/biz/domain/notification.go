package domain

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// Notification flag bits
const (
	FlagOngoingEvent = 0x00000002
	FlagGroupSummary = 0x00000200
)

// Extras keys read from a posted notification
const (
	ExtraTitle       = "android.title"
	ExtraText        = "android.text"
	ExtraBigText     = "android.bigText"
	ExtraTextLines   = "android.textLines"
	ExtraSubText     = "android.subText"
	ExtraSummaryText = "android.summaryText"
	ExtraInfoText    = "android.infoText"
	ExtraPeopleList  = "android.people.list"
	ExtraLargeIcon   = "android.largeIcon"
	ExtraPicture     = "android.picture"
	ExtraGroupKey    = "android.support.groupKey"
)

// ErrExtraType is returned when an extra holds a value of an unexpected type
var ErrExtraType = errors.New("unexpected extra type")

// RawNotification is one notification-posted event as handed over by the host
type RawNotification struct {
	PackageName  string        `json:"package_name"`
	PostTime     int64         `json:"post_time"` // epoch millis
	Notification *Notification `json:"notification"`
}

// Notification is the payload of a posted notification
type Notification struct {
	Flags         int      `json:"flags"`
	Category      string   `json:"category"`
	ChannelID     string   `json:"channel_id"`
	Priority      int      `json:"priority"`
	Visibility    int      `json:"visibility"`
	Color         int      `json:"color"`
	BadgeIconType int      `json:"badge_icon_type"`
	Actions       []Action `json:"actions"`
	Extras        Extras   `json:"extras"`
}

// Action is a notification action button
type Action struct {
	Title string `json:"title"`
}

// Person is a participant attached to a messaging notification
type Person struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// IsOngoing reports whether the notification is persistent (not a user message)
func (n *Notification) IsOngoing() bool {
	return n.Flags&FlagOngoingEvent != 0
}

// IsGroupSummary reports whether the group-summary bit is set
func (n *Notification) IsGroupSummary() bool {
	return n.Flags&FlagGroupSummary != 0
}

// Extras is the loosely typed extras bundle of a notification.
// Values come either from the host adapter directly (Go types) or from
// decoded JSON (string, float64, []interface{}, map[string]interface{}).
type Extras map[string]interface{}

// CharSequence returns the text stored under key, or "" if absent
func (e Extras) CharSequence(key string) (string, error) {
	v, ok := e[key]
	if !ok || v == nil {
		return "", nil
	}
	return charSequence(key, v)
}

// CharSequenceArray returns the text lines stored under key
func (e Extras) CharSequenceArray(key string) ([]string, error) {
	v, ok := e[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case []string:
		return t, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			s, err := charSequence(key, item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %w %T", key, ErrExtraType, v)
	}
}

// People returns the display labels of the participants stored under key
func (e Extras) People(key string) ([]string, error) {
	v, ok := e[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case []string:
		return t, nil
	case []Person:
		out := make([]string, 0, len(t))
		for _, p := range t {
			out = append(out, p.label())
		}
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			switch p := item.(type) {
			case string:
				out = append(out, p)
			case Person:
				out = append(out, p.label())
			case map[string]interface{}:
				name, _ := p["name"].(string)
				uri, _ := p["uri"].(string)
				out = append(out, Person{Name: name, URI: uri}.label())
			default:
				return nil, fmt.Errorf("%s: %w %T", key, ErrExtraType, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %w %T", key, ErrExtraType, v)
	}
}

// Bitmap decodes the image stored under key. Accepts an image.Image,
// encoded image bytes, or base64 of encoded image bytes. Returns nil if absent.
func (e Extras) Bitmap(key string) (image.Image, error) {
	v, ok := e[key]
	if !ok || v == nil {
		return nil, nil
	}
	var raw []byte
	switch t := v.(type) {
	case image.Image:
		return t, nil
	case []byte:
		raw = t
	case string:
		if t == "" {
			return nil, nil
		}
		decoded, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("%s: decode base64: %w", key, err)
		}
		raw = decoded
	default:
		return nil, fmt.Errorf("%s: %w %T", key, ErrExtraType, v)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: decode image: %w", key, err)
	}
	return img, nil
}

func (p Person) label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.URI
}

func charSequence(key string, v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("%s: %w %T", key, ErrExtraType, v)
	}
}

// ResolveText picks the displayed text: primary text, then big text,
// then the joined text lines, then "".
func ResolveText(text, bigText string, lines []string) string {
	if text != "" {
		return text
	}
	if bigText != "" {
		return bigText
	}
	return strings.Join(lines, "\n")
}
