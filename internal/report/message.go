// Package report provides the raw report envelope shared by every parser.
package report

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt64 handles JSON fields that can be either string or number.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*f = FlexInt64(i)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil // Upstream feeds occasionally send opaque IDs.
		}
		*f = FlexInt64(i)
		return nil
	}

	*f = 0
	return nil
}

// Message is one raw aviation report. Text is never modified after decoding;
// parsers read it and build new records from it.
type Message struct {
	ID        FlexInt64 `json:"id"`
	Kind      Kind      `json:"kind,omitempty"`
	Text      string    `json:"text"`
	Airport   string    `json:"airport,omitempty"` // Optional airport hint.
	Source    string    `json:"source,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// ResolvedKind returns the tagged kind, falling back to content detection
// for untagged messages.
func (m *Message) ResolvedKind() Kind {
	if m.Kind != KindUnknown {
		return m.Kind
	}
	return Detect(m.Text)
}

// FeedWrapper is the envelope published on the raw report feed, where the
// report sits inside a "report" field with provider metadata alongside.
type FeedWrapper struct {
	Source  *FeedSource  `json:"source,omitempty"`
	Station *FeedStation `json:"station,omitempty"`
	Report  *FeedReport  `json:"report,omitempty"`
}

// FeedSource names the upstream provider.
type FeedSource struct {
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// FeedStation identifies the reporting or affected station.
type FeedStation struct {
	ICAO string `json:"icao,omitempty"`
	Name string `json:"name,omitempty"`
}

// FeedReport is the inner report structure of the feed.
type FeedReport struct {
	ID        FlexInt64 `json:"id"`
	Type      string    `json:"type"`
	Timestamp string    `json:"timestamp"`
	Text      string    `json:"text"`
}

// ToMessage converts a FeedWrapper to a Message.
func (w *FeedWrapper) ToMessage() *Message {
	if w.Report == nil {
		return nil
	}

	msg := &Message{
		ID:        w.Report.ID,
		Kind:      ParseKind(w.Report.Type),
		Text:      w.Report.Text,
		Timestamp: w.Report.Timestamp,
	}
	if w.Station != nil {
		msg.Airport = strings.ToUpper(w.Station.ICAO)
	}
	if w.Source != nil {
		msg.Source = w.Source.Name
	}
	return msg
}

// DecodeMessage accepts either a flat Message or a FeedWrapper.
func DecodeMessage(data []byte) (*Message, error) {
	var wrapper FeedWrapper
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Report != nil {
		return wrapper.ToMessage(), nil
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
