package model

import "strings"

const (
	MessageTitle    = "以下のファイルが更新されました。"
	MessageFallback = "Dropboxが更新されました。"
	MessageColor    = "#0062ff"
)

// OutboundMessage is the Slack incoming-webhook payload. An empty Channel is
// omitted so the webhook posts to its configured default channel.
type OutboundMessage struct {
	Channel     string       `json:"channel,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	Fallback string  `json:"fallback"`
	Color    string  `json:"color"`
	Fields   []Field `json:"fields"`
}

type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// NewOutboundMessage builds the single-attachment summary for one channel.
func NewOutboundMessage(channel string, files []FileInfo) OutboundMessage {
	tokens := make([]string, 0, len(files))
	for _, f := range files {
		tokens = append(tokens, f.LinkToken())
	}

	return OutboundMessage{
		Channel: channel,
		Attachments: []Attachment{
			{
				Fallback: MessageFallback,
				Color:    MessageColor,
				Fields: []Field{
					{Title: MessageTitle, Value: strings.Join(tokens, "\n")},
				},
			},
		},
	}
}

// WithoutChannel returns a copy addressed to the webhook's default channel.
func (m OutboundMessage) WithoutChannel() OutboundMessage {
	m.Channel = ""
	return m
}
