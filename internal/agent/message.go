package agent

import (
	"time"

	"github.com/tidwall/gjson"
)

// MessageKind identifies the transcript messages worth showing to the user.
type MessageKind int

const (
	// KindAssistant is a piece of assistant prose.
	KindAssistant MessageKind = iota + 1
	// KindFinal is the closing summary with cost and wall time.
	KindFinal
)

// Message is a decoded line of agent output.
type Message struct {
	Kind     MessageKind
	Text     string
	CostUSD  float64
	Duration time.Duration
}

// DecodeMessage recognizes one line of agent stdout or stderr. It returns nil
// for anything that is not a known transcript shape, including non-JSON lines.
//
// Recognized shapes:
//
//	{"type":"result","cost_usd":n,"duration_ms":n}          claude final (total_cost_usd also accepted)
//	{"role":"system","cost_usd":n,"duration_ms":n}          brief final
//	{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":s}]}}
//	{"role":"assistant","content":[...,{"type":"text","text":s}]}
//	{"item":{"type":"agent_message","text":s}}              codex
func DecodeMessage(line string) *Message {
	if !gjson.Valid(line) {
		return nil
	}
	root := gjson.Parse(line)
	if !root.IsObject() {
		return nil
	}

	if root.Get("type").String() == "result" {
		cost := root.Get("cost_usd")
		if !cost.Exists() {
			cost = root.Get("total_cost_usd")
		}
		if m := finalMessage(cost, root.Get("duration_ms")); m != nil {
			return m
		}
	}

	if root.Get("role").String() == "system" {
		if m := finalMessage(root.Get("cost_usd"), root.Get("duration_ms")); m != nil {
			return m
		}
	}

	if root.Get("type").String() == "assistant" {
		msg := root.Get("message")
		if msg.Get("role").String() == "assistant" {
			first := msg.Get("content.0")
			if first.Get("type").String() == "text" {
				return assistantMessage(first.Get("text"))
			}
			return nil
		}
	}

	if root.Get("role").String() == "assistant" {
		content := root.Get("content")
		if !content.IsArray() {
			return nil
		}
		for _, item := range content.Array() {
			if item.Get("type").String() == "text" {
				return assistantMessage(item.Get("text"))
			}
		}
		return nil
	}

	if item := root.Get("item"); item.Get("type").String() == "agent_message" {
		return assistantMessage(item.Get("text"))
	}

	return nil
}

func finalMessage(cost, durationMs gjson.Result) *Message {
	if cost.Type != gjson.Number || durationMs.Type != gjson.Number {
		return nil
	}
	return &Message{
		Kind:     KindFinal,
		CostUSD:  cost.Float(),
		Duration: time.Duration(durationMs.Float() * float64(time.Millisecond)),
	}
}

func assistantMessage(text gjson.Result) *Message {
	if text.Type != gjson.String || text.String() == "" {
		return nil
	}
	return &Message{Kind: KindAssistant, Text: text.String()}
}
