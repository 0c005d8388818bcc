package handoff

import (
	"net/url"
	"strings"
	"unicode"
)

// Links are the three equivalent encodings of one message.
type Links struct {
	Web    string `json:"web"`
	App    string `json:"app"`
	Intent string `json:"intent"`
}

func NewLinks(phone, text string) Links {
	number := Digits(phone)
	encoded := escape(text)
	return Links{
		Web:    "https://wa.me/" + number + "?text=" + encoded,
		App:    "whatsapp://send?phone=" + number + "&text=" + encoded,
		Intent: "intent://send?phone=" + number + "&text=" + encoded + "#Intent;package=com.whatsapp;scheme=whatsapp;end",
	}
}

// ContactLink opens a chat with phone and no prefilled text.
func ContactLink(phone string) string {
	return "https://wa.me/" + Digits(phone)
}

// Digits strips everything but digits, the form wa.me accepts.
func Digits(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}

// escape matches encodeURIComponent: spaces become %20, not '+'.
func escape(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
