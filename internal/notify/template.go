// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/tomtom215/lostfound/internal/models"
)

// MatchSubject is the subject line of every match email.
const MatchSubject = "Potential match found for your lost item!"

const matchHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #2c3e50;">We Found a Potential Match!</h2>
  <p>Hi <strong>{{.Username}}</strong>,</p>
  <p>Someone reported a found item that may be yours.</p>

  <div style="border: 1px solid #ddd; border-radius: 6px; padding: 12px; margin: 12px 0;">
    <h3>Your Lost Item</h3>
    <p><strong>{{.LostName}}</strong></p>
    {{- if .LostDescription}}
    <p>{{.LostDescription}}</p>
    {{- end}}
    <p>Location: {{.LostLocation}}</p>
  </div>

  <div style="border: 1px solid #27ae60; border-radius: 6px; padding: 12px; margin: 12px 0;">
    <h3>Potential Match ({{.Score}}% match)</h3>
    <p><strong>{{.FoundName}}</strong></p>
    {{- if .FoundDescription}}
    <p>{{.FoundDescription}}</p>
    {{- end}}
    <p>Found at: {{.FoundLocation}}</p>
  </div>

  <p><a href="{{.Link}}" style="background: #27ae60; color: #fff; padding: 10px 18px; text-decoration: none; border-radius: 4px;">View Found Item</a></p>
  <p>If this is your item, please contact the finder or submit a claim!</p>
</div>
</body>
</html>
`

const matchText = `Hi {{.Username}},

We found a potential match for your lost item.

Your lost item: {{.LostName}}
{{- if .LostDescription}}
{{.LostDescription}}
{{- end}}
Location: {{.LostLocation}}

Potential match ({{.Score}}% match): {{.FoundName}}
{{- if .FoundDescription}}
{{.FoundDescription}}
{{- end}}
Found at: {{.FoundLocation}}

View found item: {{.Link}}

If this is your item, please contact the finder or submit a claim!
`

var (
	matchHTMLTemplate = template.Must(template.New("match.html").Parse(matchHTML))
	matchTextTemplate = texttemplate.Must(texttemplate.New("match.txt").Parse(matchText))
)

// matchView is the data both match templates render from.
type matchView struct {
	Username         string
	LostName         string
	LostDescription  string
	LostLocation     string
	FoundName        string
	FoundDescription string
	FoundLocation    string
	Score            int
	Link             string
}

// MatchRenderer renders match notices as multipart emails.
type MatchRenderer struct {
	BaseURL string
}

// NewMatchRenderer creates a renderer linking to items under baseURL.
func NewMatchRenderer(baseURL string) *MatchRenderer {
	return &MatchRenderer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// ItemLink returns the public URL of an item.
func (r *MatchRenderer) ItemLink(itemID string) string {
	return r.BaseURL + "/items/" + itemID
}

// Render implements Renderer.
func (r *MatchRenderer) Render(n *models.MatchNotice) (*Message, error) {
	if n.Recipient.Email == "" {
		return nil, ErrNoRecipientEmail
	}

	username := n.Recipient.Username
	if username == "" {
		username = "there"
	}
	view := matchView{
		Username:         username,
		LostName:         n.Lost.ItemName,
		LostDescription:  n.Lost.Description,
		LostLocation:     n.Lost.Location,
		FoundName:        n.Found.ItemName,
		FoundDescription: n.Found.Description,
		FoundLocation:    n.Found.Location,
		Score:            n.Score,
		Link:             r.ItemLink(n.Found.ID),
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := matchHTMLTemplate.Execute(&htmlBuf, view); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	if err := matchTextTemplate.Execute(&textBuf, view); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}

	return &Message{
		To:      n.Recipient.Email,
		Subject: MatchSubject,
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
	}, nil
}
