package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"yad2_tracker/internal/listing"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<div dir="rtl" style="font-family: Arial, sans-serif;">
<h2>דירות חדשות נמצאו</h2>
<p>נמצאו {{len .}} דירות חדשות התואמות לקריטריונים שלך:</p>
<ul>
{{- range .}}
<li>
{{- if .ImageURL}}<img src="{{.ImageURL}}" alt="" width="160"><br>{{end}}
<strong><a href="{{.Link}}">{{if .Title}}{{.Title}}{{else}}{{.Link}}{{end}}</a></strong><br>
<strong>מחיר:</strong> {{.Price}}<br>
<strong>כתובת:</strong> {{.Address}}<br>
<strong>מפרסם:</strong> {{.SellerKind.Label}}<br>
{{- if .Tags}}<small>{{range $i, $t := .Tags}}{{if $i}} · {{end}}{{$t}}{{end}}</small><br>{{end}}
<hr>
</li>
{{- end}}
</ul>
</div>`))

// Digest is a rendered email.
type Digest struct {
	Subject string
	HTML    string
}

// Subject carries the ad count.
func Subject(count int) string {
	return fmt.Sprintf("🏠 %d דירות חדשות נמצאו ביד2!", count)
}

// RenderDigest renders one HTML email listing every ad. Ad fields are escaped.
func RenderDigest(listings []listing.Listing) (Digest, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, listings); err != nil {
		return Digest{}, fmt.Errorf("render digest: %w", err)
	}
	return Digest{Subject: Subject(len(listings)), HTML: buf.String()}, nil
}
