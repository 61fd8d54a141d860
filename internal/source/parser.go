package source

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"yad2_tracker/internal/listing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultItemBaseURL prefixes the marker token to build the public ad link.
const DefaultItemBaseURL = "https://www.yad2.co.il/item/"

type feedPayload struct {
	Data *struct {
		Markers []marker `json:"markers"`
	} `json:"data"`
}

type textField struct {
	Text string `json:"text"`
}

type marker struct {
	Token   string       `json:"token"`
	AdType  string       `json:"adType"`
	Price   *json.Number `json:"price"`
	Address struct {
		City         *textField `json:"city"`
		Area         *textField `json:"area"`
		Neighborhood *textField `json:"neighborhood"`
		Street       *textField `json:"street"`
		House        *struct {
			Number *json.Number `json:"number"`
		} `json:"house"`
	} `json:"address"`
	AdditionalDetails struct {
		Property    *textField   `json:"property"`
		RoomsCount  *json.Number `json:"roomsCount"`
		SquareMeter *json.Number `json:"squareMeter"`
	} `json:"additionalDetails"`
	MetaData struct {
		CoverImage string   `json:"coverImage"`
		Images     []string `json:"images"`
	} `json:"metaData"`
	Customer struct {
		AgencyName string `json:"agencyName"`
	} `json:"customer"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

// Parser turns raw feed payloads into normalized listings.
type Parser struct {
	itemBaseURL string
	printer     *message.Printer
}

// NewParser builds a parser. An empty itemBaseURL selects DefaultItemBaseURL.
func NewParser(itemBaseURL string) *Parser {
	if itemBaseURL == "" {
		itemBaseURL = DefaultItemBaseURL
	}
	if !strings.HasSuffix(itemBaseURL, "/") {
		itemBaseURL += "/"
	}
	return &Parser{
		itemBaseURL: itemBaseURL,
		printer:     message.NewPrinter(language.English),
	}
}

// ParseMarkers extracts data.markers from raw. A payload that is not JSON or
// has no markers array yields an empty slice, never an error. Markers without a
// token are skipped. The result depends only on raw and now.
func (p *Parser) ParseMarkers(raw []byte, now time.Time) []listing.Listing {
	var payload feedPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Data == nil {
		return []listing.Listing{}
	}

	out := make([]listing.Listing, 0, len(payload.Data.Markers))
	for i := range payload.Data.Markers {
		m := &payload.Data.Markers[i]
		token := strings.TrimSpace(m.Token)
		if token == "" {
			continue
		}
		out = append(out, listing.Listing{
			ID:           token,
			Title:        buildTitle(m),
			Price:        p.formatPrice(m.Price),
			Address:      buildAddress(m),
			SellerKind:   sellerKind(m),
			Link:         p.itemBaseURL + token,
			Tags:         tagNames(m),
			ImageURL:     coverImage(m),
			DiscoveredAt: now,
		})
	}
	return out
}

// buildTitle produces e.g. "Apartment, 3 rooms, 80 sqm", skipping empty parts.
func buildTitle(m *marker) string {
	var parts []string
	if m.AdditionalDetails.Property != nil {
		if t := strings.TrimSpace(m.AdditionalDetails.Property.Text); t != "" {
			parts = append(parts, t)
		}
	}
	if rooms := positiveNumber(m.AdditionalDetails.RoomsCount); rooms != "" {
		parts = append(parts, rooms+" rooms")
	}
	if sqm := positiveNumber(m.AdditionalDetails.SquareMeter); sqm != "" {
		parts = append(parts, sqm+" sqm")
	}
	return strings.Join(parts, ", ")
}

// buildAddress joins "street number", neighborhood, area and city.
func buildAddress(m *marker) string {
	a := m.Address
	street := text(a.Street)
	if street != "" && a.House != nil {
		if n := positiveNumber(a.House.Number); n != "" {
			street += " " + n
		}
	}

	var parts []string
	for _, part := range []string{street, text(a.Neighborhood), text(a.Area), text(a.City)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func (p *Parser) formatPrice(raw *json.Number) string {
	if raw == nil {
		return listing.PriceNotListed
	}
	f, err := raw.Float64()
	if err != nil || f <= 0 {
		return listing.PriceNotListed
	}
	return p.printer.Sprintf("%d", int64(f)) + " ₪"
}

// sellerKind maps adType. Markers whose adType is unrecognised but that carry
// an agency name are treated as agency listings.
func sellerKind(m *marker) listing.SellerKind {
	switch strings.ToLower(strings.TrimSpace(m.AdType)) {
	case "private":
		return listing.SellerPrivate
	case "agency", "yad1", "project":
		return listing.SellerAgency
	}
	if strings.TrimSpace(m.Customer.AgencyName) != "" {
		return listing.SellerAgency
	}
	return listing.SellerUnknown
}

func tagNames(m *marker) []string {
	var out []string
	for _, t := range m.Tags {
		if name := strings.TrimSpace(t.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func coverImage(m *marker) string {
	if m.MetaData.CoverImage != "" {
		return m.MetaData.CoverImage
	}
	if len(m.MetaData.Images) > 0 {
		return m.MetaData.Images[0]
	}
	return ""
}

func text(f *textField) string {
	if f == nil {
		return ""
	}
	return strings.TrimSpace(f.Text)
}

// positiveNumber renders n without a trailing ".0", or "" when absent or <= 0.
func positiveNumber(n *json.Number) string {
	if n == nil {
		return ""
	}
	f, err := n.Float64()
	if err != nil || f <= 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
