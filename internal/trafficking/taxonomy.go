package trafficking

import (
	"strings"

	"github.com/patrickwarner/openadops/internal/models"
)

// BuildPlacementTaxonomy constructs the pipe-delimited placement name:
//
//	campaign_name|targeting_geo|language|brand_code|title_name|objective|channel_mapped
//
// Each field falls back independently when the campaign record is missing
// it; geo and brand prefer the ticket-level value before the UNKNOWN
// fallback. The result always has exactly seven fields (six pipes), which
// the taxonomy QA check enforces downstream.
func BuildPlacementTaxonomy(t models.Ticket, c *models.Campaign) string {
	name := "UNKNOWN_CAMP"
	geo := t.TargetingGeo
	lang := "ENG"
	brand := t.Brand
	title := "UNKNOWN_TITLE"
	objective := "Acq"
	channel := "ProgDisplay"

	if c != nil {
		if c.Name != "" {
			name = c.Name
		}
		if c.TargetingGeo != "" {
			geo = c.TargetingGeo
		}
		if c.Language != "" {
			lang = c.Language
		}
		if c.BrandCode != "" {
			brand = c.BrandCode
		}
		if c.TitleName != "" {
			title = c.TitleName
		}
		if c.Objective != "" {
			objective = c.Objective
		}
		if c.ChannelMapped != "" {
			channel = c.ChannelMapped
		}
	}
	if geo == "" {
		geo = "UNKNOWN_GEO"
	}
	if brand == "" {
		brand = "UNKNOWN_BRAND"
	}

	return strings.Join([]string{name, geo, lang, brand, title, objective, channel}, "|")
}
