package dashboard

import (
	"context"

	"regional-pulse/analytics"
	"regional-pulse/models"
)

// PanelItem is one headline of the side panel with its economic keywords.
type PanelItem struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// RegionView is everything the map shows for one canonical region.
type RegionView struct {
	analytics.RegionStat
	Color     string        `json:"color"`
	BandLabel string        `json:"band_label"`
	Popup     []ArticleView `json:"popup"`
	Panel     []PanelItem   `json:"panel"`
}

// LegendEntry is one band of the map legend.
type LegendEntry struct {
	Band  analytics.Band `json:"band"`
	Color string         `json:"color"`
	Label string         `json:"label"`
}

// MapPayload feeds the region map. Regions is empty, not all no-data, when
// the snapshot holds no record at all.
type MapPayload struct {
	Regions       []RegionView                    `json:"regions"`
	Stats         map[string]analytics.RegionStat `json:"stats"`
	Geo           map[string]string               `json:"geo"`
	Legend        []LegendEntry                   `json:"legend"`
	Unmapped      int                             `json:"unmapped"`
	MissingRegion int                             `json:"missing_region"`
	Unscored      int                             `json:"unscored"`
}

// Legend lists every band in display order.
func Legend() []LegendEntry {
	bands := analytics.Bands()
	out := make([]LegendEntry, len(bands))
	for i, b := range bands {
		out[i] = LegendEntry{Band: b, Color: b.Color(), Label: b.Label()}
	}
	return out
}

// GeoRegion maps a GeoJSON province name onto a canonical region.
func (s *Service) GeoRegion(name string) (string, bool) {
	if canonical, ok := s.taxonomy.GeoRegions[name]; ok {
		return canonical, true
	}
	return s.normalizer.Normalize(name)
}

// RegionMap aggregates the date-filtered snapshot over all regions. The
// filter's region is ignored; the map always shows every region.
func (s *Service) RegionMap(ctx context.Context, f Filter) (*MapPayload, error) {
	f.Region = ""
	records, err := s.records(ctx, f, models.NewsQuery{})
	if err != nil {
		return nil, err
	}

	report := s.aggregator.AggregateReport(records)
	payload := &MapPayload{
		Regions:       []RegionView{},
		Stats:         report.Stats,
		Geo:           s.geoLookup(),
		Legend:        Legend(),
		Unmapped:      report.Unmapped,
		MissingRegion: report.MissingRegion,
		Unscored:      report.Unscored,
	}
	if len(report.Stats) == 0 {
		return payload, nil
	}

	newestFirst(records)
	byRegion := make(map[string][]models.NewsRecord)
	for _, rec := range records {
		label, ok := rec.RegionLabel()
		if !ok {
			continue
		}
		if canonical, ok := s.normalizer.Normalize(label); ok {
			byRegion[canonical] = append(byRegion[canonical], rec)
		}
	}

	for _, name := range s.normalizer.Regions() {
		stat := report.Stats[name]
		view := RegionView{
			RegionStat: stat,
			Color:      stat.Band.Color(),
			BandLabel:  stat.Band.Label(),
			Popup:      []ArticleView{},
			Panel:      []PanelItem{},
		}
		if stat.TotalCount > 0 {
			view.Popup = s.popup(byRegion[name])
			view.Panel = s.panel(byRegion[name])
		}
		payload.Regions = append(payload.Regions, view)
	}
	return payload, nil
}

func (s *Service) popup(records []models.NewsRecord) []ArticleView {
	n := min(len(records), s.opts.PopupSize)
	out := make([]ArticleView, n)
	for i := range n {
		out[i] = articleView(records[i])
	}
	return out
}

func (s *Service) panel(records []models.NewsRecord) []PanelItem {
	n := min(len(records), s.opts.PanelSize)
	out := make([]PanelItem, n)
	for i := range n {
		title := records[i].Title
		if title == "" {
			title = "제목 없음"
		}
		keywords := s.classifier.DomainKeywords(records[i].KeywordText(), 5)
		if keywords == nil {
			keywords = []string{}
		}
		out[i] = PanelItem{Title: title, Keywords: keywords}
	}
	return out
}

func (s *Service) geoLookup() map[string]string {
	out := make(map[string]string, len(s.taxonomy.GeoRegions))
	for k, v := range s.taxonomy.GeoRegions {
		out[k] = v
	}
	return out
}
