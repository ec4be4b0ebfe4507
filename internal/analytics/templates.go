package analytics

import "github.com/ignite/phishing-dashboard/internal/domain"

// TemplateRate is the effectiveness of one template category.
type TemplateRate struct {
	Template        domain.TemplateType `json:"template"`
	Label           string              `json:"label"`
	TotalSent       int                 `json:"total_sent"`
	Clicks          int                 `json:"clicks"`
	Responses       int                 `json:"responses"`
	ClickRatePct    int                 `json:"click_rate_pct"`
	ResponseRatePct int                 `json:"response_rate_pct"`
}

// TemplateEffectiveness computes click and response rates per template
// category. The known categories are always present, in declaration order.
// Logs with any other category land in a trailing "other" row, which is
// only emitted when it has at least one email.
func TemplateEffectiveness(logs []domain.EmailLog) []TemplateRate {
	type counts struct{ sent, clicks, responses int }
	byType := make(map[domain.TemplateType]*counts, len(domain.KnownTemplates)+1)
	for _, t := range domain.KnownTemplates {
		byType[t] = &counts{}
	}
	other := &counts{}
	byType[domain.TemplateOther] = other

	for _, l := range logs {
		c := byType[domain.ParseTemplateType(string(l.TemplateType))]
		c.sent++
		if l.Clicked {
			c.clicks++
		}
		if l.Responded {
			c.responses++
		}
	}

	row := func(t domain.TemplateType, c *counts) TemplateRate {
		return TemplateRate{
			Template:        t,
			Label:           t.Label(),
			TotalSent:       c.sent,
			Clicks:          c.clicks,
			Responses:       c.responses,
			ClickRatePct:    WholeRatePct(c.clicks, c.sent),
			ResponseRatePct: WholeRatePct(c.responses, c.sent),
		}
	}

	out := make([]TemplateRate, 0, len(domain.KnownTemplates)+1)
	for _, t := range domain.KnownTemplates {
		out = append(out, row(t, byType[t]))
	}
	if other.sent > 0 {
		out = append(out, row(domain.TemplateOther, other))
	}
	return out
}
