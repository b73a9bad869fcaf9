package journey

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
)

// ErrUnknownModel is returned by Attribute for an unsupported model name
var ErrUnknownModel = errors.New("unknown attribution model")

// Model names an attribution model
type Model string

const (
	ModelLastClick  Model = "last_click"
	ModelFirstClick Model = "first_click"
	ModelLinear     Model = "linear"
)

// Models lists the supported attribution models
func Models() []Model {
	return []Model{ModelLastClick, ModelFirstClick, ModelLinear}
}

// ChannelCredit is the value credited to one channel
type ChannelCredit struct {
	Channel string  `json:"channel"`
	Value   float64 `json:"value"`
	Share   float64 `json:"share_pct"`
}

// Summary is an attribution model applied across a set of journeys
type Summary struct {
	Model            Model           `json:"model"`
	Channels         []ChannelCredit `json:"channels"`
	TotalValue       float64         `json:"total_value"`
	AttributedValue  float64         `json:"attributed_value"`
	JourneyCount     int             `json:"journey_count"`
	AvgTouchpoints   float64         `json:"avg_touchpoints"`
	AvgDurationHours float64         `json:"avg_duration_hours"`
}

// LastClick credits the touchpoint right before the terminal purchase with the full
// order value. Journeys with fewer than two touchpoints have nothing to credit.
func LastClick(journeys []*domain.CustomerJourney) map[string]float64 {
	credits := make(map[string]float64)
	for _, j := range journeys {
		if len(j.Touchpoints) < 2 {
			continue
		}
		credits[j.Touchpoints[len(j.Touchpoints)-2].Platform] += j.OrderValue
	}
	return credits
}

// FirstClick credits the first touchpoint with the full order value
func FirstClick(journeys []*domain.CustomerJourney) map[string]float64 {
	credits := make(map[string]float64)
	for _, j := range journeys {
		if len(j.Touchpoints) == 0 {
			continue
		}
		credits[j.Touchpoints[0].Platform] += j.OrderValue
	}
	return credits
}

// Linear splits the order value evenly across the non-purchase touchpoints
func Linear(journeys []*domain.CustomerJourney) map[string]float64 {
	credits := make(map[string]float64)
	for _, j := range journeys {
		var eligible []domain.Touchpoint
		for _, tp := range j.Touchpoints {
			if !tp.IsPurchase() {
				eligible = append(eligible, tp)
			}
		}
		if len(eligible) == 0 {
			continue
		}

		share := j.OrderValue / float64(len(eligible))
		for _, tp := range eligible {
			credits[tp.Platform] += share
		}
	}
	return credits
}

// Attribute applies the named model and summarizes the journey set
func Attribute(model Model, journeys []*domain.CustomerJourney) (*Summary, error) {
	var credits map[string]float64
	switch model {
	case ModelLastClick:
		credits = LastClick(journeys)
	case ModelFirstClick:
		credits = FirstClick(journeys)
	case ModelLinear:
		credits = Linear(journeys)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	summary := &Summary{
		Model:        model,
		Channels:     make([]ChannelCredit, 0, len(credits)),
		JourneyCount: len(journeys),
	}

	var touchpoints, hours int
	for _, j := range journeys {
		summary.TotalValue += j.OrderValue
		touchpoints += j.TouchpointCount
		hours += j.JourneyDurationHours
	}
	if len(journeys) > 0 {
		summary.AvgTouchpoints = round2(float64(touchpoints) / float64(len(journeys)))
		summary.AvgDurationHours = round2(float64(hours) / float64(len(journeys)))
	}

	channels := make([]string, 0, len(credits))
	for channel := range credits {
		channels = append(channels, channel)
	}
	sort.Strings(channels)

	// fixed summation order keeps the total bit-identical across runs
	for _, channel := range channels {
		summary.AttributedValue += credits[channel]
	}

	for _, channel := range channels {
		v := credits[channel]
		var share float64
		if summary.AttributedValue > 0 {
			share = v * 100 / summary.AttributedValue
		}
		summary.Channels = append(summary.Channels, ChannelCredit{
			Channel: channel,
			Value:   round2(v),
			Share:   round2(share),
		})
	}
	sort.Slice(summary.Channels, func(i, k int) bool {
		if summary.Channels[i].Value != summary.Channels[k].Value {
			return summary.Channels[i].Value > summary.Channels[k].Value
		}
		return summary.Channels[i].Channel < summary.Channels[k].Channel
	})

	summary.TotalValue = round2(summary.TotalValue)
	summary.AttributedValue = round2(summary.AttributedValue)

	return summary, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
