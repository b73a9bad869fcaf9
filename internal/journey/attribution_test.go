package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
)

func journeyOf(value float64, platforms ...string) *domain.CustomerJourney {
	j := &domain.CustomerJourney{OrderValue: value}
	for i, p := range platforms {
		eventType := "click"
		if i == len(platforms)-1 {
			eventType = domain.EventTypePurchase
		}
		j.Touchpoints = append(j.Touchpoints, domain.Touchpoint{
			Platform:  p,
			EventType: eventType,
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
		})
	}
	j.TouchpointCount = len(j.Touchpoints)
	return j
}

func TestAttribution_ThreeStepJourney(t *testing.T) {
	purchase, events := threeStepEvents()
	j, ok := BuildJourney("tenant-1", purchase, events)
	require.True(t, ok)
	journeys := []*domain.CustomerJourney{j}

	assert.Equal(t, map[string]float64{"meta": 1000}, LastClick(journeys))
	assert.Equal(t, map[string]float64{"google": 1000}, FirstClick(journeys))
	assert.Equal(t, map[string]float64{"google": 500, "meta": 500}, Linear(journeys))
}

func TestAttribution_FourTouchpoints(t *testing.T) {
	journeys := []*domain.CustomerJourney{journeyOf(300, "A", "B", "C", "shop")}

	assert.Equal(t, map[string]float64{"C": 300}, LastClick(journeys))
	assert.Equal(t, map[string]float64{"A": 300}, FirstClick(journeys))
	assert.Equal(t, map[string]float64{"A": 100, "B": 100, "C": 100}, Linear(journeys))
}

func TestAttribution_SingleTouchpoint(t *testing.T) {
	journeys := []*domain.CustomerJourney{journeyOf(80, "direct")}

	assert.Empty(t, LastClick(journeys))
	assert.Equal(t, map[string]float64{"direct": 80}, FirstClick(journeys))
	assert.Empty(t, Linear(journeys))
}

func TestAttribution_AggregatesAcrossJourneys(t *testing.T) {
	journeys := []*domain.CustomerJourney{
		journeyOf(100, "google", "meta", "direct"),
		journeyOf(50, "meta", "google", "direct"),
	}

	assert.Equal(t, map[string]float64{"meta": 100, "google": 50}, LastClick(journeys))
	assert.Equal(t, map[string]float64{"google": 100, "meta": 50}, FirstClick(journeys))
	assert.Equal(t, map[string]float64{"google": 75, "meta": 75}, Linear(journeys))
}

func TestAttribute_Summary(t *testing.T) {
	a := journeyOf(100, "google", "meta", "direct")
	a.JourneyDurationHours = 10
	b := journeyOf(50, "direct")
	b.JourneyDurationHours = 0

	summary, err := Attribute(ModelLastClick, []*domain.CustomerJourney{a, b})

	require.NoError(t, err)
	assert.Equal(t, ModelLastClick, summary.Model)
	assert.Equal(t, 2, summary.JourneyCount)
	assert.Equal(t, 150.0, summary.TotalValue)
	assert.Equal(t, 100.0, summary.AttributedValue)
	assert.Equal(t, 2.0, summary.AvgTouchpoints)
	assert.Equal(t, 5.0, summary.AvgDurationHours)
	require.Len(t, summary.Channels, 1)
	assert.Equal(t, ChannelCredit{Channel: "meta", Value: 100, Share: 100}, summary.Channels[0])
}

func TestAttribute_ChannelOrdering(t *testing.T) {
	journeys := []*domain.CustomerJourney{
		journeyOf(90, "tiktok", "direct"),
		journeyOf(90, "google", "direct"),
		journeyOf(200, "meta", "direct"),
	}

	summary, err := Attribute(ModelFirstClick, journeys)

	require.NoError(t, err)
	require.Len(t, summary.Channels, 3)
	assert.Equal(t, "meta", summary.Channels[0].Channel)
	assert.Equal(t, "google", summary.Channels[1].Channel)
	assert.Equal(t, "tiktok", summary.Channels[2].Channel)
}

func TestAttribute_AttributedValueIsStable(t *testing.T) {
	var journeys []*domain.CustomerJourney
	for i, p := range []string{"google", "meta", "tiktok", "bing", "linkedin", "snap", "pinterest"} {
		journeys = append(journeys, journeyOf(0.1*float64(i+1)+1.0/3, p, "direct"))
	}

	first, err := Attribute(ModelFirstClick, journeys)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := Attribute(ModelFirstClick, journeys)
		require.NoError(t, err)
		assert.Equal(t, first.AttributedValue, again.AttributedValue)
		assert.Equal(t, first.Channels, again.Channels)
	}
}

func TestAttribute_UnknownModel(t *testing.T) {
	summary, err := Attribute(Model("time_decay"), nil)

	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.Nil(t, summary)
}

func TestAttribute_NoJourneys(t *testing.T) {
	for _, m := range Models() {
		summary, err := Attribute(m, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, summary.JourneyCount)
		assert.Empty(t, summary.Channels)
		assert.Equal(t, 0.0, summary.AvgTouchpoints)
	}
}
