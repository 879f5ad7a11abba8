package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIsTotalAndStable(t *testing.T) {
	for _, mode := range Modes() {
		a := Lookup(mode, "")
		b := Lookup(mode, "")
		assert.NotEmpty(t, a.Content, mode)
		assert.Len(t, a.Insights, 3, mode)
		assert.Equal(t, a, b, mode)
	}
}

func TestLookupInterpolatesMeetingTitle(t *testing.T) {
	r := Lookup(ModePostMeeting, "Ops Review")
	assert.Contains(t, r.Content, "Here's what happened in your Ops Review:")
	assert.Contains(t, r.Content, "22% confirmed")

	r = Lookup(ModePostMeeting, "")
	assert.Contains(t, r.Content, DefaultMeetingTitle)
}

func TestLookupPreMeetingIgnoresTitle(t *testing.T) {
	assert.Equal(t, Lookup(ModePreMeeting, "x"), Lookup(ModePreMeeting, "y"))
	assert.Contains(t, Lookup(ModePreMeeting, "").Content, "Fortune 100 Retailer")
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("pre-meeting")
	require.NoError(t, err)
	assert.Equal(t, ModePreMeeting, m)

	_, err = ParseMode("mid-meeting")
	assert.Error(t, err)
}

func TestModeTitle(t *testing.T) {
	assert.Equal(t, "Post-Meeting Insight Assistant", ModePostMeeting.Title())
	assert.Equal(t, "Pre-Meeting Memory Assistant", ModePreMeeting.Title())
}

func TestQuestion(t *testing.T) {
	assert.Equal(t, "What were the key decisions made in the board meeting today?", Question(ModePostMeeting))
	assert.Equal(t, "What should I know before my meeting with the Fortune 100 retailer?", Question(ModePreMeeting))
}

func TestResponseMarkdownAppendsInsights(t *testing.T) {
	md := Lookup(ModePreMeeting, "").Markdown()
	assert.Contains(t, md, "**Insights:** High-priority client · Previous engagement: $2.3M · Decision timeline: 30 days")

	assert.Equal(t, "plain", Response{Content: "plain"}.Markdown())
}
