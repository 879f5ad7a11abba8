package assistant

import (
	"fmt"
	"strings"
)

// DefaultMeetingTitle is interpolated into the post-meeting response when the
// host supplies no title.
const DefaultMeetingTitle = "Board Strategy Session"

// Response is the canned answer shown in the response phase.
type Response struct {
	Content  string
	Insights []string
}

// Markdown renders the content followed by the insight badges.
func (r Response) Markdown() string {
	if len(r.Insights) == 0 {
		return r.Content
	}
	return r.Content + "\n\n**Insights:** " + strings.Join(r.Insights, " · ")
}

// Question returns the scripted question dictated for mode.
func Question(mode Mode) string {
	if mode == ModePreMeeting {
		return "What should I know before my meeting with the Fortune 100 retailer?"
	}
	return "What were the key decisions made in the board meeting today?"
}

// Lookup returns the fixed response for mode.
func Lookup(mode Mode, meetingTitle string) Response {
	if meetingTitle == "" {
		meetingTitle = DefaultMeetingTitle
	}
	if mode == ModePreMeeting {
		return Response{
			Content:  preMeetingContent,
			Insights: []string{"High-priority client", "Previous engagement: $2.3M", "Decision timeline: 30 days"},
		}
	}
	return Response{
		Content:  fmt.Sprintf(postMeetingContent, meetingTitle),
		Insights: []string{"3 strategic decisions", "78% action completion rate", "Above average meeting efficiency"},
	}
}

const postMeetingContent = `Here's what happened in your %s:

🎯 **Key Decisions Made:**
- APAC expansion approved with $15M Q2 budget allocation
- Culture transformation taskforce authorized
- AI innovation budget confirmed at $15M for FY25

⚡ **Action Items Assigned:**
- Sarah: Finalize APAC market entry strategy (Due: Dec 5)
- David: Launch culture transformation initiative (Due: Dec 15)
- Lisa: Complete AI adoption roadmap (Due: Nov 30)

📊 **Strategic Outcomes:**
- Revenue growth target of 22%% confirmed for FY25
- Investor sentiment positive around AI initiatives
- New 90-day performance dashboard rollout approved`

const preMeetingContent = `Here's what you should know before your Fortune 100 Retailer meeting:

🧩 **Key Talking Points:**
- Strengthen AI-powered supply chain visibility
- Offer exclusive pilot program access
- Highlight sustainability initiatives

⚡ **Potential Risks:**
- Client concerns about data privacy with AI integration
- Budget constraints due to recent economic headwinds
- Competition from established vendors

📊 **Key Data Points:**
- Client's current supply chain efficiency: 87%
- Potential ROI improvement: 23-35%
- Implementation timeline: 6-8 months

🌎 **Strategic Context:**
- Client expanding into LATAM markets next year
- Strong focus on ESG compliance requirements
- Recent leadership change in procurement division`
