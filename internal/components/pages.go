package components

import (
	"io"
	"time"

	"estoque/internal/chatbot"
	"estoque/internal/core"
	"estoque/internal/format"
)

// ChartSlot is a chart placed on the dashboard together with the URL that
// re-renders it when statistics change.
type ChartSlot struct {
	RefreshURL string
	View       StatisticsChartView
}

// DashboardPageView is the full statistics page.
type DashboardPageView struct {
	Period  core.PeriodOption
	Periods []core.PeriodOption
	CardURL string
	ListURL string
	Card    MonthlyExpensesCardView
	List    TransactionsListView
	Charts  []ChartSlot
}

// DashboardPage renders the statistics page.
func (r *Renderer) DashboardPage(w io.Writer, v DashboardPageView) error {
	return r.Render(w, TemplateDashboardPage, v)
}

// ChatPageView is the assistant page.
type ChatPageView struct {
	ThreadID string
}

// ChatPage renders the assistant page.
func (r *Renderer) ChatPage(w io.Writer, v ChatPageView) error {
	return r.Render(w, TemplateChatPage, v)
}

// ChatMessageView is one exchange with the assistant.
type ChatMessageView struct {
	ID          int64
	UserMessage string
	AIMessage   string
	When        string
}

// ChatMessagesView is a batch of exchanges appended to the conversation.
type ChatMessagesView struct {
	Messages  []ChatMessageView
	Error     string
	ShowEmpty bool
}

// BuildChatMessages converts backend responses for display, oldest first.
func BuildChatMessages(entries []chatbot.ChatResponse, now time.Time) []ChatMessageView {
	out := make([]ChatMessageView, 0, len(entries))
	for _, e := range entries {
		m := ChatMessageView{ID: e.ID, UserMessage: e.UserMessage, AIMessage: e.AIMessage}
		if !e.CreateAt.IsZero() {
			m.When = format.RelativeTime(e.CreateAt.Time, now)
		}
		out = append(out, m)
	}
	return out
}

// ChatMessages renders a batch of exchanges.
func (r *Renderer) ChatMessages(w io.Writer, v ChatMessagesView) error {
	return r.Render(w, TemplateChatMessages, v)
}
