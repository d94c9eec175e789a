package http

import (
	"net/http"

	"subtrack/internal/core"
	"subtrack/internal/labels"
	"subtrack/internal/services"
)

// dashboardData feeds the index page: today's subscription cards, the
// investment cards and the summary strip from the six month report.
type dashboardData struct {
	Today         core.Date
	Subscriptions []services.SubscriptionCard
	Investments   []services.InvestmentCard
	Summary       summaryView
	EmojiOptions  []labels.Code
}

type summaryView struct {
	SubscriptionCount int
	TotalMonthlyFee   string
	TotalUsageCount   int
	AvgCostPerUse     string
	InvestmentCount   int
}

// handleIndex renders the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	userID := userIDFrom(r)
	today := s.today()

	subs, err := s.subscriptions.List(r.Context(), userID, today)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list subscriptions failed", "error", err, "user_id", userID)
		errorResponseFor(err).Write(w)
		return
	}
	invs, err := s.investments.List(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list investments failed", "error", err, "user_id", userID)
		errorResponseFor(err).Write(w)
		return
	}
	report, err := s.getReport(r.Context(), userID, today)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "report failed", "error", err, "user_id", userID)
		errorResponseFor(err).Write(w)
		return
	}

	s.render(w, "index.html", dashboardData{
		Today:         today,
		Subscriptions: subs,
		Investments:   invs,
		Summary:       summaryViewOf(report.Summary),
		EmojiOptions:  labels.SubscriptionEmojis,
	})
}

func summaryViewOf(sum core.Summary) summaryView {
	return summaryView{
		SubscriptionCount: sum.SubscriptionCount,
		TotalMonthlyFee:   formatWon(sum.TotalMonthlyFee),
		TotalUsageCount:   sum.TotalUsageCount,
		AvgCostPerUse:     formatWon(sum.AvgCostPerUse),
		InvestmentCount:   sum.InvestmentCount,
	}
}

// handleSubscriptionCards returns the subscription card list partial.
func (s *Server) handleSubscriptionCards(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	userID := userIDFrom(r)
	today := s.today()

	subs, err := s.subscriptions.List(r.Context(), userID, today)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list subscriptions failed", "error", err, "user_id", userID)
		errorResponseFor(err).Write(w)
		return
	}

	s.render(w, "subscription_cards.html", struct {
		Today         core.Date
		Subscriptions []services.SubscriptionCard
	}{Today: today, Subscriptions: subs})
}

// handleInvestmentCards returns the investment card list partial.
func (s *Server) handleInvestmentCards(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	userID := userIDFrom(r)

	invs, err := s.investments.List(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list investments failed", "error", err, "user_id", userID)
		errorResponseFor(err).Write(w)
		return
	}

	s.render(w, "investment_cards.html", struct {
		Investments []services.InvestmentCard
	}{Investments: invs})
}
