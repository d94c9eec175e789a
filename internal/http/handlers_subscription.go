package http

import (
	"net/http"

	"subtrack/internal/core"
	"subtrack/internal/labels"
	applog "subtrack/internal/log"
	"subtrack/internal/services"
)

// handleSubscriptions serves the management page on GET and creates a
// subscription on POST. The POST response is the refreshed card list so the
// HTMX form can swap it in place.
func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleSubscriptionList(w, r)
	case http.MethodPost:
		s.handleCreateSubscription(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleSubscriptionList(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	today := s.today()

	subs, err := s.subscriptions.ListAll(r.Context(), userID, today)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list all subscriptions failed", "error", err, "user_id", userID)
		errorResponseFor(err).Write(w)
		return
	}

	s.render(w, "subscriptions.html", struct {
		Today         core.Date
		Subscriptions []services.SubscriptionCard
		EmojiOptions  []labels.Code
	}{Today: today, Subscriptions: subs, EmojiOptions: labels.SubscriptionEmojis})
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	userID := userIDFrom(r)
	sub, err := ParseSubscriptionForm(r.Form, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	id, err := s.subscriptions.Create(r.Context(), sub)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "create subscription failed",
			"error", err,
			applog.FieldUserID, userID,
			applog.FieldSubscription, sub.Name)
		errorResponseFor(err).Write(w)
		return
	}
	s.logger.InfoContext(r.Context(), "subscription created",
		applog.FieldComponent, applog.ComponentSubscription,
		applog.FieldOperation, applog.OpCreate,
		applog.FieldUserID, userID,
		applog.FieldSubscription, sub.Name,
		applog.FieldAmountWon, sub.MonthlyAmount.Amount,
		"id", id)
	s.invalidateAll(userID)

	body, err := s.subscriptionCardsFragment(r, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerSubscriptionChanged(id).
		TriggerFormReset().
		TriggerSuccessNotification("구독이 등록되었습니다").
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

// handleSubscriptionDetail renders the detail partial for one subscription.
func (s *Server) handleSubscriptionDetail(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		BadRequestError("잘못된 구독 번호입니다").Write(w)
		return
	}

	userID := userIDFrom(r)
	detail, err := s.subscriptions.Detail(r.Context(), id, userID, s.today())
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	s.render(w, "subscription_detail.html", detail)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	id, ok := parseID(r.Form.Get("id"))
	if !ok {
		BadRequestError("잘못된 구독 번호입니다").Write(w)
		return
	}

	userID := userIDFrom(r)
	sub, err := ParseSubscriptionForm(r.Form, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	sub.ID = id

	if err := s.subscriptions.Update(r.Context(), sub); err != nil {
		s.logger.ErrorContext(r.Context(), "update subscription failed",
			"error", err,
			applog.FieldUserID, userID,
			applog.FieldSubscription, sub.Name)
		errorResponseFor(err).Write(w)
		return
	}
	s.invalidateAll(userID)

	body, err := s.subscriptionCardsFragment(r, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerSubscriptionChanged(id).
		TriggerSuccessNotification("구독이 수정되었습니다").
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("요청 형식이 올바르지 않습니다").Write(w)
		return
	}
	id, ok := parseID(parser.Get("id"))
	if !ok {
		id, ok = parseID(r.URL.Query().Get("id"))
	}
	if !ok {
		BadRequestError("잘못된 구독 번호입니다").Write(w)
		return
	}

	userID := userIDFrom(r)
	if err := s.subscriptions.Delete(r.Context(), id, userID); err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	s.invalidateAll(userID)

	body, err := s.subscriptionCardsFragment(r, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerSubscriptionChanged(id).
		TriggerSuccessNotification("구독이 삭제되었습니다").
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

// handleToggleCheckIn flips today's check-in for one subscription and
// responds with the refreshed card so HTMX can swap it.
func (s *Server) handleToggleCheckIn(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	id, ok := parseID(r.Form.Get("id"))
	if !ok {
		BadRequestError("잘못된 구독 번호입니다").Write(w)
		return
	}

	userID := userIDFrom(r)
	today := s.today()
	date := today
	if v := r.Form.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			BadRequestError("잘못된 날짜입니다").Write(w)
			return
		}
		date = d
	}

	card, err := s.subscriptions.ToggleCheckIn(r.Context(), id, userID, date)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "toggle check-in failed",
			"error", err,
			applog.FieldUserID, userID,
			applog.FieldUsageDate, date.String())
		errorResponseFor(err).Write(w)
		return
	}
	s.invalidateUsage(userID, date)

	body, err := s.renderToBytes("subscription_card.html", card)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render card failed", "error", err)
		errorResponseFor(err).Write(w)
		return
	}

	ym := core.YearMonthOf(date)
	NewHTMXResponse().
		TriggerUsageChanged(ym.Year, int(ym.Month)).
		TriggerStatsRefresh().
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

// subscriptionCardsFragment renders the card list used as the response body
// of every subscription mutation.
func (s *Server) subscriptionCardsFragment(r *http.Request, userID string) ([]byte, error) {
	today := s.today()
	subs, err := s.subscriptions.List(r.Context(), userID, today)
	if err != nil {
		return nil, err
	}
	return s.renderToBytes("subscription_cards.html", struct {
		Today         core.Date
		Subscriptions []services.SubscriptionCard
	}{Today: today, Subscriptions: subs})
}
