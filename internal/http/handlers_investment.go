package http

import (
	"net/http"

	"subtrack/internal/labels"
	applog "subtrack/internal/log"
	"subtrack/internal/services"
)

// handleInvestments serves the investment page on GET and creates an
// investment on POST.
func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleInvestmentList(w, r)
	case http.MethodPost:
		s.handleCreateInvestment(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleInvestmentList(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	invs, err := s.investments.List(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list investments failed", "error", err, "user_id", userID)
		errorResponseFor(err).Write(w)
		return
	}

	s.render(w, "investments.html", struct {
		Investments     []services.InvestmentCard
		EmojiOptions    []labels.Code
		CategoryOptions []labels.Code
	}{Investments: invs, EmojiOptions: labels.InvestmentEmojis, CategoryOptions: labels.InvestmentCategories})
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	userID := userIDFrom(r)
	inv, err := ParseInvestmentForm(r.Form, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	id, err := s.investments.Create(r.Context(), inv)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "create investment failed",
			"error", err,
			applog.FieldUserID, userID,
			applog.FieldInvestment, inv.Name)
		errorResponseFor(err).Write(w)
		return
	}
	s.logger.InfoContext(r.Context(), "investment created",
		applog.FieldComponent, applog.ComponentInvestment,
		applog.FieldOperation, applog.OpCreate,
		applog.FieldUserID, userID,
		applog.FieldInvestment, inv.Name,
		applog.FieldAmountWon, inv.PurchasePrice.Amount,
		"id", id)
	s.invalidateAll(userID)

	body, err := s.investmentCardsFragment(r, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerInvestmentChanged(id).
		TriggerFormReset().
		TriggerSuccessNotification("투자 항목이 등록되었습니다").
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

// handleInvestmentDetail renders the detail partial, usage history included.
func (s *Server) handleInvestmentDetail(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		BadRequestError("잘못된 투자 번호입니다").Write(w)
		return
	}

	userID := userIDFrom(r)
	detail, err := s.investments.Detail(r.Context(), id, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	s.render(w, "investment_detail.html", detail)
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
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
		BadRequestError("잘못된 투자 번호입니다").Write(w)
		return
	}

	userID := userIDFrom(r)
	inv, err := ParseInvestmentForm(r.Form, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	inv.ID = id

	if err := s.investments.Update(r.Context(), inv); err != nil {
		s.logger.ErrorContext(r.Context(), "update investment failed",
			"error", err,
			applog.FieldUserID, userID,
			applog.FieldInvestment, inv.Name)
		errorResponseFor(err).Write(w)
		return
	}
	s.invalidateAll(userID)

	body, err := s.investmentCardsFragment(r, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerInvestmentChanged(id).
		TriggerSuccessNotification("투자 항목이 수정되었습니다").
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
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
		BadRequestError("잘못된 투자 번호입니다").Write(w)
		return
	}

	userID := userIDFrom(r)
	if err := s.investments.Delete(r.Context(), id, userID); err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	s.invalidateAll(userID)

	body, err := s.investmentCardsFragment(r, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerInvestmentChanged(id).
		TriggerSuccessNotification("투자 항목이 삭제되었습니다").
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

// handleAddInvestmentUsage records one use of an investment and responds
// with the refreshed card.
func (s *Server) handleAddInvestmentUsage(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	userID := userIDFrom(r)
	usage, err := ParseInvestmentUsageForm(r.Form, s.today())
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	if usage.InvestmentID == 0 {
		BadRequestError("잘못된 투자 번호입니다").Write(w)
		return
	}

	card, err := s.investments.AddUsage(r.Context(), userID, usage)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "add investment usage failed",
			"error", err,
			applog.FieldUserID, userID,
			applog.FieldUsageDate, usage.UsedAt.String())
		errorResponseFor(err).Write(w)
		return
	}
	s.invalidateUsage(userID, usage.UsedAt)

	body, err := s.renderToBytes("investment_card.html", card)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render card failed", "error", err)
		errorResponseFor(err).Write(w)
		return
	}

	NewHTMXResponse().
		TriggerInvestmentChanged(card.ID).
		TriggerStatsRefresh().
		TriggerFormReset().
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

func (s *Server) handleDeleteInvestmentUsage(w http.ResponseWriter, r *http.Request) {
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
		BadRequestError("잘못된 사용 기록 번호입니다").Write(w)
		return
	}

	userID := userIDFrom(r)
	if err := s.investments.DeleteUsage(r.Context(), id, userID); err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	s.invalidateUsage(userID, s.today())

	body, err := s.investmentCardsFragment(r, userID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerStatsRefresh().
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

func (s *Server) investmentCardsFragment(r *http.Request, userID string) ([]byte, error) {
	invs, err := s.investments.List(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return s.renderToBytes("investment_cards.html", struct {
		Investments []services.InvestmentCard
	}{Investments: invs})
}
