package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	header := rec.Header().Get("HX-Trigger")
	if header == "" {
		t.Fatal("HX-Trigger header missing")
	}
	var triggers map[string]interface{}
	if err := json.Unmarshal([]byte(header), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	return triggers
}

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		BodyHTML("<p>완료</p>").
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if got := rec.Header().Get("X-Custom"); got != "value" {
		t.Errorf("X-Custom = %q, want %q", got, "value")
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Body.String() != "<p>완료</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without any triggers")
	}
}

func TestHTMXResponseBuilder_DomainTriggers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerSubscriptionChanged(42).
		TriggerUsageChanged(2025, 4).
		TriggerFormReset().
		TriggerStatsRefresh().
		Write(rec)

	triggers := decodeTriggers(t, rec)

	sub, ok := triggers["subscription:changed"].(map[string]interface{})
	if !ok {
		t.Fatal("subscription:changed trigger missing")
	}
	if sub["id"].(float64) != 42 {
		t.Errorf("subscription:changed id = %v, want 42", sub["id"])
	}

	usage, ok := triggers["usage:changed"].(map[string]interface{})
	if !ok {
		t.Fatal("usage:changed trigger missing")
	}
	if usage["year"].(float64) != 2025 || usage["month"].(float64) != 4 {
		t.Errorf("usage:changed = %v, want 2025/4", usage)
	}

	if _, ok := triggers["form:reset"]; !ok {
		t.Error("form:reset trigger missing")
	}
	if _, ok := triggers["stats:refresh"]; !ok {
		t.Error("stats:refresh trigger missing")
	}
}

func TestHTMXResponseBuilder_InvestmentTrigger(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerInvestmentChanged(7).Write(rec)

	triggers := decodeTriggers(t, rec)
	inv, ok := triggers["investment:changed"].(map[string]interface{})
	if !ok {
		t.Fatal("investment:changed trigger missing")
	}
	if inv["id"].(float64) != 7 {
		t.Errorf("investment:changed id = %v, want 7", inv["id"])
	}
}

func TestTriggerNotification(t *testing.T) {
	tests := []struct {
		name         string
		build        func() *HTMXResponseBuilder
		wantType     string
		wantMessage  string
		wantDuration float64
	}{
		{
			name: "success helper",
			build: func() *HTMXResponseBuilder {
				return NewHTMXResponse().TriggerSuccessNotification("저장되었습니다")
			},
			wantType:     "success",
			wantMessage:  "저장되었습니다",
			wantDuration: 3000,
		},
		{
			name:         "error helper",
			build:        func() *HTMXResponseBuilder { return NewHTMXResponse().TriggerErrorNotification("실패했습니다") },
			wantType:     "error",
			wantMessage:  "실패했습니다",
			wantDuration: 5000,
		},
		{
			name: "explicit warning",
			build: func() *HTMXResponseBuilder {
				return NewHTMXResponse().TriggerNotification(NotificationWarning, "주의", 1500)
			},
			wantType:     "warning",
			wantMessage:  "주의",
			wantDuration: 1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.build().Write(rec)

			triggers := decodeTriggers(t, rec)
			notif, ok := triggers["show-notification"].(map[string]interface{})
			if !ok {
				t.Fatal("show-notification trigger missing")
			}
			if notif["type"] != tt.wantType {
				t.Errorf("type = %v, want %q", notif["type"], tt.wantType)
			}
			if notif["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", notif["message"], tt.wantMessage)
			}
			if notif["duration"].(float64) != tt.wantDuration {
				t.Errorf("duration = %v, want %v", notif["duration"], tt.wantDuration)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		build      func() *HTMXResponseBuilder
		wantStatus int
	}{
		{"bad request", func() *HTMXResponseBuilder { return BadRequestError("잘못된 요청") }, http.StatusBadRequest},
		{"unprocessable", func() *HTMXResponseBuilder { return UnprocessableEntityError("검증 실패") }, http.StatusUnprocessableEntity},
		{"conflict", func() *HTMXResponseBuilder { return ConflictError("중복") }, http.StatusConflict},
		{"not found", func() *HTMXResponseBuilder { return NotFoundError("없음") }, http.StatusNotFound},
		{"internal", func() *HTMXResponseBuilder { return InternalServerError("서버 오류") }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.build().Write(rec)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := rec.Body.String()
			if !strings.HasPrefix(body, `<div class="error">`) || !strings.HasSuffix(body, "</div>") {
				t.Errorf("body not wrapped in error div: %q", body)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, `<script>alert("x")</script>`).Write(rec)

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("body contains unescaped script tag: %q", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("body missing escaped markup: %q", body)
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("DELETE, POST").Write(rec)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "DELETE, POST" {
		t.Errorf("Allow = %q, want %q", got, "DELETE, POST")
	}
}
