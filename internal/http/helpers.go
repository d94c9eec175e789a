package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"subtrack/internal/core"
)

// formatWon renders an amount for display, e.g. "12,000원".
func formatWon(m core.Money) string {
	return m.Format() + "원"
}

// parseID reads a positive int64 id from the given form or query value.
func parseID(v string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// writeJSON encodes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponseFor maps a domain error to an HTMX error fragment with the
// appropriate status code. Unknown errors become a generic 500 so internal
// details never leak to the client.
func errorResponseFor(err error) *HTMXResponseBuilder {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("항목을 찾을 수 없습니다")
	case errors.Is(err, core.ErrDuplicateCheckIn):
		return ConflictError("이미 체크인한 날짜입니다")
	case errors.Is(err, core.ErrDuplicateName):
		return UnprocessableEntityError("같은 이름의 구독이 이미 있습니다")
	case errors.Is(err, core.ErrEmptyName):
		return UnprocessableEntityError("이름을 입력해 주세요")
	case errors.Is(err, core.ErrInvalidAmount):
		return UnprocessableEntityError("금액이 올바르지 않습니다")
	case errors.Is(err, core.ErrMissingStartDate):
		return UnprocessableEntityError("날짜를 입력해 주세요")
	case errors.Is(err, core.ErrEndBeforeStart):
		return UnprocessableEntityError("종료일이 시작일보다 빠릅니다")
	case errors.Is(err, core.ErrInvalidTargetGoal):
		return UnprocessableEntityError("월 목표 횟수가 올바르지 않습니다")
	default:
		return InternalServerError("요청을 처리하지 못했습니다")
	}
}
