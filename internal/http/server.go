package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"subtrack/internal/cache"
	"subtrack/internal/config"
	"subtrack/internal/core"
	"subtrack/internal/middleware/ratelimit"
	"subtrack/internal/middleware/security"
	"subtrack/internal/middleware/trace"
	"subtrack/internal/services"
	appweb "subtrack/web"
)

// partialTimeout bounds the data gathering behind a single page or fragment.
const partialTimeout = 7 * time.Second

const cacheCleanupInterval = 10 * time.Minute

// Server serves the subscription tracker UI and API. Read-heavy fragments
// (the six month report and the calendar grid) sit behind per-user LRU
// caches that mutations invalidate.
type Server struct {
	http.Server

	logger        *slog.Logger
	templates     *template.Template
	subscriptions *services.SubscriptionService
	investments   *services.InvestmentService
	statistics    *services.StatisticsService
	store         services.Store

	reportCache   *cache.LRUCache[core.Report]
	calendarCache *cache.LRUCache[[]core.DayCell]
	cacheManager  *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector

	startTime    time.Time
	today        func() core.Date
	shutdownOnce sync.Once
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server.
func NewServer(cfg *config.Config, logger *slog.Logger, store services.Store,
	subs *services.SubscriptionService, invs *services.InvestmentService, stats *services.StatisticsService) *Server {

	s := &Server{
		logger:        logger,
		subscriptions: subs,
		investments:   invs,
		statistics:    stats,
		store:         store,
		reportCache:   cache.NewLRUCache[core.Report](cfg.CacheSize, cfg.CacheTTL),
		calendarCache: cache.NewLRUCache[[]core.DayCell](cfg.CacheSize, cfg.CacheTTL),
		cacheManager:  cache.NewManager(),
		limiter:       ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:      security.NewDetector(),
		startTime:     time.Now(),
		today:         core.Today,
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.Register(s.calendarCache)
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	t, err := template.New("").Funcs(template.FuncMap{
		"won": formatWon,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("failed parsing templates", "error", err)
	} else {
		s.templates = t
	}

	app := http.NewServeMux()
	app.HandleFunc("/", s.handleIndex)
	app.HandleFunc("/calendar", s.handleCalendarPage)
	app.HandleFunc("/ui/subscription-cards", s.handleSubscriptionCards)
	app.HandleFunc("/ui/investment-cards", s.handleInvestmentCards)
	app.HandleFunc("/ui/calendar-grid", s.handleCalendarGrid)
	app.HandleFunc("/subscriptions", s.handleSubscriptions)
	app.HandleFunc("/subscriptions/detail", s.handleSubscriptionDetail)
	app.HandleFunc("/subscriptions/update", s.handleUpdateSubscription)
	app.HandleFunc("/subscriptions/delete", s.handleDeleteSubscription)
	app.HandleFunc("/subscriptions/toggle", s.handleToggleCheckIn)
	app.HandleFunc("/investments", s.handleInvestments)
	app.HandleFunc("/investments/detail", s.handleInvestmentDetail)
	app.HandleFunc("/investments/update", s.handleUpdateInvestment)
	app.HandleFunc("/investments/delete", s.handleDeleteInvestment)
	app.HandleFunc("/investments/usages", s.handleAddInvestmentUsage)
	app.HandleFunc("/investments/usages/delete", s.handleDeleteInvestmentUsage)
	app.HandleFunc("/api/stats/report", s.handleStatsReport)
	app.HandleFunc("/stats/export", s.handleStatsExport)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("failed to mount embedded static FS", "error", err)
	}
	mux.Handle("/", s.withIdentity(app))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           tracer.Middleware(headers.Middleware(s.guard(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// guard blocks requests matching known attack patterns and rate limits
// mutations per client IP. Reads stay unlimited so dashboards keep working
// behind shared NATs.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "suspicious request blocked",
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !s.limiter.Allow(s.detector.ExtractClientIP(r)) {
				ErrorResponse(http.StatusTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요").Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func reportCacheKey(userID string, today core.Date) string {
	return userID + "|report|" + today.String()
}

func calendarCacheKey(userID string, year int, month time.Month) string {
	return fmt.Sprintf("%s|calendar|%04d-%02d", userID, year, int(month))
}

// invalidateUsage drops the cached report and the calendar pages a usage
// mutation on the given date can appear on. Dates near a month boundary show
// up as padding cells of the neighbouring month, so those pages go too.
func (s *Server) invalidateUsage(userID string, date core.Date) {
	s.reportCache.Delete(reportCacheKey(userID, s.today()))
	ym := core.YearMonthOf(date)
	for _, m := range []core.YearMonth{ym.AddMonths(-1), ym, ym.AddMonths(1)} {
		s.calendarCache.Delete(calendarCacheKey(userID, m.Year, m.Month))
	}
}

// invalidateAll drops everything cached for the user. Used after structural
// changes (creating or deleting a subscription) that affect every view.
func (s *Server) invalidateAll(userID string) {
	today := s.today()
	s.reportCache.Delete(reportCacheKey(userID, today))
	ym := core.YearMonthOf(today)
	for off := -reportMonthSpan; off <= 1; off++ {
		m := ym.AddMonths(off)
		s.calendarCache.Delete(calendarCacheKey(userID, m.Year, m.Month))
	}
}

// reportMonthSpan mirrors the statistics window so invalidateAll reaches
// every calendar page the report can cover.
const reportMonthSpan = 6

// getReport returns the user's six month report, served from cache when
// fresh.
func (s *Server) getReport(ctx context.Context, userID string, today core.Date) (core.Report, error) {
	key := reportCacheKey(userID, today)
	if cached, ok := s.reportCache.Get(key); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, partialTimeout)
	defer cancel()

	report, err := s.statistics.Report(ctx, userID, today)
	if err != nil {
		return core.Report{}, err
	}
	s.reportCache.Set(key, report)
	return report, nil
}

// getCalendar returns the user's calendar grid for the month, served from
// cache when fresh.
func (s *Server) getCalendar(ctx context.Context, userID string, year int, month time.Month, today core.Date) ([]core.DayCell, error) {
	key := calendarCacheKey(userID, year, month)
	if cached, ok := s.calendarCache.Get(key); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, partialTimeout)
	defer cancel()

	cells, err := s.statistics.Calendar(ctx, userID, year, month, today)
	if err != nil {
		return nil, err
	}
	s.calendarCache.Set(key, cells)
	return cells, nil
}

// render executes a template as a full response.
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	body, err := s.renderToBytes(name, data)
	if err != nil {
		s.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// renderToBytes executes a template into a buffer so failures never leave a
// half-written response behind.
func (s *Server) renderToBytes(name string, data interface{}) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("templates unavailable")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
