package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rcliao/mindvault/internal/journal"
	"github.com/rcliao/mindvault/internal/model"
	"github.com/rcliao/mindvault/internal/persona"
	"github.com/rcliao/mindvault/internal/report"
	"github.com/rcliao/mindvault/internal/store"
)

// EmptyMessageWarning is returned when the user sends a blank message.
const EmptyMessageWarning = "Please write something before sending!"

const maxSearchK = 50

type MessageRequest struct {
	Message string `json:"message"`
	Persona string `json:"persona"`
}

type pageData struct {
	Persona  persona.Persona
	Personas []persona.Persona
	Theme    Theme
	Themes   map[persona.Persona]Theme
}

func (s *Server) index(c echo.Context) error {
	p, err := s.cfg.Sessions.Get(c.Request().Context(), sessionID(c))
	if err != nil {
		s.cfg.Log.Warn().Err(err).Msg("load persona for page")
		p = persona.Default
	}

	var buf bytes.Buffer
	err = s.page.Execute(&buf, pageData{
		Persona:  p,
		Personas: persona.All(),
		Theme:    themeFor(p),
		Themes:   themes,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sendMessage(c echo.Context) error {
	req := new(MessageRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, EmptyMessageWarning)
	}

	reply, err := s.cfg.Chat.Respond(c.Request().Context(), sessionID(c), req.Message, req.Persona)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reply)
}

// journalLines maps a missing journal to a 404 with the user-facing message.
func (s *Server) journalLines() ([]string, error) {
	lines, err := s.cfg.Journal.Lines()
	if errors.Is(err, journal.ErrNoJournal) {
		return nil, echo.NewHTTPError(http.StatusNotFound, report.NoJournalMessage)
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return lines, nil
}

func (s *Server) trendCounts() ([]report.Count, error) {
	lines, err := s.journalLines()
	if err != nil {
		return nil, err
	}
	counts, err := report.Trends(lines)
	if errors.Is(err, report.ErrNoData) {
		return nil, echo.NewHTTPError(http.StatusNotFound, report.NoTrendsMessage)
	}
	return counts, err
}

func (s *Server) trends(c echo.Context) error {
	counts, err := s.trendCounts()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"counts": counts})
}

func (s *Server) trendsChart(c echo.Context) error {
	counts, err := s.trendCounts()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := report.RenderTrendsPNG(&buf, counts); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) wordCloud(c echo.Context) error {
	lines, err := s.journalLines()
	if err != nil {
		return err
	}
	freqs, err := report.WordFrequencies(lines)
	if errors.Is(err, report.ErrNoData) {
		return echo.NewHTTPError(http.StatusNotFound, report.NoWordsMessage)
	}
	cloud, err := report.BuildCloud(freqs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cloud)
}

func (s *Server) search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	k := store.DefaultK
	if raw := c.QueryParam("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchK {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be between 1 and 50")
		}
		k = n
	}
	var maxDist float64
	if raw := c.QueryParam("max_distance"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "max_distance must be a non-negative number")
		}
		maxDist = d
	}

	matches, err := s.cfg.Store.Query(c.Request().Context(), store.QueryParams{Text: q, K: k, MaxDistance: maxDist})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if matches == nil {
		matches = []model.Match{}
	}
	return c.JSON(http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) entries(c echo.Context) error {
	day := c.QueryParam("day")
	if day == "" {
		day = time.Now().Format(model.DayLayout)
	}
	if _, err := time.Parse(model.DayLayout, day); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "day must be YYYY-MM-DD")
	}
	entries, err := s.cfg.Store.ByDay(c.Request().Context(), day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return c.JSON(http.StatusOK, map[string]any{"day": day, "entries": entries})
}
