package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zaplinks/linkmonitor/internal/scrape"
)

const defaultLinkLimit = 1000

func (s *Server) listPages(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	pages, err := s.pages.ListPages(r.Context(), owner)
	if err != nil {
		s.logger.Error("list pages failed", zap.Int64("owner", owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list pages")
		return
	}
	if pages == nil {
		pages = []scrape.Page{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

type addPageRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

func (s *Server) addPage(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req addPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	req.Name = strings.TrimSpace(req.Name)
	if req.URL == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "url and name are required")
		return
	}

	page := scrape.Page{URL: req.URL, Name: req.Name}
	added, err := s.pages.Add(r.Context(), page, owner)
	if err != nil {
		s.logger.Error("add page failed", zap.Int64("owner", owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add page")
		return
	}
	if !added {
		writeError(w, http.StatusConflict, "page already registered")
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (s *Server) deletePage(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if pageURL == "" {
		writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}
	removed, err := s.pages.Delete(r.Context(), pageURL, owner)
	if err != nil {
		s.logger.Error("delete page failed", zap.Int64("owner", owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete page")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "page not registered")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) listLinks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	limit := defaultLinkLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	links, err := s.links.List(r.Context(), limit, &owner)
	if err != nil {
		s.logger.Error("list links failed", zap.Int64("owner", owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list links")
		return
	}
	if links == nil {
		links = []scrape.Link{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links, "count": len(links)})
}

func (s *Server) runScraper(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	result, err := s.runner.Run(r.Context(), owner)
	if err != nil {
		s.logger.Error("scraper run failed", zap.Int64("owner", owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scraper run failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) lastRun(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	rec, found, err := s.runs.Read(r.Context(), owner)
	if err != nil {
		s.logger.Error("last run read failed", zap.Int64("owner", owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read last run")
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]string{"last_run": "never run"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"last_run": fmt.Sprintf("%s - %s", rec.RanAt.UTC().Format(time.RFC3339), rec.Message),
	})
}
