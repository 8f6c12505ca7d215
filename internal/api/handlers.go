package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
	"github.com/FocuswithJustin/JuniperReader/internal/books"
	"github.com/FocuswithJustin/JuniperReader/internal/config"
	"github.com/FocuswithJustin/JuniperReader/internal/reader"
	"github.com/FocuswithJustin/JuniperReader/internal/render"
)

// HealthInfo is the health check response.
type HealthInfo struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime"`
	Versions int    `json:"versions"`
}

// VersionInfo describes a configured version.
type VersionInfo struct {
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
	Source       string `json:"source"`
	Provider     string `json:"provider,omitempty"`
	Default      bool   `json:"default,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	info := HealthInfo{
		Status:   "ok",
		Version:  s.cfg.Version,
		Uptime:   time.Since(s.started).Truncate(time.Second).String(),
		Versions: len(s.reader.Catalog().Versions()),
	}
	respondUncached(w, info)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	catalog := s.reader.Catalog()
	def := catalog.Default().Abbreviation
	var out []VersionInfo
	for _, v := range catalog.Versions() {
		out = append(out, versionInfo(v, v.Abbreviation == def))
	}
	respond(w, r, out, &APIMeta{Total: len(out)})
}

func versionInfo(v config.Version, def bool) VersionInfo {
	return VersionInfo{
		Abbreviation: v.Abbreviation,
		Name:         v.Name,
		Source:       string(v.Source),
		Provider:     v.Provider,
		Default:      def,
	}
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	lookup, err := s.reader.Books(r.Context(), r.PathValue("version"))
	if err != nil {
		respondReaderError(w, r, err)
		return
	}
	list := lookup.Books()
	respond(w, r, list, &APIMeta{Total: len(list)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := s.reader.ExecuteSearch(r.Context(), q.Get("q"), q.Get("version"))
	if err != nil {
		respondReaderError(w, r, err)
		return
	}
	if wantsHTML(r) {
		s.writeFragment(w, r, func(b *bytes.Buffer) error { return s.fragments.Search(b, view) })
		return
	}
	respond(w, r, view, &APIMeta{Total: view.Count()})
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	chapter, err := chapterParam(r)
	if err != nil {
		respondReaderError(w, r, err)
		return
	}
	view, err := s.reader.Chapter(r.Context(), r.PathValue("version"), r.PathValue("book"), chapter)
	if err != nil {
		respondReaderError(w, r, err)
		return
	}
	if wantsHTML(r) {
		s.writeFragment(w, r, func(b *bytes.Buffer) error { return s.fragments.Chapter(b, view) })
		return
	}
	respond(w, r, view, &APIMeta{Total: len(view.Verses)})
}

func (s *Server) handleInterlinear(w http.ResponseWriter, r *http.Request) {
	chapter, err := chapterParam(r)
	if err != nil {
		respondReaderError(w, r, err)
		return
	}
	view, err := s.reader.Interlinear(r.Context(),
		r.PathValue("versionA"), r.PathValue("versionB"), r.PathValue("book"), chapter)
	if err != nil {
		respondReaderError(w, r, err)
		return
	}
	if wantsHTML(r) {
		s.writeFragment(w, r, func(b *bytes.Buffer) error { return s.fragments.Interlinear(b, view) })
		return
	}
	respond(w, r, view, &APIMeta{Total: len(view.Pairs)})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	def := s.reader.Catalog().Default()
	lookup, err := s.reader.Books(r.Context(), def.Abbreviation)
	if err != nil || lookup.Len() == 0 {
		s.writePageError(w, r, err)
		return
	}
	first := lookup.Books()[0]
	http.Redirect(w, r, render.ReadURL(def.Abbreviation, books.StandardAbbreviation(first), 1), http.StatusFound)
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := s.reader.ExecuteSearch(r.Context(), q.Get("q"), q.Get("version"))
	if err != nil {
		s.writePageError(w, r, err)
		return
	}
	s.writePage(w, r, func(b *bytes.Buffer) error { return s.pages.Search(b, view) })
}

func (s *Server) handleReadPage(w http.ResponseWriter, r *http.Request) {
	chapter, err := chapterParam(r)
	if err != nil {
		s.writePageError(w, r, err)
		return
	}
	view, err := s.reader.Chapter(r.Context(), r.PathValue("version"), r.PathValue("book"), chapter)
	if err != nil {
		s.writePageError(w, r, err)
		return
	}
	s.writePage(w, r, func(b *bytes.Buffer) error { return s.pages.Chapter(b, view) })
}

func (s *Server) handleComparePage(w http.ResponseWriter, r *http.Request) {
	chapter, err := chapterParam(r)
	if err != nil {
		s.writePageError(w, r, err)
		return
	}
	view, err := s.reader.Interlinear(r.Context(),
		r.PathValue("versionA"), r.PathValue("versionB"), r.PathValue("book"), chapter)
	if err != nil {
		s.writePageError(w, r, err)
		return
	}
	s.writePage(w, r, func(b *bytes.Buffer) error { return s.pages.Interlinear(b, view) })
}

func (s *Server) writeFragment(w http.ResponseWriter, r *http.Request, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		respondReaderError(w, r, err)
		return
	}
	writeBody(w, r, s.fragments.ContentType(), buf.Bytes())
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.writePageError(w, r, err)
		return
	}
	writeBody(w, r, s.pages.ContentType(), buf.Bytes())
}

func (s *Server) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := reader.MsgNotFound
	if err != nil {
		status, _ = classify(err)
		msg = reader.UserMessage(err)
	}
	var buf bytes.Buffer
	_ = s.pages.Message(&buf, msg)
	w.Header().Set("Content-Type", s.pages.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func wantsHTML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "html"
}

func chapterParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("chapter"))
	if err != nil || n < 1 {
		return 0, cerrors.NewValidation("chapter", "Chapter must be a positive number")
	}
	return n, nil
}

func respondUncached(w http.ResponseWriter, data any) {
	var buf bytes.Buffer
	_ = jsonEncode(&buf, APIResponse{Success: true, Data: data})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
