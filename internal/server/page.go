package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/Sternrassler/dexview/internal/session"
	"github.com/Sternrassler/dexview/pkg/catalog"
	"github.com/Sternrassler/dexview/pkg/rangefetch"
	"github.com/Sternrassler/dexview/pkg/view"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageData struct {
	StartText  string
	EndText    string
	Error      string
	TypesError string
	Types      []catalog.TypeTag
	SortKeys   []view.SortKey
	View       session.Snapshot
	MaxRange   int
	NoMatches  string
	NoHint     string
}

func parsePage() (*template.Template, error) {
	funcs := template.FuncMap{
		"capitalize": catalog.Capitalize,
		"metres":     func(r catalog.Record) string { return strconv.FormatFloat(r.HeightMetres(), 'f', -1, 64) },
		"kilograms":  func(r catalog.Record) string { return strconv.FormatFloat(r.WeightKilograms(), 'f', -1, 64) },
	}
	return template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")
}

// handlePage renders the viewer. action=fetch with start/end loads a new
// range; any other parameters only change the query.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	params := r.URL.Query()

	data := pageData{
		StartText: strconv.Itoa(s.viewer.DefaultStart),
		EndText:   strconv.Itoa(s.viewer.DefaultEnd),
		SortKeys:  view.SortKeys,
		MaxRange:  rangefetch.MaxRangeSize,
		NoMatches: msgNoMatches,
		NoHint:    msgNoMatchesHint,
	}

	if snap := sess.View(); snap.Loaded {
		data.StartText, data.EndText = strconv.Itoa(snap.Start), strconv.Itoa(snap.End)
	}

	if params.Get("action") == "fetch" {
		data.StartText, data.EndText = params.Get("start"), params.Get("end")
		data.Error = s.loadRange(r, sess, data.StartText, data.EndText)
	} else if q, changed, err := applyQueryParams(sess.Query(), params); err != nil {
		_, data.Error = describeError(err)
	} else if changed {
		sess.SetQuery(q)
	}

	data.View = sess.View()
	data.Types = s.deps.Vocabulary.Tags()
	if s.deps.Vocabulary.Err() != nil {
		data.TypesError = msgTypesFailed
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// loadRange validates the form input and fetches the range into sess. It
// returns the message to show, or "" on success.
func (s *Server) loadRange(r *http.Request, sess *session.Session, startText, endText string) string {
	start, end, err := rangefetch.ParseRange(startText, endText)
	if err == nil {
		err = sess.Load(r.Context(), s.deps.Fetcher, start, end)
	}
	if err == nil {
		return ""
	}

	s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("Range fetch rejected")
	_, message := describeError(err)
	return message
}
