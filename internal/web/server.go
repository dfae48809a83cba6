package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"contact-picker/internal/docs"
	"contact-picker/internal/format"
	"contact-picker/internal/logger"
	"contact-picker/internal/model"
	"contact-picker/internal/picker"

	"github.com/starfederation/datastar-go/datastar"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

const (
	chipsSelector       = "#picker-chips"
	suggestionsSelector = "#picker-suggestions"
)

type ServerConfig struct {
	Addr        string
	Contacts    []model.Contact
	Picker      picker.Options
	Placeholder string
	Title       string
	// SessionTTL is how long an idle widget is kept. Zero keeps sessions forever.
	SessionTTL time.Duration
}

type Server struct {
	cfg      ServerConfig
	tmpl     *template.Template
	sessions *sessionStore
	log      *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Placeholder = strings.TrimSpace(cfg.Placeholder)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.SessionTTL < 0 {
		return nil, errors.New("web: session ttl is negative")
	}
	if cfg.Title == "" {
		cfg.Title = "Pick contacts"
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		sessions: newSessionStore(cfg.SessionTTL),
		log:      logger.Component("web"),
		stopCh:   make(chan struct{}),
	}
	if cfg.SessionTTL > 0 {
		every := cfg.SessionTTL / 4
		if every < time.Second {
			every = time.Second
		}
		go srv.sessions.janitor(srv.stopCh, every, func(n int) {
			srv.log.Info("evicted idle sessions", "count", n)
		})
	}
	return srv, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Close stops the session janitor.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /help", s.handleHelp)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /picker/{sid}/state", s.handleState)
	mux.HandleFunc("POST /picker/{sid}/query", s.handleQuery)
	mux.HandleFunc("POST /picker/{sid}/focus", s.handleFocus)
	mux.HandleFunc("POST /picker/{sid}/backspace", s.handleBackspace)
	mux.HandleFunc("POST /picker/{sid}/contacts/{id}/click", s.handleContactClick)
	mux.HandleFunc("POST /picker/{sid}/chips/{id}/remove", s.handleChipRemove)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type helpSectionVM struct {
	Topic string
	Body  template.HTML
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	var sections []helpSectionVM
	for _, topic := range docs.Topics() {
		md, ok := docs.Get(topic)
		if !ok {
			continue
		}
		sections = append(sections, helpSectionVM{Topic: topic, Body: renderHelpHTML(topic, md)})
	}
	s.writeHTMLTemplate(w, "help.html", map[string]any{
		"Title":    s.cfg.Title,
		"Sections": sections,
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.create(picker.New(s.cfg.Contacts, s.cfg.Picker))
	sess.mu.Lock()
	vm := s.pickerVM(sess.id, sess.state)
	sess.mu.Unlock()

	s.log.Info("mounted picker", "session", sess.id, "contacts", len(s.cfg.Contacts))
	s.writeHTMLTemplate(w, "index.html", vm)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.get(r.PathValue("sid"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess.mu.Lock()
	snap := sess.state.Snapshot()
	sess.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = format.WriteJSON(w, snap, false)
}

// clientSignals is what the page reports with every event. Query is nil when
// the request carried no query signal.
type clientSignals struct {
	Query *string `json:"query"`
}

// eventRequest resolves the session and reads the page's signals. Signals must
// be read before the SSE writer takes over the response.
func (s *Server) eventRequest(w http.ResponseWriter, r *http.Request) (*session, clientSignals, bool) {
	var sig clientSignals
	sess, ok := s.sessions.get(r.PathValue("sid"))
	if !ok {
		http.NotFound(w, r)
		return nil, sig, false
	}
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, "invalid signals: "+err.Error(), http.StatusBadRequest)
		return nil, sig, false
	}
	return sess, sig, true
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	sess, sig, ok := s.eventRequest(w, r)
	if !ok {
		return
	}
	if sig.Query == nil {
		http.Error(w, "invalid signals: missing query", http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, sess, sig, picker.QueryChanged{Text: *sig.Query})
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	sess, sig, ok := s.eventRequest(w, r)
	if !ok {
		return
	}
	s.dispatch(w, r, sess, sig, picker.InputFocused{})
}

func (s *Server) handleBackspace(w http.ResponseWriter, r *http.Request) {
	sess, sig, ok := s.eventRequest(w, r)
	if !ok {
		return
	}
	s.dispatch(w, r, sess, sig, picker.BackspacePressed{})
}

func (s *Server) handleContactClick(w http.ResponseWriter, r *http.Request) {
	id, err := contactIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, sig, ok := s.eventRequest(w, r)
	if !ok {
		return
	}
	s.dispatch(w, r, sess, sig, picker.ContactClicked{ID: id})
}

func (s *Server) handleChipRemove(w http.ResponseWriter, r *http.Request) {
	id, err := contactIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, sig, ok := s.eventRequest(w, r)
	if !ok {
		return
	}
	s.dispatch(w, r, sess, sig, picker.ChipRemoveClicked{ID: id})
}

func contactIDParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid contact id: %q", raw)
	}
	return id, nil
}

// dispatch runs ev against the session and streams the re-rendered widget back.
//
// Query posts are debounced in the page while the other events go out at once,
// so the session can lag behind the input. When the page reports a different
// query, it is applied first. The query signal is only patched back when the
// session ends up with text other than what the page already shows.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, sess *session, sig clientSignals, ev picker.Event) {
	sess.mu.Lock()
	cur := sess.state
	shown := cur.Query()
	synced := false
	if sig.Query != nil {
		shown = *sig.Query
		if _, isQuery := ev.(picker.QueryChanged); !isQuery && shown != cur.Query() {
			cur, _ = picker.Apply(cur, picker.QueryChanged{Text: shown})
			synced = true
		}
	}
	next, out := picker.Apply(cur, ev)
	sess.state = next
	var checkErr error
	if next.Options().Strict {
		checkErr = picker.Check(sess.universe, next)
	}
	vm := s.pickerVM(sess.id, next)
	sess.mu.Unlock()

	log := s.log.With("session", sess.id, "kind", ev.Kind())
	log.Debug("event", "changed", out.Changed, "intercepted", out.Intercepted, "armed", vm.Armed, "query_synced", synced)
	switch {
	case out.Err != nil:
		log.Error("contract violation", "err", out.Err)
	case out.Ignored != "":
		log.Warn("event ignored", "reason", out.Ignored)
	}
	if checkErr != nil {
		log.Error("invariant broken", "err", checkErr)
	}

	chips, err := s.renderTemplate("chips.html", vm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	suggestions, err := s.renderTemplate("suggestions.html", vm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	signals := vm.signals()
	if vm.Query == shown {
		delete(signals, "query")
	}

	sse := datastar.NewSSE(w, r)
	_ = sse.PatchElements(chips, datastar.WithSelector(chipsSelector), datastar.WithMode(datastar.ElementPatchModeOuter))
	_ = sse.PatchElements(suggestions, datastar.WithSelector(suggestionsSelector), datastar.WithMode(datastar.ElementPatchModeOuter))
	_ = sse.MarshalAndPatchSignals(signals)
	if out.Err != nil {
		_ = sse.ExecuteScript(fmt.Sprintf(`console.warn(%q)`, out.Err.Error()))
	}
}

type contactVM struct {
	ID        int
	Name      string
	Email     string
	AvatarURL string
	Initials  string
	// Armed marks the chip the next backspace removes.
	Armed bool
}

func newContactVM(c model.Contact) contactVM {
	return contactVM{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		AvatarURL: strings.TrimSpace(c.AvatarURL),
		Initials:  c.Initials(),
	}
}

type pickerVM struct {
	SessionID   string
	Title       string
	Placeholder string
	Query       string
	Armed       bool
	ListVisible bool
	Chips       []contactVM
	Suggestions []contactVM
}

func (s *Server) pickerVM(sid string, st picker.State) pickerVM {
	vm := pickerVM{
		SessionID:   sid,
		Title:       s.cfg.Title,
		Placeholder: s.cfg.Placeholder,
		Query:       st.Query(),
		Armed:       st.Armed(),
		ListVisible: st.ListVisible(),
	}
	selected := st.Selected()
	for i, c := range selected {
		cvm := newContactVM(c)
		cvm.Armed = vm.Armed && i == len(selected)-1
		vm.Chips = append(vm.Chips, cvm)
	}
	for _, c := range st.Suggestions() {
		vm.Suggestions = append(vm.Suggestions, newContactVM(c))
	}
	return vm
}

func (vm pickerVM) signals() map[string]any {
	return map[string]any{
		"query": vm.Query,
		"chips": len(vm.Chips),
		"armed": vm.Armed,
	}
}

// SignalsJSON seeds data-signals on mount.
func (vm pickerVM) SignalsJSON() string {
	b, err := json.Marshal(vm.signals())
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}
