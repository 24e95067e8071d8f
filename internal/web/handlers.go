package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"shift-checklist/internal/checklist"
	"shift-checklist/internal/history"
	"shift-checklist/internal/session"
)

const (
	msgLoginOK        = "認証成功！"
	msgLoginFailed    = "パスワードが違います"
	msgOperatorNeeded = "担当者IDを入力してください"
	msgSubmitted      = "登録しました！（同日のデータを上書き）"
	msgCleared        = "履歴を削除しました"
	msgGridReset      = "入力をリセットしました"
)

type pageData struct {
	Title     string
	Flashes   []session.Flash
	CSRFField template.HTML
}

type indexView struct {
	pageData
	Grid            checklist.Grid
	OperatorID      string
	RequireOperator bool
	History         history.Table
}

type historyView struct {
	pageData
	History history.Table
}

func (s *Server) page(r *http.Request, title string, sess *session.Session) pageData {
	p := pageData{Title: title, CSRFField: csrf.TemplateField(r)}
	if sess != nil {
		p.Flashes = sess.PopFlashes()
	}
	return p
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login", s.page(r, "チェックリスト アクセス認証", sess))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if !s.opts.Gate.Authenticate(r.PostForm.Get("password")) {
		s.log.Info("login rejected", zap.String("session", sess.ID))
		p := s.page(r, "チェックリスト アクセス認証", sess)
		p.Flashes = append(p.Flashes, session.Flash{Level: session.FlashError, Message: msgLoginFailed})
		s.render(w, http.StatusOK, "login", p)
		return
	}
	sess.Unlock()
	sess.AddFlash(session.FlashSuccess, msgLoginOK)
	s.log.Info("session unlocked", zap.String("session", sess.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	tab, _ := strconv.Atoi(r.URL.Query().Get("tab"))

	tbl, err := s.opts.History.List(r.Context())
	if err != nil {
		s.internalError(w, "list history", err)
		return
	}
	s.render(w, http.StatusOK, "index", indexView{
		pageData:        s.page(r, "始業前チェックリスト", sess),
		Grid:            sess.Grid(s.opts.Catalog, s.opts.Layout, tab),
		OperatorID:      sess.OperatorID(),
		RequireOperator: s.opts.History.RequireOperator(),
		History:         tbl,
	})
}

// handleGridAction applies one form action. Text fields ride along with
// every post and are saved first, so tapping a cell never loses a typed
// comment.
func (s *Server) handleGridAction(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := r.PostForm
	cat := s.opts.Catalog

	if _, ok := form["operator_id"]; ok {
		sess.SetOperatorID(strings.TrimSpace(form.Get("operator_id")))
	}
	for i, sec := range cat.Sections {
		if v, ok := form[checklist.CommentField(i)]; ok && len(v) > 0 {
			sess.SetComment(sec.Name, v[0])
		}
	}

	tab, _ := strconv.Atoi(form.Get("tab"))

	switch {
	case form.Get("toggle") != "":
		ref, err := checklist.ParseRef(form.Get("toggle"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		key, err := cat.Key(ref)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sess.Toggle(key)

	case form.Get("bulk") != "":
		m, err := strconv.Atoi(form.Get("bulk"))
		if err != nil || m < 0 || m >= len(cat.Machines) {
			http.Error(w, "bad machine", http.StatusBadRequest)
			return
		}
		sess.SetMachine(cat, cat.Machines[m], checklist.StateOK)
		tab = m

	case form.Get("tab_select") != "":
		m, err := strconv.Atoi(form.Get("tab_select"))
		if err != nil || m < 0 || m >= len(cat.Machines) {
			http.Error(w, "bad machine", http.StatusBadRequest)
			return
		}
		tab = m

	case form.Get("reset") != "":
		sess.ResetGrid()
		sess.AddFlash(session.FlashWarning, msgGridReset)

	case form.Get("submit") != "":
		res, err := s.opts.History.Submit(r.Context(), sess.Snapshot(cat))
		switch {
		case errors.Is(err, history.ErrOperatorRequired):
			sess.AddFlash(session.FlashError, msgOperatorNeeded)
		case err != nil:
			s.internalError(w, "submit checklist", err)
			return
		default:
			sess.AddFlash(session.FlashSuccess, msgSubmitted)
			s.log.Debug("submit", zap.String("session", sess.ID), zap.Int("replaced", res.Replaced))
		}
	}

	target := "/"
	if s.opts.Layout == checklist.LayoutMachineTabs && tab > 0 {
		target = "/?tab=" + strconv.Itoa(tab)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	tbl, err := s.opts.History.List(r.Context())
	if err != nil {
		s.internalError(w, "list history", err)
		return
	}
	s.render(w, http.StatusOK, "history", historyView{
		pageData: s.page(r, "履歴一覧", sess),
		History:  tbl,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.opts.History.ExportCSV(r.Context())
	if err != nil {
		s.internalError(w, "export csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="checklist_history.csv"`)
	_, _ = w.Write(data)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := s.opts.History.ExportXLSX(r.Context())
	if err != nil {
		s.internalError(w, "export xlsx", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="checklist_history.xlsx"`)
	_, _ = w.Write(data)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := s.opts.History.Clear(r.Context()); err != nil {
		s.internalError(w, "clear history", err)
		return
	}
	sess.AddFlash(session.FlashWarning, msgCleared)
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

// internalError logs the real error and returns a generic message.
func (s *Server) internalError(w http.ResponseWriter, what string, err error) {
	s.log.Error(what, zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
