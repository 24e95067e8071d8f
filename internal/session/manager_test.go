package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift-checklist/internal/checklist"
)

func TestLoadCreatesAndReuses(t *testing.T) {
	m := NewManager(Options{})

	rec := httptest.NewRecorder()
	s := m.Load(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, s.ID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	again := m.Load(rec2, req)
	assert.Same(t, s, again)
	assert.Empty(t, rec2.Result().Cookies())
	assert.Equal(t, 1, m.Len())
}

func TestLoadUnknownCookie(t *testing.T) {
	m := NewManager(Options{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "stale"})

	s := m.Load(httptest.NewRecorder(), req)
	assert.NotEqual(t, "stale", s.ID)
}

func TestSessionStartsLocked(t *testing.T) {
	m := NewManager(Options{})
	s := m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, s.Authenticated())
	s.Unlock()
	assert.True(t, s.Authenticated())
}

func TestSessionsAreIsolated(t *testing.T) {
	m := NewManager(Options{})
	a := m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	b := m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	k := checklist.Key{Section: "作業台", Item: "消しゴム", Machine: "1号機"}
	a.Toggle(k)
	a.SetComment("作業台", "note")

	assert.Equal(t, checklist.StateOK, a.State(k))
	assert.Equal(t, checklist.StateEmpty, b.State(k))
	assert.Empty(t, b.Comment("作業台"))
}

func TestSnapshotIsCopy(t *testing.T) {
	cat := checklist.DefaultCatalog()
	s := newSession("x", time.Now())
	k := checklist.Key{Section: "作業台", Item: "消しゴム", Machine: "1号機"}
	s.Toggle(k)
	s.SetOperatorID("A12")

	snap := s.Snapshot(cat)
	s.Toggle(k)

	assert.Equal(t, checklist.StateOK, snap.State(k))
	assert.Equal(t, "A12", snap.OperatorID)
	assert.Equal(t, checklist.StateNG, s.State(k))
}

func TestResetGridKeepsOperator(t *testing.T) {
	s := newSession("x", time.Now())
	k := checklist.Key{Section: "成形機", Item: "真鍮棒", Machine: "2号機"}
	s.Toggle(k)
	s.SetComment("成形機", "油漏れ")
	s.SetOperatorID("A12")

	s.ResetGrid()

	assert.Equal(t, checklist.StateEmpty, s.State(k))
	assert.Empty(t, s.Comment("成形機"))
	assert.Equal(t, "A12", s.OperatorID())
}

func TestFlashes(t *testing.T) {
	s := newSession("x", time.Now())
	s.AddFlash(FlashError, "パスワードが違います")

	got := s.PopFlashes()
	require.Len(t, got, 1)
	assert.Equal(t, FlashError, got[0].Level)
	assert.Empty(t, s.PopFlashes())
}

func TestSweep(t *testing.T) {
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.Local)
	m := NewManager(Options{IdleTTL: time.Hour, Now: func() time.Time { return now }})
	m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 0, m.Sweep())
	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Len())
}

func TestSweepDisabled(t *testing.T) {
	m := NewManager(Options{})
	m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}
