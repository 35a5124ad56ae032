package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ClearTracker/internal/auth"
	"ClearTracker/internal/config"
	"ClearTracker/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&model.User{}, &model.Game{}, &model.GameCharacter{},
		&model.ClearRecord{}, &model.ClearStatus{}, &model.GameMemo{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Rules:  config.RulesConfig{Strict: true},
	}
	tokens, err := auth.NewTokenIssuer("test-secret", "cleartracker", time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	return &testServer{t: t, db: db, router: NewRouter(db, log, cfg, tokens)}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup 注册并登录，返回访问令牌
func (s *testServer) signup(username string, admin bool) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": username + "@gensokyo.jp", "password": "password123",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("register %s = %d %s", username, w.Code, w.Body.String())
	}
	if admin {
		if err := s.db.Model(&model.User{}).Where("username = ?", username).Update("is_admin", true).Error; err != nil {
			s.t.Fatalf("promote: %v", err)
		}
	}
	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": "password123"})
	if w.Code != http.StatusOK {
		s.t.Fatalf("login %s = %d %s", username, w.Code, w.Body.String())
	}
	var tok TokenResponse
	decode(s.t, w, &tok)
	return tok.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("reimu", false)

	w := s.do(http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me = %d", w.Code)
	}
	var me UserResponse
	decode(t, w, &me)
	if me.Username != "reimu" || me.IsAdmin {
		t.Errorf("me = %+v", me)
	}

	if w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "reimu", "password": "nope"}); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d", w.Code)
	}
	if w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "reimu", "email": "other@gensokyo.jp", "password": "password123",
	}); w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/clear-records", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/clear-records", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("request id = %q, want passthrough", got)
	}
}

func TestGameCatalogAdminOnly(t *testing.T) {
	s := newTestServer(t)
	user := s.signup("marisa", false)
	admin := s.signup("yukari", true)

	game := map[string]interface{}{"title": "東方紅魔郷", "series_number": 6, "release_year": 2002}
	if w := s.do(http.MethodPost, "/api/games", user, game); w.Code != http.StatusForbidden {
		t.Errorf("non-admin create = %d", w.Code)
	}
	w := s.do(http.MethodPost, "/api/games", admin, game)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create = %d %s", w.Code, w.Body.String())
	}
	var g GameResponse
	decode(t, w, &g)

	if w := s.do(http.MethodPost, "/api/games", admin, map[string]interface{}{"title": "", "series_number": 6, "release_year": 2002}); w.Code != http.StatusBadRequest {
		t.Errorf("empty title = %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/games/1/rules", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rules = %d", w.Code)
	}
	var res struct {
		Lookup string `json:"lookup"`
		Rules  struct {
			Modes []string `json:"modes"`
		} `json:"rules"`
	}
	decode(t, w, &res)
	if res.Lookup != "known" || len(res.Rules.Modes) == 0 {
		t.Errorf("rules = %+v", res)
	}
	if w := s.do(http.MethodGet, "/api/games/999/rules", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("rules for missing game = %d", w.Code)
	}

	if w := s.do(http.MethodPost, "/api/games/1/characters", admin, map[string]interface{}{"character_name": "霊夢A"}); w.Code != http.StatusCreated {
		t.Fatalf("create character = %d %s", w.Code, w.Body.String())
	}
	if w := s.do(http.MethodPost, "/api/games/1/characters", admin, map[string]interface{}{"character_name": "霊夢A"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate character = %d", w.Code)
	}
	w = s.do(http.MethodGet, "/api/games/1/characters", "", nil)
	var chars []GameCharacterResponse
	decode(t, w, &chars)
	if len(chars) != 1 {
		t.Errorf("characters = %+v", chars)
	}

	w = s.do(http.MethodGet, "/api/games?game_type=main_series", "", nil)
	var list []GameResponse
	decode(t, w, &list)
	if len(list) != 1 || list[0].ID != g.ID {
		t.Errorf("list = %+v", list)
	}
	if w := s.do(http.MethodGet, "/api/games?game_type=rpg", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad game_type = %d", w.Code)
	}
}

func TestClearRecordUpsertAndOwnership(t *testing.T) {
	s := newTestServer(t)
	reimu := s.signup("reimu", false)
	marisa := s.signup("marisa", false)

	payload := map[string]interface{}{
		"game_id": 6, "character_name": "霊夢A", "difficulty": "Lunatic",
		"is_cleared": true, "is_no_bomb_clear": true,
	}
	w := s.do(http.MethodPost, "/api/clear-records/upsert", reimu, payload)
	if w.Code != http.StatusOK {
		t.Fatalf("upsert = %d %s", w.Code, w.Body.String())
	}
	var first ClearRecordResponse
	decode(t, w, &first)
	if first.Mode != model.ModeNormal || first.ClearedAt == nil || len(*first.ClearedAt) != len("2006-01-02") {
		t.Errorf("first = %+v", first)
	}
	if len(first.AchievedConditions) != 2 {
		t.Errorf("achieved = %v", first.AchievedConditions)
	}

	w = s.do(http.MethodPost, "/api/clear-records/upsert", reimu, payload)
	var second ClearRecordResponse
	decode(t, w, &second)
	if second.ID != first.ID || second.CreatedAt.Unix() != first.CreatedAt.Unix() {
		t.Errorf("upsert not idempotent: %+v vs %+v", second, first)
	}

	if w := s.do(http.MethodPost, "/api/clear-records", reimu, payload); w.Code != http.StatusConflict {
		t.Errorf("create duplicate = %d", w.Code)
	}

	path := "/api/clear-records/" + jsonNumber(first.ID)
	if w := s.do(http.MethodGet, path, marisa, nil); w.Code != http.StatusNotFound {
		t.Errorf("other user get = %d", w.Code)
	}
	if w := s.do(http.MethodDelete, path, marisa, nil); w.Code != http.StatusNotFound {
		t.Errorf("other user delete = %d", w.Code)
	}

	w = s.do(http.MethodPut, path, reimu, map[string]interface{}{"is_no_miss_clear": true, "cleared_at": "2024-01-02"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d %s", w.Code, w.Body.String())
	}
	var patched ClearRecordResponse
	decode(t, w, &patched)
	if !patched.NoMiss || !patched.NoBomb || patched.ClearedAt == nil || *patched.ClearedAt != "2024-01-02" {
		t.Errorf("patched = %+v", patched)
	}
	if w := s.do(http.MethodPut, path, reimu, map[string]interface{}{"cleared_at": "02/01/2024"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad date = %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/clear-records?game_id=6", reimu, nil)
	var mine []ClearRecordResponse
	decode(t, w, &mine)
	if len(mine) != 1 {
		t.Errorf("list = %d", len(mine))
	}
	w = s.do(http.MethodGet, "/api/clear-records", marisa, nil)
	var theirs []ClearRecordResponse
	decode(t, w, &theirs)
	if len(theirs) != 0 {
		t.Errorf("other user sees %d records", len(theirs))
	}

	if w := s.do(http.MethodDelete, path, reimu, nil); w.Code != http.StatusNoContent {
		t.Errorf("owner delete = %d", w.Code)
	}
}

func TestClearRecordBatchStopsAtFirstError(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("sanae", false)

	batch := []map[string]interface{}{
		{"game_id": 10, "character_name": "早苗A", "difficulty": "Normal", "is_cleared": true},
		{"game_id": 10, "character_name": "  ", "difficulty": "Normal"},
		{"game_id": 10, "character_name": "早苗B", "difficulty": "Normal"},
	}
	w := s.do(http.MethodPost, "/api/clear-records/batch", token, batch)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("batch = %d %s", w.Code, w.Body.String())
	}
	var body struct {
		Index int    `json:"index"`
		Field string `json:"field"`
	}
	decode(t, w, &body)
	if body.Index != 1 {
		t.Errorf("index = %d, want 1", body.Index)
	}

	w = s.do(http.MethodGet, "/api/clear-records", token, nil)
	var recs []ClearRecordResponse
	decode(t, w, &recs)
	if len(recs) != 1 || recs[0].CharacterName != "早苗A" {
		t.Errorf("persisted = %+v", recs)
	}
}

func TestClearStatusMarkFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("youmu", false)

	req := map[string]interface{}{"game_id": 7, "difficulty": "Lunatic", "no_bomb": true}
	var st ClearStatusResponse
	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/api/clear-status/mark-cleared", token, req)
		if w.Code != http.StatusOK {
			t.Fatalf("mark-cleared = %d %s", w.Code, w.Body.String())
		}
		decode(t, w, &st)
	}
	if st.ClearCount != 2 || !st.IsCleared || st.ClearedAt == nil || st.ClearType == "" {
		t.Errorf("status = %+v", st)
	}

	w := s.do(http.MethodPost, "/api/clear-status/mark-not-cleared", token, map[string]interface{}{"game_id": 7, "difficulty": "Lunatic"})
	if w.Code != http.StatusOK {
		t.Fatalf("mark-not-cleared = %d", w.Code)
	}
	decode(t, w, &st)
	if st.IsCleared || st.ClearedAt != nil || st.ClearCount != 2 {
		t.Errorf("after reset = %+v", st)
	}
	if w := s.do(http.MethodPost, "/api/clear-status/mark-not-cleared", token, map[string]interface{}{"game_id": 7, "difficulty": "Easy"}); w.Code != http.StatusNotFound {
		t.Errorf("reset absent row = %d", w.Code)
	}

	w = s.do(http.MethodPut, "/api/clear-status/"+jsonNumber(st.ID), token, map[string]interface{}{"memo": "星蓮船 Lunatic", "score": nil})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &st)
	if st.Memo == nil || *st.Memo != "星蓮船 Lunatic" || st.Score != nil {
		t.Errorf("patched = %+v", st)
	}
}

func TestGameMemoRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("sakuya", false)
	other := s.signup("remilia", false)

	if w := s.do(http.MethodGet, "/api/game-memos/games/6", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("absent memo = %d", w.Code)
	}
	w := s.do(http.MethodPut, "/api/game-memos/games/6", token, map[string]interface{}{"memo": "Extra 未クリア"})
	if w.Code != http.StatusOK {
		t.Fatalf("put memo = %d %s", w.Code, w.Body.String())
	}
	var m GameMemoResponse
	decode(t, w, &m)

	if w := s.do(http.MethodDelete, "/api/game-memos/"+jsonNumber(m.ID), other, nil); w.Code != http.StatusNotFound {
		t.Errorf("other user delete = %d", w.Code)
	}
	w = s.do(http.MethodGet, "/api/game-memos", token, nil)
	var list []GameMemoResponse
	decode(t, w, &list)
	if len(list) != 1 || list[0].Memo == nil {
		t.Errorf("list = %+v", list)
	}
	if w := s.do(http.MethodDelete, "/api/game-memos/"+jsonNumber(m.ID), token, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
}

func jsonNumber(id uint64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
