package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ClearTracker/internal/auth"
	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func TestGameService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	games := NewGameService(repository.NewGameRepository(db), newTestLogger())
	chars := NewGameCharacterService(repository.NewGameCharacterRepository(db), repository.NewGameRepository(db), newTestLogger())

	if _, err := games.Create(ctx, GamePayload{Title: "", SeriesNumber: 6, ReleaseYear: 2002}); !model.IsValidationError(err) {
		t.Errorf("empty title = %v", err)
	}
	if _, err := games.Create(ctx, GamePayload{Title: "x", SeriesNumber: 6, ReleaseYear: 2002, GameType: "rpg"}); !model.IsValidationError(err) {
		t.Errorf("bad type = %v", err)
	}

	g, err := games.Create(ctx, GamePayload{Title: "東方紅魔郷", SeriesNumber: 6, ReleaseYear: 2002})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.GameType != model.GameTypeMainSeries {
		t.Errorf("default type = %s", g.GameType)
	}

	updated, err := games.Update(ctx, g.ID, GamePayload{Title: "東方紅魔郷 ～ the Embodiment of Scarlet Devil.", SeriesNumber: 6, ReleaseYear: 2002})
	if err != nil || updated == nil {
		t.Fatalf("Update = %v, %v", updated, err)
	}
	if missing, err := games.Update(ctx, 999, GamePayload{Title: "x", SeriesNumber: 1, ReleaseYear: 1}); missing != nil || err != nil {
		t.Errorf("Update missing = %v, %v", missing, err)
	}

	res, err := games.Rules(ctx, g.ID)
	if err != nil || res == nil || !res.IsKnown() {
		t.Fatalf("Rules = %+v, %v", res, err)
	}
	if res, _ := games.Rules(ctx, 999); res != nil {
		t.Error("rules for missing game should be absent")
	}

	if _, err := chars.Create(ctx, g.ID, GameCharacterPayload{CharacterName: "霊夢A"}); err != nil {
		t.Fatalf("Create character: %v", err)
	}
	if _, err := chars.Create(ctx, g.ID, GameCharacterPayload{CharacterName: " 霊夢A "}); !errors.Is(err, model.ErrConflict) {
		t.Errorf("duplicate character = %v", err)
	}
	if ch, err := chars.Create(ctx, 999, GameCharacterPayload{CharacterName: "x"}); ch != nil || err != nil {
		t.Errorf("character on missing game = %v, %v", ch, err)
	}
	other, err := chars.Create(ctx, g.ID, GameCharacterPayload{CharacterName: "魔理沙B", SortOrder: 2})
	if err != nil {
		t.Fatalf("Create character: %v", err)
	}
	if _, err := chars.Update(ctx, other.ID, GameCharacterPayload{CharacterName: "霊夢A"}); !errors.Is(err, model.ErrConflict) {
		t.Errorf("rename onto existing = %v", err)
	}
	if n, _ := chars.CountByGame(ctx, g.ID); n != 2 {
		t.Errorf("count = %d", n)
	}

	if ok, err := games.Delete(ctx, g.ID); !ok || err != nil {
		t.Errorf("Delete = %v, %v", ok, err)
	}
}

func TestGameMemoService(t *testing.T) {
	ctx := context.Background()
	svc := NewGameMemoService(repository.NewGameMemoRepository(newTestDB(t)), newTestLogger())

	first, err := svc.Upsert(ctx, 1, 3, GameMemoPayload{Memo: strPtr("Lunatic ノーボム目標")})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, err := svc.Upsert(ctx, 1, 3, GameMemoPayload{Memo: strPtr("達成")})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first.ID != second.ID || *second.Memo != "達成" {
		t.Errorf("upsert = %+v", second)
	}
	if got, _ := svc.Update(ctx, first.ID, 2, GameMemoPayload{}); got != nil {
		t.Error("other user updated memo")
	}
	if ok, _ := svc.Delete(ctx, first.ID, 2); ok {
		t.Error("other user deleted memo")
	}
	got, err := svc.Update(ctx, first.ID, 1, GameMemoPayload{Memo: nil})
	if err != nil || got == nil || got.Memo != nil {
		t.Errorf("clear memo = %+v, %v", got, err)
	}
	if _, err := svc.Upsert(ctx, 1, 0, GameMemoPayload{}); !model.IsValidationError(err) {
		t.Errorf("zero game = %v", err)
	}
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(repository.NewUserRepository(newTestDB(t)), auth.NewBcryptHasher(bcrypt.MinCost), newTestLogger())

	if _, err := svc.Register(ctx, RegisterRequest{Username: "marisa", Email: "m@kirisame.jp", Password: "123"}); !model.IsValidationError(err) {
		t.Errorf("short password = %v", err)
	}
	u, err := svc.Register(ctx, RegisterRequest{Username: "marisa", Email: "M@Kirisame.jp", Password: "masterspark"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "m@kirisame.jp" || u.HashedPassword == "masterspark" {
		t.Errorf("user = %+v", u)
	}
	if _, err := svc.Register(ctx, RegisterRequest{Username: "marisa", Email: "x@y.jp", Password: "masterspark"}); !errors.Is(err, model.ErrConflict) {
		t.Errorf("duplicate = %v", err)
	}

	if got, err := svc.Authenticate(ctx, LoginRequest{Username: "marisa", Password: "masterspark"}); err != nil || got == nil {
		t.Errorf("Authenticate = %v, %v", got, err)
	}
	if got, _ := svc.Authenticate(ctx, LoginRequest{Username: "marisa", Password: "wrong"}); got != nil {
		t.Error("wrong password accepted")
	}
	if got, _ := svc.Authenticate(ctx, LoginRequest{Username: "nobody", Password: "x"}); got != nil {
		t.Error("unknown user accepted")
	}
}

func TestOptionalUnmarshal(t *testing.T) {
	var p ClearRecordPatch
	if err := json.Unmarshal([]byte(`{"mode": null, "is_no_bomb_clear": true}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Mode.Set || p.Mode.Valid {
		t.Errorf("mode = %+v, want explicit null", p.Mode)
	}
	if !p.NoBomb.Set || !p.NoBomb.Valid || !p.NoBomb.Value {
		t.Errorf("no_bomb = %+v", p.NoBomb)
	}
	if p.ClearedAt.Set || p.Cleared.Set {
		t.Error("absent keys must stay unset")
	}
}
