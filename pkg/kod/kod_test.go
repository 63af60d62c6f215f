package kod

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/kodscript/internal/eval"
	"nickandperla.net/kodscript/internal/parser"
	"nickandperla.net/kodscript/internal/scanner"
	"nickandperla.net/kodscript/internal/store"
)

func newRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	r, err := New(append([]Option{WithMemoryStore()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func mustEval(t *testing.T, r *Runtime, src string) Value {
	t.Helper()
	v, err := r.Eval(src)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return v
}

func TestEval(t *testing.T) {
	r := newRuntime(t)

	tests := []struct {
		src  string
		want string
	}{
		{"4 + 8", "12"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 - 4 - 3", "3"},
		{"7 /d 2", "3"},
		{"7 /u 2", "4"},
		{"-7 /d 2", "-4"},
		{"2 == 2", "true"},
		{"x = y = 3", "3"},
		{"x + y", "6"},
	}
	for _, tt := range tests {
		if got := mustEval(t, r, tt.src).String(); got != tt.want {
			t.Errorf("Eval(%q) = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	r := newRuntime(t)

	_, err := r.Eval("1 + $")
	var lexErr *scanner.Error
	if !errors.As(err, &lexErr) {
		t.Errorf("expected lexical error, got %v", err)
	}

	_, err = r.Eval("1 +")
	var synErr *parser.Error
	if !errors.As(err, &synErr) {
		t.Errorf("expected syntax error, got %v", err)
	}

	_, err = r.Eval("nope + 1")
	var evalErr *eval.Error
	if !errors.As(err, &evalErr) {
		t.Errorf("expected evaluation error, got %v", err)
	}

	entries, err := r.History(0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed evaluations should not be recorded, got %v", entries)
	}
}

func TestSeededDice(t *testing.T) {
	roll := func() []string {
		r := newRuntime(t, WithSeed(42))
		var out []string
		for i := 0; i < 10; i++ {
			out = append(out, mustEval(t, r, "3d6 + 1d20").String())
		}
		return out
	}
	a, b := roll(), roll()
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Errorf("same seed gave different rolls: %v vs %v", a, b)
	}
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func TestWithRand(t *testing.T) {
	r := newRuntime(t, WithRand(fixedRand(5)))
	if got := mustEval(t, r, "2d6 + d20").String(); got != "18" {
		t.Errorf("expected 6+6+6 = 18, got %s", got)
	}
}

func TestDefine(t *testing.T) {
	r := newRuntime(t, WithRand(fixedRand(0)))

	if err := r.Define("attack", "1d20 + bonus"); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if _, err := r.Eval("attack()"); err == nil {
		t.Error("expected error before bonus is set")
	}
	mustEval(t, r, "bonus = 5")
	if got := mustEval(t, r, "attack() + attack()").String(); got != "12" {
		t.Errorf("expected 6 + 6 = 12, got %s", got)
	}
	if _, err := r.Eval("attack(1)"); err == nil || !strings.Contains(err.Error(), "no arguments") {
		t.Errorf("expected argument error, got %v", err)
	}

	if err := r.Define("function", "1"); err == nil {
		t.Error("expected reserved word to be rejected")
	}
	for _, name := range []string{"2x", "d6", "a.b", ""} {
		if err := r.Define(name, "1"); err == nil {
			t.Errorf("expected invalid name %q to be rejected", name)
		}
	}
	if err := r.Define("bad", "1 +"); err == nil {
		t.Error("expected syntax error in definition")
	}
}

func TestCallDepth(t *testing.T) {
	r := newRuntime(t, WithMaxCallDepth(8))
	if err := r.Define("loop", "loop()"); err != nil {
		t.Fatalf("Define: %v", err)
	}
	_, err := r.Eval("loop()")
	if err == nil || !strings.Contains(err.Error(), "call depth exceeds 8") {
		t.Fatalf("expected call depth error, got %v", err)
	}
	// The depth counter unwinds after the failure
	mustEval(t, r, "1 + 1")
	if r.depth != 0 {
		t.Errorf("expected depth 0 after unwinding, got %d", r.depth)
	}

	if _, err := New(WithMaxCallDepth(0)); err == nil {
		t.Error("expected error for non-positive call depth")
	}
}

func TestForgetAndVars(t *testing.T) {
	r := newRuntime(t)
	mustEval(t, r, "b = 2")
	mustEval(t, r, "a = 1")
	if err := r.Define("c", "a + b"); err != nil {
		t.Fatalf("Define: %v", err)
	}

	vars := r.Vars()
	var names []string
	for _, b := range vars {
		names = append(names, b.Name)
	}
	if strings.Join(names, ",") != "a,b,c" {
		t.Errorf("expected sorted bindings a,b,c, got %v", names)
	}

	if err := r.Forget("a"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, err := r.Eval("a"); err == nil {
		t.Error("expected a to be gone")
	}
	if err := r.Forget("a"); !errors.Is(err, ErrUndefined) {
		t.Errorf("expected ErrUndefined, got %v", err)
	}
}

func TestTry(t *testing.T) {
	r := newRuntime(t)
	mustEval(t, r, "hp = 10")

	v, err := r.Try("hp = hp - 3")
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	if v.String() != "7" {
		t.Errorf("expected 7, got %s", v)
	}
	if got := mustEval(t, r, "hp").String(); got != "10" {
		t.Errorf("Try should not change globals, hp = %s", got)
	}
	entries, _ := r.History(0)
	if len(entries) != 2 {
		t.Errorf("Try should not record history, got %d entries", len(entries))
	}
}

func TestTryNestedObject(t *testing.T) {
	r := newRuntime(t)

	traits := eval.NewNamespace("traits")
	traits.Set("str", Int(3))
	hero := eval.NewNamespace("hero")
	hero.Set("hp", Int(12))
	hero.Set("traits", traits)
	r.Globals().Set("hero", hero)

	v, err := r.Try("hero.traits.str = hero.hp = 1")
	if err != nil {
		t.Fatalf("Try: %v", err)
	}
	if v.String() != "1" {
		t.Errorf("expected 1, got %s", v)
	}
	if got, _ := r.Try("hero.hp + hero.traits.str"); got == nil || got.String() != "15" {
		t.Errorf("each Try starts from the real state, got %v", got)
	}
	if got := mustEval(t, r, "hero.hp").String(); got != "12" {
		t.Errorf("Try wrote through to hero.hp = %s", got)
	}
	if got := mustEval(t, r, "hero.traits.str").String(); got != "3" {
		t.Errorf("Try wrote through to hero.traits.str = %s", got)
	}
}

func TestHostObjects(t *testing.T) {
	r := newRuntime(t)

	hero := eval.NewNamespace("hero")
	hero.Set("str", Int(3))
	r.Globals().Set("hero", hero)
	r.Globals().Set("double", Func{Name: "double", Fn: func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, errors.New("double takes one argument")
		}
		return args[0].(Int) * 2, nil
	}})

	if got := mustEval(t, r, "double(hero.str + 1)").String(); got != "8" {
		t.Errorf("expected 8, got %s", got)
	}
	mustEval(t, r, "hero.str = 5")
	if got := mustEval(t, r, "hero.str").String(); got != "5" {
		t.Errorf("expected 5, got %s", got)
	}
}

func TestHistory(t *testing.T) {
	r := newRuntime(t)
	mustEval(t, r, "1 + 1")
	mustEval(t, r, "2 * 3")

	entries, err := r.History(1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Source != "2 * 3" || e.Result != "6" || e.Session != r.Session() {
		t.Errorf("unexpected entry %+v", e)
	}

	bare, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer bare.Close()
	mustEval(t, bare, "1")
	if entries, _ := bare.History(0); entries != nil {
		t.Errorf("expected no history without a store, got %v", entries)
	}
}

func TestSQLitePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kod.db")

	r, err := New(WithSQLiteStore(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustEval(t, r, "gold = 250")
	mustEval(t, r, "flag = 1")
	mustEval(t, r, "flag = 1 == 1")
	if err := r.Define("loot", "gold /d 2"); err != nil {
		t.Fatalf("Define: %v", err)
	}
	r.Close()

	r2, err := New(WithSQLiteStore(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()

	if got := mustEval(t, r2, "loot()").String(); got != "125" {
		t.Errorf("expected loot() = 125 after reopen, got %s", got)
	}
	if _, err := r2.Eval("flag"); err == nil {
		t.Error("expected bool value not to be persisted")
	}
	entries, err := r2.History(0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	// 3 from the first session, 1 from this one
	if len(entries) != 4 {
		t.Fatalf("expected 4 history entries, got %d", len(entries))
	}
	if entries[0].Session == entries[1].Session {
		t.Error("expected a new session id after reopen")
	}
}

func TestSQLiteOpenError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kod.db")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := New(WithSQLiteStore(path)); err == nil {
		t.Error("expected error opening a directory as a database")
	}
}

// closeCounter counts Close calls on the wrapped store.
type closeCounter struct {
	Store
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return c.Store.Close()
}

func TestDuplicateStore(t *testing.T) {
	first := &closeCounter{Store: store.NewMemory()}
	second := &closeCounter{Store: store.NewMemory()}

	_, err := New(WithStore(first), WithStore(second))
	if err == nil || !strings.Contains(err.Error(), "more than one store") {
		t.Fatalf("expected duplicate store error, got %v", err)
	}
	if first.closed != 1 || second.closed != 1 {
		t.Errorf("expected both stores closed once, got %d and %d", first.closed, second.closed)
	}

	path := filepath.Join(t.TempDir(), "kod.db")
	if _, err := New(WithSQLiteStore(path), WithMemoryStore()); err == nil {
		t.Error("expected error for SQLite plus memory store")
	}
}
