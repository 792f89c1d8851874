package promotion

import (
	"strings"
	"testing"
	"time"
)

func TestAnalyzeComplexity(t *testing.T) {
	deep := map[string]any{
		"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": map[string]any{"e": 1}}}},
	}
	wide := map[string]any{}
	for i := 0; i < 250; i++ {
		wide[strings.Repeat("k", i%5+1)+string(rune('a'+i%26))+string(rune('a'+i/26))] = i
	}
	cases := []struct {
		name  string
		state map[string]any
		want  string
	}{
		{"flat small", map[string]any{"a": 1, "b": 2}, ComplexitySimple},
		{"three levels", map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}, ComplexityModerate},
		{"deep nesting", deep, ComplexityComplex},
		{"many nodes", wide, ComplexityComplex},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := AnalyzeComplexity(c.state); got != c.want {
				t.Fatalf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestClassifySize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, SizeSmall},
		{1023, SizeSmall},
		{1024, SizeMedium},
		{256*1024 - 1, SizeMedium},
		{256 * 1024, SizeLarge},
		{10 << 20, SizeLarge},
	}
	for _, c := range cases {
		if got := ClassifySize(c.size); got != c.want {
			t.Fatalf("ClassifySize(%d) = %s, want %s", c.size, got, c.want)
		}
	}
}

func TestClassifyImportance(t *testing.T) {
	cases := []struct {
		name  string
		state map[string]any
		want  string
	}{
		{"missing", map[string]any{}, ImportanceNormal},
		{"unknown tag", map[string]any{"importance": "whatever"}, ImportanceNormal},
		{"non-string tag", map[string]any{"importance": 3}, ImportanceNormal},
		{"low", map[string]any{"importance": "low"}, ImportanceLow},
		{"high", map[string]any{"importance": "high"}, ImportanceHigh},
		{"critical", map[string]any{"importance": "critical"}, ImportanceCritical},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyImportance(c.state); got != c.want {
				t.Fatalf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestDetermineStrategyAndBackend(t *testing.T) {
	cases := []struct {
		name        string
		complexity  string
		sizeClass   string
		importance  string
		wantStrat   string
		wantBackend string
	}{
		{"trivial low", ComplexitySimple, SizeSmall, ImportanceLow, StrategyEphemeral, BackendMemory},
		{"normal simple", ComplexitySimple, SizeSmall, ImportanceNormal, StrategySession, BackendCache},
		{"moderate low", ComplexityModerate, SizeSmall, ImportanceLow, StrategySession, BackendCache},
		{"large low", ComplexitySimple, SizeLarge, ImportanceLow, StrategyDurable, BackendDocument},
		{"complex low", ComplexityComplex, SizeSmall, ImportanceLow, StrategyDurable, BackendDocument},
		{"high small simple", ComplexitySimple, SizeSmall, ImportanceHigh, StrategyDurable, BackendCache},
		{"high large", ComplexitySimple, SizeLarge, ImportanceHigh, StrategyDurable, BackendDocument},
		{"critical tiny", ComplexitySimple, SizeSmall, ImportanceCritical, StrategyDurable, BackendDocument},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			strat := DetermineStrategy(c.complexity, c.sizeClass, c.importance)
			if strat != c.wantStrat {
				t.Fatalf("strategy = %s, want %s", strat, c.wantStrat)
			}
			backend := DetermineBackend(strat, c.complexity, c.sizeClass, c.importance)
			if backend != c.wantBackend {
				t.Fatalf("backend = %s, want %s", backend, c.wantBackend)
			}
		})
	}
}

func TestDetermineTTL(t *testing.T) {
	cases := []struct {
		strategy   string
		importance string
		want       time.Duration
	}{
		{StrategyEphemeral, ImportanceLow, 5 * time.Minute},
		{StrategyEphemeral, ImportanceNormal, 5 * time.Minute},
		{StrategySession, ImportanceNormal, time.Hour},
		{StrategySession, ImportanceHigh, 2 * time.Hour},
		{StrategyDurable, ImportanceNormal, 24 * time.Hour},
		{StrategyDurable, ImportanceHigh, 48 * time.Hour},
		{StrategyDurable, ImportanceCritical, 96 * time.Hour},
	}
	for _, c := range cases {
		if got := DetermineTTL(c.strategy, c.importance); got != c.want {
			t.Fatalf("DetermineTTL(%s, %s) = %v, want %v", c.strategy, c.importance, got, c.want)
		}
	}
}

func TestShouldPromote(t *testing.T) {
	cases := []struct {
		name     string
		state    map[string]any
		session  map[string]any
		strategy string
		want     bool
	}{
		{"explicit promote wins", map[string]any{"promote": true}, nil, StrategyEphemeral, true},
		{"explicit skip wins", map[string]any{"promote": false}, map[string]any{"session_ending": true}, StrategyDurable, false},
		{"durable promotes", map[string]any{}, nil, StrategyDurable, true},
		{"session promotes", map[string]any{}, nil, StrategySession, true},
		{"ephemeral mid-session", map[string]any{}, map[string]any{"session_ending": false}, StrategyEphemeral, false},
		{"ephemeral session ending", map[string]any{}, map[string]any{"session_ending": true}, StrategyEphemeral, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ShouldPromote(c.state, c.session, c.strategy); got != c.want {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestEvaluateScenarios(t *testing.T) {
	t.Run("small low-importance scratch state stays in memory", func(t *testing.T) {
		state := map[string]any{"importance": "low", "step": "parse"}
		d := Evaluate(state, map[string]any{"session_ending": false})
		if d.Strategy != StrategyEphemeral || d.Backend != BackendMemory {
			t.Fatalf("unexpected decision: %+v", d)
		}
		if d.Promote {
			t.Fatalf("mid-session ephemeral state must not promote: %+v", d)
		}
	})

	t.Run("large high-importance state goes durable to documents", func(t *testing.T) {
		payload := strings.Repeat("x", 1<<20)
		state := map[string]any{"importance": "high", "blob": payload}
		d := Evaluate(state, nil)
		if !d.Promote {
			t.Fatalf("expected promotion: %+v", d)
		}
		if d.Strategy != StrategyDurable || d.Backend != BackendDocument {
			t.Fatalf("unexpected routing: %+v", d)
		}
		if d.SizeClass != SizeLarge {
			t.Fatalf("expected large size class, got %s", d.SizeClass)
		}
		if d.TTL != 48*time.Hour {
			t.Fatalf("expected doubled TTL, got %v", d.TTL)
		}
	})

	t.Run("critical state is durable regardless of size", func(t *testing.T) {
		d := Evaluate(map[string]any{"importance": "critical", "flag": true}, nil)
		if d.Strategy != StrategyDurable || d.Backend != BackendDocument || !d.Promote {
			t.Fatalf("unexpected decision: %+v", d)
		}
		if d.TTL != 96*time.Hour {
			t.Fatalf("expected quadrupled TTL, got %v", d.TTL)
		}
	})
}
