package command

import (
	"errors"
	"reflect"
	"testing"
)

func TestQueryClauseWords(t *testing.T) {
	b, err := New("/interface/print")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cmd := mustBuild(t, b.
		QueryEqual("type", "ether").
		QueryGreater("mtu", "1000").
		QueryLess("mtu", "9000").
		QueryExists("comment").
		QueryNotExists("disabled"))

	want := []string{
		"/interface/print",
		"?type=ether",
		"?>mtu=1000",
		"?<mtu=9000",
		"?comment",
		"?-disabled",
	}
	if got := cmd.Words(); !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestQueryCombinators(t *testing.T) {
	b, err := New("/interface/print")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// (type=ether OR type=vlan) AND NOT disabled
	cmd := mustBuild(t, b.
		QueryEqual("type", "ether").
		QueryEqual("type", "vlan").
		QueryOr().
		QueryExists("disabled").
		QueryNot().
		QueryAnd())

	want := []string{
		"/interface/print",
		"?type=ether",
		"?type=vlan",
		"?#|",
		"?disabled",
		"?#!",
		"?#&",
	}
	if got := cmd.Words(); !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestQueryCombinatorArity(t *testing.T) {
	tests := map[string]func(*Builder) *Builder{
		"not without clause": func(b *Builder) *Builder { return b.QueryNot() },
		"and without clause": func(b *Builder) *Builder { return b.QueryAnd() },
		"and with one clause": func(b *Builder) *Builder {
			return b.QueryEqual("type", "ether").QueryAnd()
		},
		"or exhausted stack": func(b *Builder) *Builder {
			// two clauses collapse to one result, the second or underflows
			return b.QueryEqual("a", "1").QueryEqual("b", "2").QueryOr().QueryOr()
		},
	}
	for name, apply := range tests {
		t.Run(name, func(t *testing.T) {
			b, err := New("/interface/print")
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			_, err = apply(b).Build()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Build() = %v, want ValidationError", err)
			}
		})
	}
}

func TestQueryInvalidKey(t *testing.T) {
	tests := map[string]func(*Builder) *Builder{
		"whitespace in key":    func(b *Builder) *Builder { return b.QueryEqual("ty pe", "ether") },
		"empty equal key":      func(b *Builder) *Builder { return b.QueryEqual("", "ether") },
		"empty greater key":    func(b *Builder) *Builder { return b.QueryGreater("", "1000") },
		"empty less key":       func(b *Builder) *Builder { return b.QueryLess("", "9000") },
		"empty exists key":     func(b *Builder) *Builder { return b.QueryExists("") },
		"empty not-exists key": func(b *Builder) *Builder { return b.QueryNotExists("") },
	}
	for name, apply := range tests {
		t.Run(name, func(t *testing.T) {
			b, err := New("/interface/print")
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			_, err = apply(b).Build()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Build() = %v, want ValidationError", err)
			}
		})
	}
}
