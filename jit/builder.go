// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package jit implements the just-in-time kernel specialization pattern
// of spec.md §9 Design Notes: a pure string-substitution builder that
// replaces `_tokenName_`-style placeholders in kernel source with values
// known at Initialize, modeled on the original engine's APIPrivate.cpp
// token contract.
package jit

import (
	"fmt"
	"regexp"
	"sort"
)

// tokenPattern matches a `_token_` placeholder: an underscore, a letter
// followed by any letters or digits, and a closing underscore.
var tokenPattern = regexp.MustCompile(`_[A-Za-z][A-Za-z0-9]*_`)

// Builder accumulates named token substitutions for one kernel source
// template.
type Builder struct {
	tokens map[string]string
}

// NewBuilder returns an empty token builder.
func NewBuilder() *Builder {
	return &Builder{tokens: map[string]string{}}
}

// Set installs a substitution for token (without the surrounding
// underscores). Calling Set twice with the same name overwrites the
// earlier value — the builder is meant to be assembled once per
// Initialize, not incrementally patched.
func (b *Builder) Set(token, value string) *Builder {
	b.tokens["_"+token+"_"] = value
	return b
}

// Render substitutes every `_token_` in src and returns the specialized
// source. It is a ConfigError-flavoured error, per spec.md §9's
// substitution contract, if src references a token the builder never
// had Set for it.
func (b *Builder) Render(src string) (string, error) {
	var missing []string
	seen := map[string]bool{}
	out := tokenPattern.ReplaceAllStringFunc(src, func(tok string) string {
		if v, ok := b.tokens[tok]; ok {
			return v
		}
		if !seen[tok] {
			missing = append(missing, tok)
			seen[tok] = true
		}
		return tok
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("jit: kernel source references undefined token(s): %v", missing)
	}
	return out, nil
}
