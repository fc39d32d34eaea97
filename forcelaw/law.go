// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package forcelaw

import (
	"bufio"
	"fmt"
	"strings"
)

// OutputNames are the force-law fragment's mandatory output channels
// (spec.md §4.8): global-frame force and torque-only force on owner A,
// plus each owner's local contact point.
var OutputNames = []string{
	"forceA.x", "forceA.y", "forceA.z",
	"torqueForceA.x", "torqueForceA.y", "torqueForceA.z",
	"contactA.x", "contactA.y", "contactA.z",
	"contactB.x", "contactB.y", "contactB.z",
}

// Law is a parsed force-law fragment: the material properties it
// requires, the contact wildcards it reads and writes, and one
// Expression per output channel.
type Law struct {
	Source    string
	Requires  []string
	Reads     []string
	Writes    []string
	Outputs   map[string]*Expression
	Historyed bool // true if Law declares at least one wildcard, i.e. is not "historyless" (spec.md §4.7).
}

// ParseLaw reads a force-law fragment of the form:
//
//	require E, nu, CoR
//	wildcard read accumulatedSlip
//	wildcard write accumulatedSlip
//	output forceA.x = kn * overlap * nx
//	output forceA.y = kn * overlap * ny
//	...
//	output wc_accumulatedSlip = wc_accumulatedSlip + overlap
//
// Blank lines and lines starting with # are ignored. Every output line
// must name one of OutputNames or any "wc_"-prefixed name. A "wc_" output
// whose name also appears in a wildcard write directive is the channel
// dynamic.EvaluateForces reads back to persist the wildcard's new value
// (spec.md §4.8 "written back after"); other "wc_" outputs are accepted
// but not persisted. An unknown output name or a malformed directive is a
// configuration error, matching spec.md §7's rule that invalid
// force-law references are fatal at Initialize.
func ParseLaw(src string) (*Law, error) {
	law := &Law{Source: src, Outputs: map[string]*Expression{}}
	wantOutput := map[string]bool{}
	for _, n := range OutputNames {
		wantOutput[n] = true
	}

	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		switch fields[0] {
		case "require":
			if len(fields) < 2 {
				return nil, fmt.Errorf("forcelaw: line %d: require needs at least one property name", lineNo)
			}
			for _, name := range strings.Split(fields[1], ",") {
				law.Requires = append(law.Requires, strings.TrimSpace(name))
			}
		case "wildcard":
			if len(fields) < 2 {
				return nil, fmt.Errorf("forcelaw: line %d: wildcard directive needs 'read'/'write' and a name", lineNo)
			}
			rest := strings.TrimSpace(fields[1])
			parts := strings.SplitN(rest, " ", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("forcelaw: line %d: wildcard directive needs 'read'/'write' and a name", lineNo)
			}
			name := strings.TrimSpace(parts[1])
			switch parts[0] {
			case "read":
				law.Reads = append(law.Reads, name)
			case "write":
				law.Writes = append(law.Writes, name)
			default:
				return nil, fmt.Errorf("forcelaw: line %d: unknown wildcard mode %q", lineNo, parts[0])
			}
			law.Historyed = true
		case "output":
			if len(fields) < 2 {
				return nil, fmt.Errorf("forcelaw: line %d: output directive needs 'name = expression'", lineNo)
			}
			rest := strings.TrimSpace(fields[1])
			eq := strings.Index(rest, "=")
			if eq < 0 {
				return nil, fmt.Errorf("forcelaw: line %d: output directive needs 'name = expression'", lineNo)
			}
			name := strings.TrimSpace(rest[:eq])
			if !wantOutput[name] && !strings.HasPrefix(name, "wc_") {
				return nil, fmt.Errorf("forcelaw: line %d: unknown output channel %q", lineNo, name)
			}
			expr, err := Parse(strings.TrimSpace(rest[eq+1:]))
			if err != nil {
				return nil, fmt.Errorf("forcelaw: line %d: %w", lineNo, err)
			}
			law.Outputs[name] = expr
		default:
			return nil, fmt.Errorf("forcelaw: line %d: unknown directive %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("forcelaw: %w", err)
	}
	return law, nil
}

// Missing returns the subset of OutputNames the law never declared an
// expression for.
func (l *Law) Missing() []string {
	var missing []string
	for _, n := range OutputNames {
		if _, ok := l.Outputs[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// Eval evaluates every declared output channel against vars and returns
// the populated channel -> value map. Channels the law never declared
// are absent from the result rather than defaulting to zero, so callers
// can distinguish "law never wrote this" from "law wrote zero".
func (l *Law) Eval(vars map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(l.Outputs))
	for name, expr := range l.Outputs {
		out[name] = expr.Eval(vars)
	}
	return out
}
