// Package planparser turns a generated-text blob into exercise descriptors.
//
// The expected shape is one block per exercise, blocks separated by a blank
// line, each block exactly five labeled lines in fixed order:
//
//	Exercise: Neck Stretches
//	Description: Slow side-to-side stretches.
//	Duration: 10 minutes
//	Difficulty: 2
//	Precautions: Stop if pain increases.
//
// Parsing is all-or-nothing: the first malformed block aborts the whole
// batch. There is no per-block recovery and no validation beyond the
// difficulty field having to parse as an integer. That brittle contract is
// kept deliberately; callers see a single ParseError for the batch.
package planparser

import (
	"fmt"
	"strconv"
	"strings"
)

// Line label prefixes, in the order they must appear within a block.
const (
	labelExercise    = "Exercise:"
	labelDescription = "Description:"
	labelDuration    = "Duration:"
	labelDifficulty  = "Difficulty:"
	labelPrecautions = "Precautions:"
)

// Descriptor is an unpersisted parsed exercise, not yet linked to any
// storage identity.
type Descriptor struct {
	ExerciseType string
	Description  string
	Duration     string
	Difficulty   int
	Precautions  string
}

// ParseError reports the block that broke the batch.
type ParseError struct {
	Block  int // 0-based index of the offending block
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed exercise block %d: %s", e.Block+1, e.Reason)
}

// Parse converts one generated-text blob into an ordered descriptor list.
// A block with fewer than five lines, lines out of order, a missing label,
// or a non-numeric difficulty fails the entire batch.
func Parse(text string) ([]Descriptor, error) {
	blocks := splitBlocks(text)
	if len(blocks) == 0 {
		return nil, &ParseError{Block: 0, Reason: "no exercise blocks found"}
	}

	descriptors := make([]Descriptor, 0, len(blocks))
	for i, block := range blocks {
		d, err := parseBlock(i, block)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

// splitBlocks splits on blank lines, dropping empty segments.
func splitBlocks(text string) [][]string {
	var blocks [][]string
	var current []string

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseBlock(index int, lines []string) (Descriptor, error) {
	if len(lines) < 5 {
		return Descriptor{}, &ParseError{Block: index, Reason: fmt.Sprintf("expected 5 lines, got %d", len(lines))}
	}

	// Lines are addressed by position; anything past the fifth is ignored.
	name, err := stripLabel(index, lines[0], labelExercise)
	if err != nil {
		return Descriptor{}, err
	}
	description, err := stripLabel(index, lines[1], labelDescription)
	if err != nil {
		return Descriptor{}, err
	}
	duration, err := stripLabel(index, lines[2], labelDuration)
	if err != nil {
		return Descriptor{}, err
	}
	difficultyStr, err := stripLabel(index, lines[3], labelDifficulty)
	if err != nil {
		return Descriptor{}, err
	}
	precautions, err := stripLabel(index, lines[4], labelPrecautions)
	if err != nil {
		return Descriptor{}, err
	}

	difficulty, err := strconv.Atoi(difficultyStr)
	if err != nil {
		return Descriptor{}, &ParseError{Block: index, Reason: fmt.Sprintf("difficulty %q is not a number", difficultyStr)}
	}

	return Descriptor{
		ExerciseType: name,
		Description:  description,
		Duration:     duration,
		Difficulty:   difficulty,
		Precautions:  precautions,
	}, nil
}

func stripLabel(index int, line, label string) (string, error) {
	if !strings.HasPrefix(line, label) {
		return "", &ParseError{Block: index, Reason: fmt.Sprintf("expected line starting with %q, got %q", label, line)}
	}
	return strings.TrimSpace(strings.TrimPrefix(line, label)), nil
}
