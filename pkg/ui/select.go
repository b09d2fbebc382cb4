package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"webgrab/pkg/discover"
)

// Selector decides which discovered candidates a run processes
type Selector interface {
	Select(candidates []discover.Candidate) []discover.Candidate
}

// AutoSelector takes the first N candidates in document order unconditionally
type AutoSelector struct {
	Cap int
}

// Select returns up to Cap candidates, preserving discovery order
func (s AutoSelector) Select(candidates []discover.Candidate) []discover.Candidate {
	if s.Cap > 0 && len(candidates) > s.Cap {
		return candidates[:s.Cap]
	}
	return candidates
}

// PromptSelector presents candidates and reads a choice from the input
// stream. An empty answer or "all" keeps everything presented.
type PromptSelector struct {
	Cap int
	In  io.Reader
	Out io.Writer
}

// Select lists up to Cap candidates and parses a comma-separated list of
// 1-based indexes. Out-of-range and unparseable tokens are ignored.
func (s PromptSelector) Select(candidates []discover.Candidate) []discover.Candidate {
	if s.Cap > 0 && len(candidates) > s.Cap {
		candidates = candidates[:s.Cap]
	}
	if len(candidates) == 0 {
		return nil
	}

	for i, c := range candidates {
		marker := " "
		if c.HasImage {
			marker = "*"
		}
		fmt.Fprintf(s.Out, "%3d %s %s\n      %s\n", i+1, marker, c.Title, Dim(c.Href))
	}
	fmt.Fprint(s.Out, "Select pages (e.g. 1,3,5; empty for all): ")

	scanner := bufio.NewScanner(s.In)
	if !scanner.Scan() {
		return candidates
	}
	answer := strings.TrimSpace(scanner.Text())
	if answer == "" || strings.EqualFold(answer, "all") {
		return candidates
	}

	var selected []discover.Candidate
	for _, token := range strings.Split(answer, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || idx < 1 || idx > len(candidates) {
			continue
		}
		selected = append(selected, candidates[idx-1])
	}
	return selected
}
