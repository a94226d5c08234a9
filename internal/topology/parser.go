package topology

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"flowsched/pkg/apperror"
	"flowsched/pkg/domain"
)

// Default edge attributes when a file's EDGES line omits them.
const (
	defaultCapacity = 1.0
	defaultDelay    = 1.0
	defaultCost     = 1.0
)

// Parse reads the bracket-section text topology format:
//
//	[DIRECTED] or [UNDIRECTED]
//	[NODES]
//	<name> [<layer>]
//	[EDGES]
//	<from> <to> [<capacity> [<delay> [<cost>]]]
//
// A line starting with '#' is a comment. An [UNDIRECTED] edge is inserted in
// both directions with identical attributes. Missing numeric fields default
// to 1.0, and a missing layer defaults to domain.Unknown, matching the
// reference parser this format was ported from.
func Parse(r io.Reader) (*Topology, error) {
	topo := New()
	directed := true
	section := 0 // 0 = none, 1 = nodes, 2 = edges

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			switch strings.ToUpper(line) {
			case "[DIRECTED]":
				directed = true
			case "[UNDIRECTED]":
				directed = false
			case "[NODES]":
				section = 1
			case "[EDGES]":
				section = 2
			}
			continue
		}

		fields := strings.Fields(line)
		switch section {
		case 1:
			if len(fields) == 0 {
				continue
			}
			layer := domain.Unknown
			if len(fields) > 1 {
				layer = domain.ParseLayer(fields[1])
			}
			topo.AddNode(fields[0], layer)
		case 2:
			if len(fields) < 2 {
				return nil, apperror.New(apperror.CodeParseError,
					fmt.Sprintf("line %d: edge line needs at least from/to", lineNo))
			}
			cap := defaultCapacity
			delay := defaultDelay
			cost := defaultCost
			var err error
			if len(fields) > 2 {
				if cap, err = strconv.ParseFloat(fields[2], 64); err != nil {
					return nil, apperror.Wrap(apperror.CodeParseError, err, fmt.Sprintf("line %d: capacity", lineNo))
				}
			}
			if len(fields) > 3 {
				if delay, err = strconv.ParseFloat(fields[3], 64); err != nil {
					return nil, apperror.Wrap(apperror.CodeParseError, err, fmt.Sprintf("line %d: delay", lineNo))
				}
			}
			if len(fields) > 4 {
				if cost, err = strconv.ParseFloat(fields[4], 64); err != nil {
					return nil, apperror.Wrap(apperror.CodeParseError, err, fmt.Sprintf("line %d: cost", lineNo))
				}
			}
			attrs := domain.EdgeAttrs{Capacity: cap, Delay: delay, Cost: cost}
			topo.AddEdge(fields[0], fields[1], attrs)
			if !directed {
				topo.AddEdge(fields[1], fields[0], attrs)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperror.Wrap(apperror.CodeParseError, err, "reading topology file")
	}
	return topo, topo.Validate()
}

// Write serializes t in the same bracket-section format Parse reads, always
// emitting [DIRECTED] since Topology itself has no undirected concept — an
// undirected input is represented as a pair of directed edges once parsed.
func Write(w io.Writer, t *Topology) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "[DIRECTED]"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw, "\n[NODES]"); err != nil {
		return err
	}
	for _, id := range t.Nodes() {
		n, _ := t.Node(id)
		if _, err := fmt.Fprintf(bw, "%s %s\n", n.ID, n.Layer.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw, "\n[EDGES]"); err != nil {
		return err
	}
	for _, e := range t.Edges() {
		if _, err := fmt.Fprintf(bw, "%s %s %g %g %g\n",
			e.Key.From, e.Key.To, e.Attrs.Capacity, e.Attrs.Delay, e.Attrs.Cost); err != nil {
			return err
		}
	}
	return bw.Flush()
}
