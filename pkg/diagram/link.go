package diagram

import (
	"errors"
	"fmt"

	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/dot"
)

// Link defaults.
const (
	DefaultLinkStyle = "dashed"
	DefaultLinkColor = "black"
)

// ErrMalformedLink is returned when a link record lacks a from or to key.
// A malformed link invalidates the whole link set.
var ErrMalformedLink = errors.New("link must have from and to")

// LinkReport summarises one link resolution run.
type LinkReport struct {
	Drawn   int
	Skipped []component.Link
}

// ValidateLinks checks that every link names both endpoints.
func ValidateLinks(links []component.Link) error {
	var errs []error
	for i, l := range links {
		if l.From == "" || l.To == "" {
			errs = append(errs, fmt.Errorf("%w: link %d (from=%q to=%q)", ErrMalformedLink, i, l.From, l.To))
		}
	}
	return errors.Join(errs...)
}

// ResolveLinks draws links between cached nodes. It must run after the
// whole forest is rendered. The link set is validated first and nothing is
// drawn when any link is malformed. A link whose endpoint is not cached is
// logged and skipped.
func (r *Renderer) ResolveLinks(canvas Canvas, cache *NodeCache, links []component.Link) (LinkReport, error) {
	var report LinkReport
	if err := ValidateLinks(links); err != nil {
		return report, err
	}

	for _, l := range links {
		from, okFrom := cache.Get(l.From)
		to, okTo := cache.Get(l.To)
		if !okFrom || !okTo {
			r.Logger.Warn("unresolvable link endpoint, skipping",
				"from", l.From, "to", l.To, "from_found", okFrom, "to_found", okTo)
			report.Skipped = append(report.Skipped, l)
			continue
		}
		if err := canvas.Edge(from, to, LinkAttrs(l)); err != nil {
			return report, fmt.Errorf("link %s -> %s: %w", l.From, l.To, err)
		}
		report.Drawn++
	}
	return report, nil
}

// LinkAttrs returns the edge attributes of l with defaults applied.
func LinkAttrs(l component.Link) dot.Attrs {
	attrs := dot.Attrs{
		"label": l.Label,
		"style": l.Style,
		"color": l.Color,
	}
	if attrs["style"] == "" {
		attrs["style"] = DefaultLinkStyle
	}
	if attrs["color"] == "" {
		attrs["color"] = DefaultLinkColor
	}
	return attrs
}
