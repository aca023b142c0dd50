package main

import (
	"fmt"
	"io"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/andreiashu/cityfill"
)

// geohashPrecision gives cells of roughly 1.2 km by 0.6 km.
const geohashPrecision = 6

// renderer prints map events as text. Unlabelled markers are counted
// rather than listed so a large circle does not flood the terminal.
type renderer struct {
	w io.Writer
}

func (r *renderer) render(events []cityfill.Event) {
	hidden := 0
	for _, ev := range events {
		switch ev.Kind {
		case cityfill.EventDrawCircle:
			fmt.Fprintf(r.w, "  ◯ %s  %.0f km\n", tag(ev.Center), ev.RadiusMeters/1000)
		case cityfill.EventDrawPoint:
			if ev.Label == "" {
				hidden++
				continue
			}
			fmt.Fprintf(r.w, "  ● %s  %s\n", tag(ev.Center), describe(ev.Label))
		case cityfill.EventLabelPoint:
			fmt.Fprintf(r.w, "  ● %s  %s\n", tag(ev.Center), describe(ev.Label))
		case cityfill.EventPanTo:
			fmt.Fprintf(r.w, "  → %s\n", tag(ev.Center))
		case cityfill.EventClearCircles:
			fmt.Fprintf(r.w, "  (circles cleared)\n")
		case cityfill.EventClearPoints:
			fmt.Fprintf(r.w, "  (cities cleared)\n")
		}
	}
	if hidden > 0 {
		fmt.Fprintf(r.w, "  + %d more cities revealed\n", hidden)
	}
}

func tag(p cityfill.Point) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lon, geohashPrecision)
}

// describe adds the full region name when the label ends in a known code.
func describe(label string) string {
	if n := len(label); n > 4 && label[n-4:n-2] == ", " {
		if name := cityfill.RegionName(label[n-2:]); name != "" {
			return label + " (" + name + ")"
		}
	}
	return label
}
