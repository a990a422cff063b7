// Package smartgif selects among interchangeable GIF encoder back-ends.
//
// Each back-end declares a name, supported output kinds, speed/quality/memory
// scores and an availability check. Selection is either explicit (the caller
// names one) or automatic (the first available back-end meeting a minimum
// characteristic threshold). Unavailable back-ends are skipped silently.
package smartgif

import (
	"errors"
	"fmt"

	"github.com/user/gifclip/pkg/adapters/gifxgif"
	"github.com/user/gifclip/pkg/adapters/nativegif"
	"github.com/user/gifclip/pkg/adapters/stdgif"
	"github.com/user/gifclip/pkg/ports"
)

var (
	// ErrNoEncoderAvailable is returned when no back-end satisfies the
	// selection criteria.
	ErrNoEncoderAvailable = errors.New("smartgif: no encoder available")

	// ErrUnknownEncoder is returned for an explicit name that is not
	// registered.
	ErrUnknownEncoder = errors.New("smartgif: unknown encoder")
)

// Backend bundles a back-end's declared characteristics with its
// availability check and constructor.
type Backend struct {
	Info      ports.EncoderInfo
	Available func() bool
	New       func() ports.GifEncoder
}

// Criteria sets the minimum characteristic scores for automatic selection.
// Zero values impose no constraint.
type Criteria struct {
	MinSpeed   int
	MinQuality int
	MinMemory  int
}

// Info identifies the back-end that was selected.
type Info struct {
	// Name is the selected back-end's name.
	Name string
	// Requested is the explicitly requested name, empty for automatic
	// selection.
	Requested string
}

// registry lists the built-in back-ends in preference order.
func registry() []Backend {
	return []Backend{
		{Info: nativegif.Info(), Available: nativegif.Available, New: func() ports.GifEncoder { return nativegif.New() }},
		{Info: gifxgif.Info(), Available: gifxgif.Available, New: func() ports.GifEncoder { return gifxgif.New() }},
		{Info: stdgif.Info(), Available: stdgif.Available, New: func() ports.GifEncoder { return stdgif.New() }},
	}
}

// Backends returns the registered back-ends in preference order.
func Backends() []Backend {
	return registry()
}

// New selects a back-end. A non-empty name selects explicitly; otherwise the
// first available back-end meeting the criteria wins.
func New(name string, criteria Criteria) (ports.GifEncoder, Info, error) {
	if name != "" {
		return selectExplicit(name)
	}
	return selectAutomatic(criteria)
}

func selectExplicit(name string) (ports.GifEncoder, Info, error) {
	for _, b := range registry() {
		if b.Info.Name != name {
			continue
		}
		if !b.Available() {
			return nil, Info{}, fmt.Errorf("%w: %q is not available", ErrNoEncoderAvailable, name)
		}
		return b.New(), Info{Name: name, Requested: name}, nil
	}
	return nil, Info{}, fmt.Errorf("%w: %q", ErrUnknownEncoder, name)
}

func selectAutomatic(criteria Criteria) (ports.GifEncoder, Info, error) {
	for _, b := range registry() {
		if !b.Available() {
			continue
		}
		if !meets(b.Info, criteria) {
			continue
		}
		return b.New(), Info{Name: b.Info.Name}, nil
	}
	return nil, Info{}, ErrNoEncoderAvailable
}

func meets(info ports.EncoderInfo, c Criteria) bool {
	return info.Speed >= c.MinSpeed &&
		info.Quality >= c.MinQuality &&
		info.Memory >= c.MinMemory
}
