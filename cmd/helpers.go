package cmd

import (
	"bufio"
	"fmt"
	"image"
	"strings"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/capture"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/dispatch"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/store"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/translator"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/vision"
)

// app bundles the pipeline components for one command invocation. The
// translator is only constructed when a command needs the model boundary, so
// purely local commands work without credentials.
type app struct {
	store      *store.Store
	capturer   *capture.Capturer
	matcher    *vision.Matcher
	translator *translator.Translator
	dispatcher *dispatch.Dispatcher
}

// newApp wires the local components from configuration.
func newApp() (*app, error) {
	st, err := store.New(cfg.Store.Dir, logger)
	if err != nil {
		return nil, err
	}
	capturer, err := capture.New(cfg.Capture.Dir, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		store:      st,
		capturer:   capturer,
		matcher:    vision.NewMatcher(vision.ParsePolicy(cfg.Match.Policy), logger),
		dispatcher: dispatch.New(dispatch.NewRobotgoInputter(), cfg.Dispatch, logger),
	}, nil
}

// newAppWithTranslator additionally connects the model boundary. Fails at
// startup when credentials are missing, the only fatal error class.
func newAppWithTranslator() (*app, error) {
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	client, err := translator.NewClient(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	a.translator = translator.New(client, logger)
	return a, nil
}

// resolver returns a dispatch.Resolver that re-locates stored templates on
// the given live frame by template matching.
func (a *app) resolver(live image.Image, confidence float64) dispatch.Resolver {
	return func(name string) (image.Point, bool) {
		tpl, ok := a.store.Get(name)
		if !ok {
			return image.Point{}, false
		}
		img, err := a.store.Image(tpl)
		if err != nil {
			return image.Point{}, false
		}
		res, ok := a.matcher.Match(live, tpl, img, confidence)
		if !ok {
			return image.Point{}, false
		}
		return res.Center, true
	}
}

// locateTemplate matches one stored template against a live frame.
func (a *app) locateTemplate(live image.Image, name string, confidence float64) (model.MatchResult, error) {
	tpl, ok := a.store.Get(name)
	if !ok {
		return model.MatchResult{}, fmt.Errorf("no template stored for %q", name)
	}
	img, err := a.store.Image(tpl)
	if err != nil {
		return model.MatchResult{}, err
	}
	res, ok := a.matcher.Match(live, tpl, img, confidence)
	if !ok {
		return model.MatchResult{}, fmt.Errorf("template %q not currently visible", name)
	}
	return res, nil
}

// confirm prompts y/n on the terminal and returns true on "y".
func confirm(r *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y")
}

// confidenceFlag returns the --confidence value, falling back to the
// configured default when the flag is unset or out of range.
func confidenceFlag(val float64) float64 {
	if val > 0 && val <= 1 {
		return val
	}
	return cfg.Match.Confidence
}
