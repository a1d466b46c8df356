package restserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/chrissnell/climatedash/internal/climate"
	"github.com/chrissnell/climatedash/internal/dashboard"
	"github.com/chrissnell/climatedash/pkg/season"
)

var errBadParameter = errors.New("bad parameter")

// isClientError reports whether err was caused by the request's parameters
func isClientError(err error) bool {
	for _, target := range []error{
		errBadParameter,
		climate.ErrInvalidWindow,
		climate.ErrUnknownGranularity,
		season.ErrUnknownSeason,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// parseQuery reads start, end, season, granularity and comparison from the
// URL, falling back to the dashboard defaults for anything omitted
func parseQuery(req *http.Request, defaults dashboard.QueryParameters) (dashboard.QueryParameters, error) {
	values := req.URL.Query()

	w := defaults.Window
	if s := values.Get("start"); s != "" {
		d, err := climate.ParseDate(s)
		if err != nil {
			return dashboard.QueryParameters{}, fmt.Errorf("%w: start: %v", errBadParameter, err)
		}
		w.Start = d
	}
	if s := values.Get("end"); s != "" {
		d, err := climate.ParseDate(s)
		if err != nil {
			return dashboard.QueryParameters{}, fmt.Errorf("%w: end: %v", errBadParameter, err)
		}
		w.End = d
	}
	if err := w.Validate(); err != nil {
		return dashboard.QueryParameters{}, err
	}

	seasons := defaults.Seasons()
	if names := splitList(values["season"]); len(names) > 0 {
		if len(names) == 1 && strings.EqualFold(names[0], "all") {
			seasons = nil
		} else {
			parsed, err := season.ParseList(names)
			if err != nil {
				return dashboard.QueryParameters{}, err
			}
			seasons = parsed
		}
	}

	g := defaults.Granularity
	if s := values.Get("granularity"); s != "" {
		parsed, err := climate.ParseGranularity(s)
		if err != nil {
			return dashboard.QueryParameters{}, err
		}
		g = parsed
	}

	comparison := defaults.Comparison
	if s := values.Get("comparison"); s != "" {
		parsed, err := parseToggle(s)
		if err != nil {
			return dashboard.QueryParameters{}, fmt.Errorf("%w: comparison: %v", errBadParameter, err)
		}
		comparison = parsed
	}

	return dashboard.NewQuery(w, seasons, g, comparison), nil
}

// splitList accepts repeated parameters as well as comma-separated values
func splitList(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseToggle accepts the dashboard's On/Off labels and anything strconv.ParseBool does
func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
