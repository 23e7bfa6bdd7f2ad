package availability

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/google/uuid"

	"github.com/carebridge/practice-scheduling/internal/civiltime"
)

// Materializer turns recurring rules plus single-day overrides into the
// concrete bookable windows for a date range. Pure read; it may run
// concurrently with mutations and will see either the old or the new state.
type Materializer struct {
	repo Repository
}

func NewMaterializer(repo Repository) *Materializer {
	return &Materializer{repo: repo}
}

// Calendar is the materialized view for one clinician and date range.
// Storage state and zones are resolved up front, so iteration never fails.
type Calendar struct {
	from       civiltime.Date
	to         civiltime.Date
	viewerZone string
	rulesByDay map[int][]WeeklyRule
	overrides  map[civiltime.Date]SingleDayOverride
}

// Materialize fetches the clinician's rules and overrides and returns a
// Calendar over [from, to]. Dates are authoring-calendar dates; emitted
// windows carry viewer-local dates, which can differ when a window crosses
// midnight under conversion.
func (m *Materializer) Materialize(ctx context.Context, clinicianID uuid.UUID, from, to civiltime.Date, viewerZone string) (*Calendar, error) {
	if _, err := civiltime.LoadZone(viewerZone); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range %s..%s", ErrInvalidTimeRange, from, to)
	}

	rules, err := m.repo.ListWeeklyRules(ctx, clinicianID)
	if err != nil {
		return nil, fmt.Errorf("list weekly rules: %w", err)
	}

	overrides, err := m.repo.ListOverridesInRange(ctx, clinicianID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}

	// Authoring zones are validated here so expansion below cannot fail.
	rulesByDay := make(map[int][]WeeklyRule)
	for _, r := range rules {
		if _, err := civiltime.LoadZone(r.Zone); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		rulesByDay[r.DayOfWeek] = append(rulesByDay[r.DayOfWeek], r)
	}
	byDate := make(map[civiltime.Date]SingleDayOverride, len(overrides))
	for _, o := range overrides {
		if _, err := civiltime.LoadZone(o.Zone); err != nil {
			return nil, fmt.Errorf("override %s: %w", o.ID, err)
		}
		byDate[o.Date] = o
	}

	return &Calendar{
		from:       from,
		to:         to,
		viewerZone: viewerZone,
		rulesByDay: rulesByDay,
		overrides:  byDate,
	}, nil
}

// All yields windows in ascending order: by viewer-local date, then by start
// time within a date. The sequence is finite and restartable; it closes over
// the state fetched by Materialize.
func (c *Calendar) All() iter.Seq[Window] {
	return func(yield func(Window) bool) {
		for _, w := range c.expand() {
			if !yield(w) {
				return
			}
		}
	}
}

// Windows collects the whole sequence.
func (c *Calendar) Windows() []Window {
	var out []Window
	for w := range c.All() {
		out = append(out, w)
	}
	return out
}

// expand projects every date in the range and sorts the combined set by
// start instant. The sort must span the whole range: rules for one clinician
// can be authored in different zones, so a window from a later authoring
// date may start before one from an earlier date once converted.
func (c *Calendar) expand() []Window {
	var out []Window
	for d := c.from; !d.After(c.to); d = d.AddDays(1) {
		out = append(out, c.windowsOn(d)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

// windowsOn expands one authoring-calendar date. An override fully replaces
// the recurring windows for its date; the two are never merged.
func (c *Calendar) windowsOn(d civiltime.Date) []Window {
	if o, ok := c.overrides[d]; ok {
		w, err := c.project(d, o.Start, o.End, o.Zone, true)
		if err != nil {
			return nil
		}
		return []Window{w}
	}

	var out []Window
	for _, r := range c.rulesByDay[int(d.Weekday())] {
		w, err := c.project(d, r.Start, r.End, r.Zone, false)
		if err != nil {
			continue
		}
		out = append(out, w)
	}
	return out
}

// project converts an authoring-zone civil window on date d into a
// viewer-local Window. The window's Date comes from the converted start
// instant, not from d.
func (c *Calendar) project(d civiltime.Date, start, end civiltime.TimeOfDay, zone string, isOverride bool) (Window, error) {
	startsAt, err := civiltime.ToInstant(civiltime.CivilDateTime{Date: d, Time: start, Zone: zone})
	if err != nil {
		return Window{}, err
	}
	endsAt, err := civiltime.ToInstant(civiltime.CivilDateTime{Date: d, Time: end, Zone: zone})
	if err != nil {
		return Window{}, err
	}

	viewerStart, err := civiltime.ToCivil(startsAt, c.viewerZone)
	if err != nil {
		return Window{}, err
	}
	viewerEnd, err := civiltime.ToCivil(endsAt, c.viewerZone)
	if err != nil {
		return Window{}, err
	}
	dst, err := civiltime.InDST(startsAt, c.viewerZone)
	if err != nil {
		return Window{}, err
	}

	return Window{
		Date:       viewerStart.Date,
		Start:      viewerStart.Time,
		End:        viewerEnd.Time,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		IsOverride: isOverride,
		InDST:      dst,
	}, nil
}
