package civiltime

import (
	"sort"
	"time"
)

// ToInstant resolves a wall-clock moment to a UTC instant.
//
// DST transitions make some wall clocks nonexistent and others doubled, so
// the mapping is pinned to a deterministic policy:
//
//   - spring-forward gap: the nonexistent time is shifted forward by the gap
//     size (02:30 becomes 03:30 when the clock jumps 02:00 -> 03:00);
//   - fall-back ambiguity: the earlier UTC instant wins (the first time the
//     wall clock shows that value).
//
// Resolution enumerates the candidate UTC offsets around the wall time
// instead of trusting time.Date normalization, which leaves the choice
// unspecified.
func ToInstant(c CivilDateTime) (time.Time, error) {
	loc, err := LoadZone(c.Zone)
	if err != nil {
		return time.Time{}, err
	}

	wall := time.Date(c.Date.Year, c.Date.Month, c.Date.Day, c.Time.Hour, c.Time.Minute, 0, 0, time.UTC)

	// A transition affecting this wall clock lies within a day of it.
	offsets := candidateOffsets(wall, loc)

	var matches []time.Time
	for _, off := range offsets {
		cand := wall.Add(-time.Duration(off) * time.Second)
		local := cand.In(loc)
		if local.Year() == c.Date.Year && local.Month() == c.Date.Month && local.Day() == c.Date.Day &&
			local.Hour() == c.Time.Hour && local.Minute() == c.Time.Minute {
			matches = append(matches, cand)
		}
	}

	switch len(matches) {
	case 0:
		// Gap: interpret against the pre-transition offset, which lands the
		// instant just past the transition, i.e. wall time plus the gap.
		lo := offsets[0]
		for _, off := range offsets[1:] {
			if off < lo {
				lo = off
			}
		}
		return wall.Add(-time.Duration(lo) * time.Second), nil
	case 1:
		return matches[0], nil
	default:
		sort.Slice(matches, func(i, j int) bool { return matches[i].Before(matches[j]) })
		return matches[0], nil
	}
}

// ToCivil converts an instant to the wall clock of the given zone. Unlike
// ToInstant this direction is always unambiguous.
func ToCivil(instant time.Time, zone string) (CivilDateTime, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return CivilDateTime{}, err
	}
	local := instant.In(loc)
	return CivilDateTime{
		Date: DateOf(local),
		Time: TimeOfDay{Hour: local.Hour(), Minute: local.Minute()},
		Zone: zone,
	}, nil
}

// InDST reports whether daylight saving time is in effect at the given
// instant in the given zone.
func InDST(instant time.Time, zone string) (bool, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return false, err
	}
	return instant.In(loc).IsDST(), nil
}

func candidateOffsets(wall time.Time, loc *time.Location) []int {
	probes := []time.Time{
		wall.Add(-24 * time.Hour),
		wall,
		wall.Add(24 * time.Hour),
	}
	var offsets []int
	for _, p := range probes {
		_, off := p.In(loc).Zone()
		seen := false
		for _, o := range offsets {
			if o == off {
				seen = true
				break
			}
		}
		if !seen {
			offsets = append(offsets, off)
		}
	}
	return offsets
}
