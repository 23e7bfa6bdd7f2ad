package appointment

import (
	"github.com/carebridge/practice-scheduling/internal/civiltime"
)

// Project renders an appointment for one viewer zone. Pure function of
// (appointment, zone): same inputs, same projection, every call. The
// appointment's SourceZone plays no part here; the stored instants are the
// only truth.
func Project(a Appointment, viewerZone string) (Projection, error) {
	start, err := civiltime.ToCivil(a.StartsAt, viewerZone)
	if err != nil {
		return Projection{}, err
	}
	end, err := civiltime.ToCivil(a.EndsAt, viewerZone)
	if err != nil {
		return Projection{}, err
	}
	dst, err := civiltime.InDST(a.StartsAt, viewerZone)
	if err != nil {
		return Projection{}, err
	}

	return Projection{
		Date:  start.Date,
		Start: start.Time,
		End:   end.Time,
		InDST: dst,
	}, nil
}
