package apdb

import "github.com/ridoystarlord/apdbschema/record"

// MinimalDiaObjectSchema returns the smallest record schema the pipeline
// uses for DiaObject records.
func MinimalDiaObjectSchema() *record.Schema {
	s := record.MinimalSourceSchema()
	s.MustAdd(
		record.Field{Name: "pixelId", Type: record.TypeLong, Doc: "Unique spherical pixelization identifier."},
		record.Field{Name: "nDiaSources", Type: record.TypeLong},
	)
	return s
}

// MinimalDiaSourceSchema returns the smallest record schema the pipeline
// uses for DiaSource records.
func MinimalDiaSourceSchema() *record.Schema {
	s := record.MinimalSourceSchema()
	s.MustAdd(
		record.Field{Name: "diaObjectId", Type: record.TypeLong, Doc: "Unique identifier of the DIAObject this source is associated to."},
		record.Field{Name: "ccdVisitId", Type: record.TypeLong, Doc: "Id of the exposure and ccd this object was detected in."},
		record.Field{Name: "psFlux", Type: record.TypeDouble, Doc: "Calibrated PSF flux of this source."},
		record.Field{Name: "psFluxErr", Type: record.TypeDouble, Doc: "Calibrated PSF flux err of this source."},
		record.Field{Name: "flags", Type: record.TypeLong, Doc: "Quality flags for this DIASource."},
		record.Field{Name: "pixelId", Type: record.TypeLong, Doc: "Unique spherical pixelization identifier."},
	)
	return s
}
