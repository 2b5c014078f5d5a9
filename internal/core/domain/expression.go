package domain

import "strconv"

// GeoExpression is a storable geography built from a bound WKT parameter.
// The WKT text never appears in the SQL itself.
type GeoExpression struct {
	WKT string
	// Repair makes the stored value valid and keeps only its polygonal
	// part, so a self-intersecting ring never comes back as a collection.
	Repair bool
}

// SQL renders the expression around the given placeholder, e.g. "$4".
func (e GeoExpression) SQL(placeholder string) string {
	g := "ST_GeomFromText(" + placeholder + ", " + strconv.Itoa(SRID) + ")"
	if e.Repair {
		g = "ST_CollectionExtract(ST_MakeValid(" + g + "), 3)"
	}
	return g + "::geography"
}
