package telemetry

// Span and attribute names used for instrumentation.
const (
	AttrServiceName = "service.name"

	// Measurement spans
	SpanMeasureLength = "measure.length"
	SpanMeasureAngle  = "measure.angle"
	SpanSegmentDrawn  = "session.segment_drawn"

	// Measurement attributes
	AttrDistanceKm = "measure.distance_km"
	AttrBearingDeg = "measure.bearing_deg"
	AttrAngleDeg   = "measure.angle_deg"
	AttrMode       = "measure.mode"
	AttrSessionID  = "session.id"
	AttrBufferLen  = "session.buffer_len"
)
