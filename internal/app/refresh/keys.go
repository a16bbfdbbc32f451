package refresh

// Query keys for the dashboard cards. Deduplication of in-flight requests
// happens per key.
const (
	KeyWeather    = "space-weather"
	KeySatellites = "satellites"
)
