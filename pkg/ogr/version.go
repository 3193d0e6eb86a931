package ogr

var (
	Version = "v0.0.0-in-progress"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// DriverVersion returns the name and version reported by the library's
// driver, for example "ogr 3.8.4" or "memory go-geom".
func (l *Library) DriverVersion() string {
	if l == nil || l.driver == nil {
		return ""
	}
	return l.driver.Name() + " " + l.driver.Version()
}
