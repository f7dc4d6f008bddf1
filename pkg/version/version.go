package version

// version is overridden at build time with
// -ldflags "-X github.com/cbodonnell/cookiemaze/pkg/version.version=<tag>"
var version = "dev"

func Get() string {
	return version
}
