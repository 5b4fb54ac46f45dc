package config

const (
	defaultBusAddress         = BusSystem
	defaultServiceName        = "org.freedesktop.PackageKit"
	defaultObjectPath         = "/org/freedesktop/PackageKit"
	defaultInterfaceName      = "org.freedesktop.PackageKit"
	defaultBackendName        = "smart"
	defaultHelperDir          = "/usr/share/PackageKit/helpers"
	defaultLockPath           = "~/.local/state/packagekit/backend.lock"
	defaultCancelGraceSeconds = 5
	defaultNetworkMonitor     = true
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Bus: Bus{
			Address:    defaultBusAddress,
			Service:    defaultServiceName,
			ObjectPath: defaultObjectPath,
			Interface:  defaultInterfaceName,
		},
		Backend: Backend{
			Name:               defaultBackendName,
			HelperDir:          defaultHelperDir,
			LockPath:           defaultLockPath,
			CancelGraceSeconds: defaultCancelGraceSeconds,
		},
		Network: Network{
			Monitor: defaultNetworkMonitor,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
