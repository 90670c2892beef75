package config

const (
	defaultWorkDir           = "~/.local/share/keel"
	defaultLogDir            = "~/.local/share/keel/logs"
	defaultManifestDir       = "~/.local/share/keel/manifests"
	defaultZone              = "seq"
	defaultResource          = "irods"
	defaultExpectedReplicas  = 2
	defaultBatonBinary       = "baton-do"
	defaultReplBinary        = "irepl"
	defaultTrimBinary        = "itrim"
	defaultOperationTimeout  = 300
	defaultCreator           = "npg-prod"
	defaultPublisher         = "ldap.internal.sanger.ac.uk"
	defaultOntRootCollection = "/seq/ont"
	defaultMLWHHost          = "127.0.0.1"
	defaultMLWHPort          = 3306
	defaultMLWHDatabase      = "mlwarehouse"
	defaultWorkerCount       = 4
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:     defaultWorkDir,
			LogDir:      defaultLogDir,
			ManifestDir: defaultManifestDir,
		},
		IRODS: IRODS{
			Zone:              defaultZone,
			DefaultResource:   defaultResource,
			ExpectedReplicas:  defaultExpectedReplicas,
			BatonBinary:       defaultBatonBinary,
			ReplBinary:        defaultReplBinary,
			TrimBinary:        defaultTrimBinary,
			OperationTimeout:  defaultOperationTimeout,
			AdminUsers:        []string{"irods"},
			Creator:           defaultCreator,
			Publisher:         defaultPublisher,
			OntRootCollection: defaultOntRootCollection,
		},
		MLWH: MLWH{
			Host:     defaultMLWHHost,
			Port:     defaultMLWHPort,
			Database: defaultMLWHDatabase,
		},
		Workers: Workers{
			Count: defaultWorkerCount,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
